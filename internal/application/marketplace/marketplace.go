package marketplace

// marketplace.go — casos de uso del catálogo de patrocinios.
//
// Flujo de una escritura (bid, creación, aceptación, reporte):
//   wallet conectada → validación → deal existe / no expirado → cifrado (mock) → contrato → catálogo
//
// Ningún paso se reintenta: el error se devuelve tal cual al cliente, que decide.

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/lockload/internal/domain"
	"github.com/alejandrodnm/lockload/internal/ports"
)

// Config contiene la configuración del marketplace.
type Config struct {
	SyncWorkers int // goroutines para SyncFromChain (0 = NumCPU*2)
}

// Marketplace orquesta catálogo, cifrado y contrato.
type Marketplace struct {
	cfg      Config
	deals    ports.DealStore
	contract ports.SponsorshipContract
	enc      ports.Encryptor
	prices   ports.PriceFeed
	now      func() time.Time
}

// New crea un Marketplace con todas las dependencias inyectadas.
func New(
	cfg Config,
	deals ports.DealStore,
	contract ports.SponsorshipContract,
	enc ports.Encryptor,
	prices ports.PriceFeed,
) *Marketplace {
	return &Marketplace{
		cfg:      cfg,
		deals:    deals,
		contract: contract,
		enc:      enc,
		prices:   prices,
		now:      time.Now,
	}
}

// SetClock reemplaza el reloj (tests y demos con hora fija).
func (m *Marketplace) SetClock(now func() time.Time) {
	m.now = now
}

// ListDeals devuelve el catálogo filtrado y enmascarado.
func (m *Marketplace) ListDeals(ctx context.Context, query, status string) ([]domain.DealView, error) {
	deals, err := m.deals.ListDeals(ctx)
	if err != nil {
		return nil, fmt.Errorf("marketplace.ListDeals: %w", err)
	}

	filtered := NewFilter(FilterConfig{Query: query, Status: status}).Apply(deals)
	views := make([]domain.DealView, 0, len(filtered))
	for _, d := range filtered {
		views = append(views, d.View())
	}
	return views, nil
}

// GetDeal devuelve la ficha del deal con los campos derivados a la hora actual.
func (m *Marketplace) GetDeal(ctx context.Context, id int64) (domain.DealDetail, error) {
	deal, err := m.deals.GetDeal(ctx, id)
	if err != nil {
		return domain.DealDetail{}, fmt.Errorf("marketplace.GetDeal: %w", err)
	}
	return deal.Detail(m.now(), m.ethUSD(ctx, deal)), nil
}

// ListBids devuelve los bids aceptados de un deal.
func (m *Marketplace) ListBids(ctx context.Context, dealID int64) ([]domain.Bid, error) {
	if _, err := m.deals.GetDeal(ctx, dealID); err != nil {
		return nil, fmt.Errorf("marketplace.ListBids: %w", err)
	}
	bids, err := m.deals.ListBids(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("marketplace.ListBids: %w", err)
	}
	return bids, nil
}

// SubmitBid valida, cifra y envía un bid al contrato. Solo se guarda si el contrato lo acepta.
func (m *Marketplace) SubmitBid(ctx context.Context, req domain.BidRequest) (domain.Bid, error) {
	if err := requireWallet(req.Bidder); err != nil {
		return domain.Bid{}, err
	}
	if err := req.Validate(); err != nil {
		return domain.Bid{}, err
	}

	deal, err := m.deals.GetDeal(ctx, req.DealID)
	if err != nil {
		return domain.Bid{}, fmt.Errorf("marketplace.SubmitBid: %w", err)
	}
	now := m.now()
	if deal.IsExpired(now) {
		return domain.Bid{}, fmt.Errorf("marketplace.SubmitBid: deal %d: %w", deal.ID, domain.ErrDealExpired)
	}
	if deal.RequiresApproval && deal.Status != domain.DealActive {
		return domain.Bid{}, fmt.Errorf("marketplace.SubmitBid: deal %d: %w", deal.ID, domain.ErrApprovalRequired)
	}

	encAmount, err := m.enc.Encrypt(ctx, req.Amount)
	if err != nil {
		return domain.Bid{}, domain.EncodingError(domain.OpSubmitBid, err)
	}
	encPerf, err := m.enc.Encrypt(ctx, req.PerformanceCommitment)
	if err != nil {
		return domain.Bid{}, domain.EncodingError(domain.OpSubmitBid, err)
	}
	proof, err := m.enc.Proof(ctx)
	if err != nil {
		return domain.Bid{}, domain.EncodingError(domain.OpSubmitBid, err)
	}

	receipt, err := m.contract.SubmitBid(ctx, req.Bidder, domain.SubmitBidCall{
		DealID:      deal.ID,
		Amount:      encAmount,
		Performance: encPerf,
		Proof:       proof,
	})
	if err != nil {
		return domain.Bid{}, domain.TransactionError(domain.OpSubmitBid, err)
	}

	amount, _ := domain.ParseAmount(req.Amount)
	bid := domain.Bid{
		ID:                    uuid.NewString(),
		DealID:                deal.ID,
		Bidder:                req.Bidder,
		Amount:                amount,
		PerformanceCommitment: req.PerformanceCommitment,
		Duration:              req.Duration,
		Platform:              req.Platform,
		Content:               req.Content,
		AdditionalInfo:        req.AdditionalInfo,
		EncryptedAmount:       hexutil.Encode(encAmount),
		EncryptedPerformance:  hexutil.Encode(encPerf),
		TxHash:                receipt.TxHash,
		SubmittedAt:           now.UTC(),
	}
	if err := m.deals.SaveBid(ctx, bid); err != nil {
		// El contrato ya aceptó el bid: se informa pero no se deshace.
		slog.Error("marketplace: bid accepted on-chain but not recorded",
			"deal_id", deal.ID, "tx", receipt.TxHash, "err", err)
		return bid, fmt.Errorf("marketplace.SubmitBid: save bid: %w", err)
	}

	slog.Info("bid submitted",
		"deal_id", deal.ID,
		"bid_id", bid.ID,
		"bidder", req.Bidder,
		"tx", receipt.TxHash,
		"dry_run", receipt.DryRun,
	)
	return bid, nil
}

// CreateDeal cifra importe y duración, llama a createSponsorshipDeal y añade el deal
// al catálogo como encrypted.
func (m *Marketplace) CreateDeal(ctx context.Context, req domain.CreateDealRequest) (domain.Deal, domain.TxReceipt, error) {
	if err := requireWallet(req.Creator); err != nil {
		return domain.Deal{}, domain.TxReceipt{}, err
	}
	if err := req.Validate(); err != nil {
		return domain.Deal{}, domain.TxReceipt{}, err
	}
	now := m.now()
	deal := req.ToDeal(now.UTC())
	if deal.IsExpired(now) {
		return domain.Deal{}, domain.TxReceipt{}, &domain.ValidationError{
			Fields: domain.FieldErrors{"endDate": "End date must be in the future"},
		}
	}

	encAmount, err := m.enc.Encrypt(ctx, req.Amount)
	if err != nil {
		return domain.Deal{}, domain.TxReceipt{}, domain.EncodingError(domain.OpCreateDeal, err)
	}
	encDuration, err := m.enc.Encrypt(ctx, req.Duration)
	if err != nil {
		return domain.Deal{}, domain.TxReceipt{}, domain.EncodingError(domain.OpCreateDeal, err)
	}

	receipt, err := m.contract.CreateSponsorshipDeal(ctx, req.Creator, domain.CreateDealCall{
		Title:       req.Title,
		Description: req.Description,
		Amount:      encAmount,
		Duration:    encDuration,
		Streamer:    req.StreamerAddress,
	})
	if err != nil {
		return domain.Deal{}, domain.TxReceipt{}, domain.TransactionError(domain.OpCreateDeal, err)
	}

	id, err := m.deals.CreateDeal(ctx, deal)
	if err != nil {
		return domain.Deal{}, receipt, fmt.Errorf("marketplace.CreateDeal: save deal: %w", err)
	}
	deal.ID = id

	slog.Info("deal created",
		"deal_id", id,
		"title", req.Title,
		"creator", req.Creator,
		"tx", receipt.TxHash,
		"dry_run", receipt.DryRun,
	)
	return deal, receipt, nil
}

// AcceptDeal acepta un deal: cifra sus métricas de audiencia y el deal pasa a active.
// Solo un deal encrypted puede aceptarse.
func (m *Marketplace) AcceptDeal(ctx context.Context, from string, dealID int64) (domain.TxReceipt, error) {
	if err := requireWallet(from); err != nil {
		return domain.TxReceipt{}, err
	}
	if dealID <= 0 {
		return domain.TxReceipt{}, &domain.MissingFieldsError{Msg: "Please enter a deal ID"}
	}

	deal, err := m.deals.GetDeal(ctx, dealID)
	if err != nil {
		return domain.TxReceipt{}, fmt.Errorf("marketplace.AcceptDeal: %w", err)
	}
	if deal.IsExpired(m.now()) {
		return domain.TxReceipt{}, fmt.Errorf("marketplace.AcceptDeal: deal %d: %w", dealID, domain.ErrDealExpired)
	}
	if !deal.IsEncrypted() {
		return domain.TxReceipt{}, fmt.Errorf("marketplace.AcceptDeal: deal %d is %s: %w", dealID, deal.Status, domain.ErrDealNotOpen)
	}

	metrics := domain.AcceptanceMetricsFor(deal)
	encViewers, err := m.enc.Encrypt(ctx, metrics.ViewerCount)
	if err != nil {
		return domain.TxReceipt{}, domain.EncodingError(domain.OpAcceptDeal, err)
	}
	encEngagement, err := m.enc.Encrypt(ctx, metrics.EngagementRate)
	if err != nil {
		return domain.TxReceipt{}, domain.EncodingError(domain.OpAcceptDeal, err)
	}
	proof, err := m.enc.Proof(ctx)
	if err != nil {
		return domain.TxReceipt{}, domain.EncodingError(domain.OpAcceptDeal, err)
	}

	receipt, err := m.contract.AcceptDeal(ctx, from, domain.AcceptDealCall{
		DealID:         dealID,
		ViewerCount:    encViewers,
		EngagementRate: encEngagement,
		Proof:          proof,
	})
	if err != nil {
		return domain.TxReceipt{}, domain.TransactionError(domain.OpAcceptDeal, err)
	}

	if err := m.deals.UpdateDealStatus(ctx, dealID, domain.DealActive); err != nil {
		return receipt, fmt.Errorf("marketplace.AcceptDeal: %w", err)
	}
	slog.Info("deal accepted", "deal_id", dealID, "from", from, "tx", receipt.TxHash)
	return receipt, nil
}

// ReportPerformance envía las métricas finales cifradas y el deal pasa a completed.
// Solo se reporta sobre un deal active.
func (m *Marketplace) ReportPerformance(ctx context.Context, from string, dealID int64, report domain.PerformanceReport) (domain.TxReceipt, error) {
	if err := requireWallet(from); err != nil {
		return domain.TxReceipt{}, err
	}
	if dealID <= 0 {
		return domain.TxReceipt{}, &domain.MissingFieldsError{Msg: "Please fill in all performance data"}
	}
	if err := report.Validate(); err != nil {
		return domain.TxReceipt{}, err
	}

	deal, err := m.deals.GetDeal(ctx, dealID)
	if err != nil {
		return domain.TxReceipt{}, fmt.Errorf("marketplace.ReportPerformance: %w", err)
	}
	if deal.Status != domain.DealActive {
		return domain.TxReceipt{}, fmt.Errorf("marketplace.ReportPerformance: deal %d is %s: %w", dealID, deal.Status, domain.ErrDealNotActive)
	}

	values := []string{report.TotalViews, report.TotalEngagement, report.ConversionRate, report.Revenue}
	encrypted := make([][]byte, len(values))
	for i, v := range values {
		ct, err := m.enc.Encrypt(ctx, v)
		if err != nil {
			return domain.TxReceipt{}, domain.EncodingError(domain.OpReportPerformance, err)
		}
		encrypted[i] = ct
	}

	receipt, err := m.contract.ReportPerformance(ctx, from, domain.ReportPerformanceCall{
		DealID:          dealID,
		TotalViews:      encrypted[0],
		TotalEngagement: encrypted[1],
		ConversionRate:  encrypted[2],
		Revenue:         encrypted[3],
	})
	if err != nil {
		return domain.TxReceipt{}, domain.TransactionError(domain.OpReportPerformance, err)
	}

	if err := m.deals.UpdateDealStatus(ctx, dealID, domain.DealCompleted); err != nil {
		return receipt, fmt.Errorf("marketplace.ReportPerformance: %w", err)
	}
	slog.Info("performance reported", "deal_id", dealID, "from", from, "tx", receipt.TxHash)
	return receipt, nil
}

// Options son los valores de los selects de los formularios.
type Options struct {
	Performance []domain.Option `json:"performance"`
	Platform    []domain.Option `json:"platform"`
	Duration    []domain.Option `json:"duration"`
	Game        []domain.Option `json:"game"`
	Category    []domain.Option `json:"category"`
	Status      []string        `json:"status"`
}

// FormOptions devuelve las opciones de los formularios de bid y lanzamiento.
func FormOptions() Options {
	return Options{
		Performance: domain.PerformanceOptions,
		Platform:    domain.PlatformOptions,
		Duration:    domain.DurationOptions,
		Game:        domain.GameOptions,
		Category:    domain.CategoryOptions,
		Status: []string{
			domain.StatusAll,
			string(domain.DealEncrypted),
			string(domain.DealActive),
			string(domain.DealCompleted),
		},
	}
}

// ethUSD solo consulta el feed cuando el importe está en ETH y es visible.
func (m *Marketplace) ethUSD(ctx context.Context, d domain.Deal) decimal.Decimal {
	if m.prices == nil || d.Currency != domain.CurrencyETH || d.IsEncrypted() {
		return decimal.Zero
	}
	return m.prices.ETHUSD(ctx)
}

// requireWallet comprueba que hay una wallet conectada (una address hex).
func requireWallet(addr string) error {
	if !common.IsHexAddress(addr) {
		return domain.ErrWalletNotConnected
	}
	return nil
}

// ParseDealID convierte el id de la URL; un id no numérico se trata como inexistente.
func ParseDealID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("deal %q: %w", s, domain.ErrDealNotFound)
	}
	return id, nil
}
