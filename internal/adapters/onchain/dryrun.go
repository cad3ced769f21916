package onchain

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// DealInfoLookup resuelve getDealInfo sin red (normalmente desde el catálogo).
type DealInfoLookup func(ctx context.Context, dealID int64) (domain.ChainDealInfo, error)

// SentCall es una escritura registrada por DryRunContract.
type SentCall struct {
	Receipt  domain.TxReceipt
	Calldata []byte
}

// DryRunContract implementa ports.SponsorshipContract sin tocar la red.
// Codifica la calldata igual que ContractClient y deriva un tx hash
// determinista: keccak256(calldata || from || nonce).
type DryRunContract struct {
	lookup DealInfoLookup
	now    func() time.Time

	mu    sync.Mutex
	nonce uint64
	sent  []SentCall
}

// NewDryRunContract crea el contrato simulado. lookup puede ser nil:
// en ese caso GetDealInfo devuelve domain.ErrDealNotFound.
func NewDryRunContract(lookup DealInfoLookup) *DryRunContract {
	return &DryRunContract{lookup: lookup, now: time.Now}
}

// SetLookup reemplaza el resolver de getDealInfo (se conecta después de crear el store).
func (d *DryRunContract) SetLookup(lookup DealInfoLookup) {
	d.mu.Lock()
	d.lookup = lookup
	d.mu.Unlock()
}

func (d *DryRunContract) CreateSponsorshipDeal(ctx context.Context, from string, call domain.CreateDealCall) (domain.TxReceipt, error) {
	data, err := PackCreateDeal(call)
	if err != nil {
		return domain.TxReceipt{}, err
	}
	return d.record(ctx, domain.OpCreateDeal, from, data)
}

func (d *DryRunContract) SubmitBid(ctx context.Context, from string, call domain.SubmitBidCall) (domain.TxReceipt, error) {
	data, err := PackSubmitBid(call)
	if err != nil {
		return domain.TxReceipt{}, err
	}
	return d.record(ctx, domain.OpSubmitBid, from, data)
}

func (d *DryRunContract) AcceptDeal(ctx context.Context, from string, call domain.AcceptDealCall) (domain.TxReceipt, error) {
	data, err := PackAcceptDeal(call)
	if err != nil {
		return domain.TxReceipt{}, err
	}
	return d.record(ctx, domain.OpAcceptDeal, from, data)
}

func (d *DryRunContract) ReportPerformance(ctx context.Context, from string, call domain.ReportPerformanceCall) (domain.TxReceipt, error) {
	data, err := PackReportPerformance(call)
	if err != nil {
		return domain.TxReceipt{}, err
	}
	return d.record(ctx, domain.OpReportPerformance, from, data)
}

// GetDealInfo resuelve con el lookup y pasa la respuesta por el ABI,
// así el camino de decodificación es el mismo que con un nodo real.
func (d *DryRunContract) GetDealInfo(ctx context.Context, dealID int64) (domain.ChainDealInfo, error) {
	d.mu.Lock()
	lookup := d.lookup
	d.mu.Unlock()

	if lookup == nil {
		return domain.ChainDealInfo{}, fmt.Errorf("onchain.GetDealInfo %d: %w", dealID, domain.ErrDealNotFound)
	}
	info, err := lookup(ctx, dealID)
	if err != nil {
		return domain.ChainDealInfo{}, fmt.Errorf("onchain.GetDealInfo %d: %w", dealID, err)
	}
	out, err := encodeDealInfo(info)
	if err != nil {
		return domain.ChainDealInfo{}, fmt.Errorf("onchain.GetDealInfo %d: encode: %w", dealID, err)
	}
	return DecodeDealInfo(dealID, out)
}

// Sent devuelve una copia de las escrituras registradas, en orden.
func (d *DryRunContract) Sent() []SentCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]SentCall, len(d.sent))
	copy(out, d.sent)
	return out
}

func (d *DryRunContract) record(ctx context.Context, op domain.Operation, from string, data []byte) (domain.TxReceipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.TxReceipt{}, fmt.Errorf("onchain.%s: %w", op, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], d.nonce)
	d.nonce++

	hash := crypto.Keccak256Hash(data, common.HexToAddress(from).Bytes(), nonce[:])
	receipt := domain.TxReceipt{
		Method: op,
		TxHash: hash.Hex(),
		From:   from,
		DryRun: true,
		SentAt: d.now().UTC(),
	}
	d.sent = append(d.sent, SentCall{Receipt: receipt, Calldata: data})

	slog.Debug("onchain: dry-run transaction", "method", op, "tx", receipt.TxHash, "from", from, "calldata_bytes", len(data))
	return receipt, nil
}

// LookupFromDeal construye la respuesta de getDealInfo a partir de un deal del catálogo.
// Los uint8 del contrato se saturan en 255; en el contrato real son handles cifrados.
func LookupFromDeal(deal domain.Deal) domain.ChainDealInfo {
	return domain.ChainDealInfo{
		DealID:         deal.ID,
		Title:          deal.Tournament,
		Description:    deal.Description,
		Amount:         saturate(deal.Value.IntPart()),
		Duration:       saturate(int64(deal.DurationDays)),
		ViewerCount:    saturate(deal.ViewerCount / 1000),
		EngagementRate: saturate(int64(math.Round(deal.EngagementRate * 100))),
		IsActive:       deal.Status == domain.DealActive,
		IsVerified:     deal.IsVerified,
		Sponsor:        addressOrZero(deal.Sponsor),
		Streamer:       addressOrZero(deal.Team),
		StartTime:      deal.StartTime,
		EndTime:        deal.EndTime,
	}
}

func saturate(v int64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

func addressOrZero(s string) string {
	if common.IsHexAddress(s) {
		return common.HexToAddress(s).Hex()
	}
	return common.Address{}.Hex()
}
