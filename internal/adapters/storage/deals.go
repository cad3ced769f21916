package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/lockload/internal/domain"
)

const dealColumns = `
	id, tournament, description, game, category, platform, language, region,
	value, currency, sponsor, team, status, start_time, end_time, duration_days,
	viewer_count, engagement_rate, is_verified, requirements, benefits,
	auto_reveal, requires_approval, created_at`

// ListDeals devuelve el catálogo completo en orden de ID.
func (s *SQLiteStorage) ListDeals(ctx context.Context) ([]domain.Deal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+dealColumns+` FROM deals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListDeals: query: %w", err)
	}
	defer rows.Close()

	var deals []domain.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.ListDeals: %w", err)
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// GetDeal busca un deal por ID.
func (s *SQLiteStorage) GetDeal(ctx context.Context, id int64) (domain.Deal, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = ?`, id)
	d, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Deal{}, fmt.Errorf("storage.GetDeal %d: %w", id, domain.ErrDealNotFound)
	}
	if err != nil {
		return domain.Deal{}, fmt.Errorf("storage.GetDeal %d: %w", id, err)
	}
	return d, nil
}

// CreateDeal inserta un deal. Si deal.ID > 0 se respeta (fixtures); si no, lo asigna SQLite.
func (s *SQLiteStorage) CreateDeal(ctx context.Context, deal domain.Deal) (int64, error) {
	reqs, err := json.Marshal(nonNil(deal.Requirements))
	if err != nil {
		return 0, fmt.Errorf("storage.CreateDeal: marshal requirements: %w", err)
	}
	bens, err := json.Marshal(nonNil(deal.Benefits))
	if err != nil {
		return 0, fmt.Errorf("storage.CreateDeal: marshal benefits: %w", err)
	}
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = time.Now().UTC()
	}
	if deal.Currency == "" {
		deal.Currency = domain.CurrencyUSD
	}

	var id any
	if deal.ID > 0 {
		id = deal.ID
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO deals (`+dealColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, deal.Tournament, deal.Description, deal.Game, deal.Category, deal.Platform,
		deal.Language, deal.Region, deal.Value.String(), string(deal.Currency),
		deal.Sponsor, deal.Team, string(deal.Status),
		formatTime(deal.StartTime), formatTime(deal.EndTime), deal.DurationDays,
		deal.ViewerCount, deal.EngagementRate, boolInt(deal.IsVerified),
		string(reqs), string(bens), boolInt(deal.AutoReveal), boolInt(deal.RequiresApproval),
		*formatTime(deal.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("storage.CreateDeal: insert: %w", err)
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage.CreateDeal: last id: %w", err)
	}
	return newID, nil
}

// UpdateDealStatus cambia el estado de un deal existente.
func (s *SQLiteStorage) UpdateDealStatus(ctx context.Context, id int64, status domain.DealStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE deals SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("storage.UpdateDealStatus %d: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateDealChainState guarda isVerified/isActive leídos del contrato.
func (s *SQLiteStorage) UpdateDealChainState(ctx context.Context, id int64, verified, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE deals SET is_verified = ?, chain_active = ? WHERE id = ?`,
		boolInt(verified), boolInt(active), id,
	)
	if err != nil {
		return fmt.Errorf("storage.UpdateDealChainState %d: %w", id, err)
	}
	return requireRow(res, id)
}

// SaveBid persiste un bid aceptado por el contrato.
func (s *SQLiteStorage) SaveBid(ctx context.Context, bid domain.Bid) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bids (id, deal_id, bidder, amount, performance, duration, platform,
		                  content, additional_info, encrypted_amount, encrypted_performance,
		                  tx_hash, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bid.ID, bid.DealID, bid.Bidder, bid.Amount.String(), bid.PerformanceCommitment,
		bid.Duration, bid.Platform, bid.Content, bid.AdditionalInfo,
		bid.EncryptedAmount, bid.EncryptedPerformance, bid.TxHash,
		*formatTime(bid.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveBid: %w", err)
	}
	return nil
}

// ListBids devuelve los bids de un deal en orden de llegada.
func (s *SQLiteStorage) ListBids(ctx context.Context, dealID int64) ([]domain.Bid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, deal_id, bidder, amount, performance, duration, platform, content,
		       additional_info, encrypted_amount, encrypted_performance, tx_hash, submitted_at
		FROM bids WHERE deal_id = ? ORDER BY submitted_at, id`, dealID)
	if err != nil {
		return nil, fmt.Errorf("storage.ListBids: query: %w", err)
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var b domain.Bid
		var amount string
		var submitted sql.NullString
		if err := rows.Scan(&b.ID, &b.DealID, &b.Bidder, &amount, &b.PerformanceCommitment,
			&b.Duration, &b.Platform, &b.Content, &b.AdditionalInfo,
			&b.EncryptedAmount, &b.EncryptedPerformance, &b.TxHash, &submitted,
		); err != nil {
			return nil, fmt.Errorf("storage.ListBids: scan row: %w", err)
		}
		b.Amount = parseDecimal(amount)
		b.SubmittedAt = parseTime(submitted)
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(r rowScanner) (domain.Deal, error) {
	var (
		d                    domain.Deal
		value, currency      string
		status               string
		start, end, created  sql.NullString
		verified, autoReveal int
		approval             int
		reqs, bens           string
	)
	if err := r.Scan(
		&d.ID, &d.Tournament, &d.Description, &d.Game, &d.Category, &d.Platform,
		&d.Language, &d.Region, &value, &currency, &d.Sponsor, &d.Team, &status,
		&start, &end, &d.DurationDays, &d.ViewerCount, &d.EngagementRate, &verified,
		&reqs, &bens, &autoReveal, &approval, &created,
	); err != nil {
		return domain.Deal{}, err
	}

	d.Value = parseDecimal(value)
	d.Currency = domain.Currency(currency)
	d.Status = domain.DealStatus(status)
	d.StartTime = parseTime(start)
	d.EndTime = parseTime(end)
	d.CreatedAt = parseTime(created)
	d.IsVerified = verified == 1
	d.AutoReveal = autoReveal == 1
	d.RequiresApproval = approval == 1
	if err := decodeList(reqs, &d.Requirements); err != nil {
		return domain.Deal{}, fmt.Errorf("deal %d: requirements: %w", d.ID, err)
	}
	if err := decodeList(bens, &d.Benefits); err != nil {
		return domain.Deal{}, fmt.Errorf("deal %d: benefits: %w", d.ID, err)
	}
	return d, nil
}

// decodeList lee una columna JSON de strings. Vacío equivale a "[]".
func decodeList(raw string, dst *[]string) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("deal %d: %w", id, domain.ErrDealNotFound)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
