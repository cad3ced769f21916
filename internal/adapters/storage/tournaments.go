package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// ListTournaments devuelve los torneos con sus deals, en orden de ID.
func (s *SQLiteStorage) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, game, status, start_time FROM tournaments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListTournaments: query: %w", err)
	}

	var tournaments []domain.Tournament
	index := make(map[int64]int)
	for rows.Next() {
		var t domain.Tournament
		var status string
		var start sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Game, &status, &start); err != nil {
			rows.Close()
			return nil, fmt.Errorf("storage.ListTournaments: scan row: %w", err)
		}
		st, ok := domain.ParseTournamentStatus(status)
		if !ok {
			st = domain.TournamentUpcoming
		}
		t.Status = st
		t.StartTime = parseTime(start)
		index[t.ID] = len(tournaments)
		tournaments = append(tournaments, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage.ListTournaments: %w", err)
	}

	// Con MaxOpenConns(1) la segunda query tiene que esperar a que se cierre la primera.
	drows, err := s.db.QueryContext(ctx, `
		SELECT id, tournament_id, sponsor, team, value, type, revealed, revealed_at
		FROM reveal_deals ORDER BY tournament_id, position, id`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListTournaments: query deals: %w", err)
	}
	defer drows.Close()

	for drows.Next() {
		var (
			d            domain.RevealDeal
			tournamentID int64
			value        string
			revealed     int
			revealedAt   sql.NullString
		)
		if err := drows.Scan(&d.ID, &tournamentID, &d.Sponsor, &d.Team, &value, &d.Type,
			&revealed, &revealedAt); err != nil {
			return nil, fmt.Errorf("storage.ListTournaments: scan deal: %w", err)
		}
		d.Value = parseDecimal(value)
		d.Revealed = revealed == 1
		if at := parseTime(revealedAt); !at.IsZero() {
			d.RevealedAt = &at
		}
		i, ok := index[tournamentID]
		if !ok {
			continue
		}
		tournaments[i].Deals = append(tournaments[i].Deals, d)
	}
	return tournaments, drows.Err()
}

// SaveTournamentState hace upsert del torneo y de sus deals en una transacción.
// Un deal ya revelado no vuelve a ocultarse aunque el torneo llegue con Revealed=false,
// y el estado del torneo nunca retrocede (upcoming < starting < live).
func (s *SQLiteStorage) SaveTournamentState(ctx context.Context, t domain.Tournament) error {
	if t.StartTime.IsZero() {
		return fmt.Errorf("storage.SaveTournamentState: tournament %d has no start time", t.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveTournamentState: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, game, status, start_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name       = excluded.name,
			game       = excluded.game,
			status     = CASE WHEN `+statusRank("excluded.status")+` > `+statusRank("tournaments.status")+`
			                  THEN excluded.status ELSE tournaments.status END,
			start_time = excluded.start_time`,
		t.ID, t.Name, t.Game, string(t.Status), *formatTime(t.StartTime),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveTournamentState: upsert tournament %d: %w", t.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reveal_deals (id, tournament_id, position, sponsor, team, value, type, revealed, revealed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tournament_id = excluded.tournament_id,
			position      = excluded.position,
			sponsor       = excluded.sponsor,
			team          = excluded.team,
			value         = excluded.value,
			type          = excluded.type,
			revealed      = MAX(reveal_deals.revealed, excluded.revealed),
			revealed_at   = COALESCE(reveal_deals.revealed_at, excluded.revealed_at)`)
	if err != nil {
		return fmt.Errorf("storage.SaveTournamentState: prepare: %w", err)
	}
	defer stmt.Close()

	for i, d := range t.Deals {
		var revealedAt *string
		if d.RevealedAt != nil {
			revealedAt = formatTime(*d.RevealedAt)
		}
		if _, err := stmt.ExecContext(ctx, d.ID, t.ID, i, d.Sponsor, d.Team,
			d.Value.String(), d.Type, boolInt(d.Revealed), revealedAt,
		); err != nil {
			return fmt.Errorf("storage.SaveTournamentState: upsert deal %d: %w", d.ID, err)
		}
	}

	return tx.Commit()
}

// statusRank ordena los estados de torneo dentro de SQL.
func statusRank(col string) string {
	return "(CASE " + col + " WHEN 'live' THEN 2 WHEN 'starting' THEN 1 ELSE 0 END)"
}
