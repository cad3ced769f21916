package storage

// sqlite.go — catálogo de deals, bids y torneos.
//
// Estrategia:
//   - `deals`: una fila por deal. Los términos se guardan en claro; el enmascarado
//     es responsabilidad de la vista (domain.Deal.View).
//   - `bids`: solo bids aceptados por el contrato. Un bid rechazado no deja rastro.
//   - `tournaments` + `reveal_deals`: estado del dashboard. `revealed` pasa de 0 a 1
//     una sola vez; el UPDATE nunca lo devuelve a 0.
//   - Por defecto la DSN es ":memory:": el catálogo vive lo que vive el proceso.

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS deals (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    tournament        TEXT    NOT NULL,
    description       TEXT    NOT NULL DEFAULT '',
    game              TEXT    NOT NULL DEFAULT '',
    category          TEXT    NOT NULL DEFAULT '',
    platform          TEXT    NOT NULL DEFAULT '',
    language          TEXT    NOT NULL DEFAULT '',
    region            TEXT    NOT NULL DEFAULT '',
    value             TEXT    NOT NULL DEFAULT '0',
    currency          TEXT    NOT NULL DEFAULT 'USD',
    sponsor           TEXT    NOT NULL DEFAULT '',
    team              TEXT    NOT NULL DEFAULT '',
    status            TEXT    NOT NULL,
    start_time        TEXT,
    end_time          TEXT,
    duration_days     INTEGER NOT NULL DEFAULT 0,
    viewer_count      INTEGER NOT NULL DEFAULT 0,
    engagement_rate   REAL    NOT NULL DEFAULT 0,
    is_verified       INTEGER NOT NULL DEFAULT 0,
    requirements      TEXT    NOT NULL DEFAULT '[]',
    benefits          TEXT    NOT NULL DEFAULT '[]',
    auto_reveal       INTEGER NOT NULL DEFAULT 1,
    requires_approval INTEGER NOT NULL DEFAULT 0,
    chain_active      INTEGER NOT NULL DEFAULT 0,
    created_at        TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS bids (
    id                    TEXT PRIMARY KEY,
    deal_id               INTEGER NOT NULL REFERENCES deals(id),
    bidder                TEXT NOT NULL,
    amount                TEXT NOT NULL,
    performance           TEXT NOT NULL,
    duration              TEXT NOT NULL,
    platform              TEXT NOT NULL,
    content               TEXT NOT NULL,
    additional_info       TEXT NOT NULL DEFAULT '',
    encrypted_amount      TEXT NOT NULL,
    encrypted_performance TEXT NOT NULL,
    tx_hash               TEXT NOT NULL,
    submitted_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tournaments (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    game       TEXT NOT NULL,
    status     TEXT NOT NULL,
    start_time TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reveal_deals (
    id            INTEGER PRIMARY KEY,
    tournament_id INTEGER NOT NULL REFERENCES tournaments(id),
    position      INTEGER NOT NULL,
    sponsor       TEXT NOT NULL,
    team          TEXT NOT NULL,
    value         TEXT NOT NULL,
    type          TEXT NOT NULL,
    revealed      INTEGER NOT NULL DEFAULT 0,
    revealed_at   TEXT
);

CREATE INDEX IF NOT EXISTS idx_deals_status      ON deals(status);
CREATE INDEX IF NOT EXISTS idx_bids_deal         ON bids(deal_id);
CREATE INDEX IF NOT EXISTS idx_reveal_tournament ON reveal_deals(tournament_id, position);
`

// SQLiteStorage implementa ports.DealStore y ports.TournamentStore usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
	mu sync.Mutex // serializa las escrituras multi-sentencia
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer; con :memory: además cada conexión es otra DB
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

// Ping comprueba que la conexión sigue viva (health check).
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	v := t.UTC().Format(time.RFC3339Nano)
	return &v
}

func parseTime(v sql.NullString) time.Time {
	if !v.Valid || v.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
