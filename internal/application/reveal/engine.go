package reveal

// engine.go — avanza los torneos del dashboard por upcoming → starting → live
// y revela sus deals al entrar en live.
//
// Cada tick: carga torneos → Advance(now) → persiste los que cambian → notifica.
// El estado se deriva de la hora de inicio, así que un tick perdido no pierde
// transiciones: el siguiente las aplica todas.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/lockload/internal/domain"
	"github.com/alejandrodnm/lockload/internal/ports"
)

// Config contiene la configuración del motor de reveal.
type Config struct {
	TickInterval   time.Duration // 0 = 1s
	StartingWindow time.Duration // 0 = domain.DefaultStartingWindow
	Once           bool          // un solo tick y sale
}

// Transition describe un torneo que cambió en un tick.
type Transition struct {
	Tournament domain.Tournament
	Revealed   []domain.RevealDeal
}

// Engine es el loop de reveal.
// mu serializa carga → Advance → guardado: el loop y las peticiones del
// dashboard tickean a la vez y cada reveal debe notificarse una sola vez.
type Engine struct {
	cfg      Config
	store    ports.TournamentStore
	catalog  ports.DealStore
	notifier ports.RevealNotifier
	now      func() time.Time

	mu sync.Mutex
}

// New crea un Engine. notifier puede ser nil.
func New(cfg Config, store ports.TournamentStore, notifier ports.RevealNotifier) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.StartingWindow <= 0 {
		cfg.StartingWindow = domain.DefaultStartingWindow
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock reemplaza el reloj.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Run ejecuta ticks hasta que el contexto se cancele.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("reveal engine starting",
		"tick", e.cfg.TickInterval,
		"starting_window", e.cfg.StartingWindow,
		"once", e.cfg.Once,
	)

	if _, err := e.Tick(ctx); err != nil {
		slog.Error("reveal tick failed", "err", err)
		if e.cfg.Once {
			return err
		}
	}
	if e.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("reveal engine stopped")
			return nil
		case <-ticker.C:
			if _, err := e.Tick(ctx); err != nil {
				slog.Error("reveal tick failed", "err", err)
			}
		}
	}
}

// SetCatalog conecta el catálogo: al revelarse un deal con AutoReveal, su
// ficha del catálogo deja de estar cifrada.
func (e *Engine) SetCatalog(deals ports.DealStore) {
	e.catalog = deals
}

// Tick aplica las transiciones pendientes a la hora actual.
func (e *Engine) Tick(ctx context.Context) ([]Transition, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick(ctx)
}

func (e *Engine) tick(ctx context.Context) ([]Transition, error) {
	tournaments, err := e.store.ListTournaments(ctx)
	if err != nil {
		return nil, fmt.Errorf("reveal.Tick: list tournaments: %w", err)
	}

	now := e.now()
	var transitions []Transition
	for i := range tournaments {
		t := &tournaments[i]
		changed, revealed := t.Advance(now, e.cfg.StartingWindow)
		if !changed && len(revealed) == 0 {
			continue
		}

		if err := e.store.SaveTournamentState(ctx, *t); err != nil {
			return transitions, fmt.Errorf("reveal.Tick: save tournament %d: %w", t.ID, err)
		}
		transitions = append(transitions, Transition{Tournament: *t, Revealed: revealed})
		e.unmaskCatalog(ctx, revealed)

		slog.Info("tournament transition",
			"tournament", t.Name,
			"status", t.Status,
			"revealed", len(revealed),
		)
		if e.notifier != nil {
			if err := e.notifier.NotifyTransition(ctx, *t, revealed); err != nil {
				slog.Warn("notifier error", "err", err)
			}
		}
	}
	return transitions, nil
}

// Snapshot aplica las transiciones pendientes y devuelve el dashboard.
func (e *Engine) Snapshot(ctx context.Context) (domain.Dashboard, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.tick(ctx); err != nil {
		return domain.Dashboard{}, err
	}
	tournaments, err := e.store.ListTournaments(ctx)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("reveal.Snapshot: %w", err)
	}
	return domain.BuildDashboard(tournaments, e.now()), nil
}

// unmaskCatalog activa en el catálogo los deals revelados que tienen AutoReveal.
// La ficha del catálogo se identifica por ID y debe coincidir en sponsor y equipo;
// si no existe, no coincide o no tiene AutoReveal, sigue como está.
func (e *Engine) unmaskCatalog(ctx context.Context, revealed []domain.RevealDeal) {
	if e.catalog == nil {
		return
	}
	for _, rd := range revealed {
		deal, err := e.catalog.GetDeal(ctx, rd.ID)
		if err != nil {
			if !errors.Is(err, domain.ErrDealNotFound) {
				slog.Warn("reveal: catalog lookup failed", "deal_id", rd.ID, "err", err)
			}
			continue
		}
		if !strings.EqualFold(deal.Sponsor, rd.Sponsor) || !strings.EqualFold(deal.Team, rd.Team) {
			continue
		}
		if !deal.IsEncrypted() || !deal.AutoReveal {
			continue
		}
		if err := e.catalog.UpdateDealStatus(ctx, deal.ID, domain.DealActive); err != nil {
			slog.Warn("reveal: catalog unmask failed", "deal_id", deal.ID, "err", err)
			continue
		}
		slog.Info("deal auto-revealed", "deal_id", deal.ID, "tournament", deal.Tournament)
	}
}
