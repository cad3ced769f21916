package ports

import (
	"context"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// TournamentStore persiste los torneos del dashboard y el estado de reveal de sus deals.
type TournamentStore interface {
	ListTournaments(ctx context.Context) ([]domain.Tournament, error)

	// SaveTournamentState guarda el estado del torneo y los flags de reveal de sus deals.
	SaveTournamentState(ctx context.Context, t domain.Tournament) error
}
