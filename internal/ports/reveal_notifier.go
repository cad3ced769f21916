package ports

import (
	"context"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// RevealNotifier avisa cuando un torneo cambia de estado o revela deals.
type RevealNotifier interface {
	NotifyTransition(ctx context.Context, t domain.Tournament, revealed []domain.RevealDeal) error
}
