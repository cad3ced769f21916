package ports

import (
	"context"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// DealStore persiste el catálogo de deals y los bids aceptados.
type DealStore interface {
	// ListDeals devuelve todos los deals en orden de ID.
	ListDeals(ctx context.Context) ([]domain.Deal, error)

	// GetDeal devuelve domain.ErrDealNotFound si el ID no existe.
	GetDeal(ctx context.Context, id int64) (domain.Deal, error)

	// CreateDeal inserta el deal y devuelve el ID asignado.
	CreateDeal(ctx context.Context, deal domain.Deal) (int64, error)

	UpdateDealStatus(ctx context.Context, id int64, status domain.DealStatus) error

	// UpdateDealChainState guarda los flags leídos de getDealInfo.
	UpdateDealChainState(ctx context.Context, id int64, verified, active bool) error

	SaveBid(ctx context.Context, bid domain.Bid) error
	ListBids(ctx context.Context, dealID int64) ([]domain.Bid, error)
}
