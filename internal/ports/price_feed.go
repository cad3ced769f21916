package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceFeed devuelve el precio ETH/USD para mostrar importes en dólares.
type PriceFeed interface {
	ETHUSD(ctx context.Context) decimal.Decimal
}
