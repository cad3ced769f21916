package pricefeed

// coingecko.go — precio ETH/USD para mostrar importes ETH en dólares.
//
// El precio se cachea `ttl` (15 min por defecto). Si CoinGecko falla se usa el
// último precio conocido y, si nunca hubo uno, FallbackETHUSD.

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// FallbackETHUSD es el precio que se usa cuando no hay oráculo disponible.
var FallbackETHUSD = decimal.NewFromInt(2500)

const defaultTTL = 15 * time.Minute

// CoinGecko implementa ports.PriceFeed.
type CoinGecko struct {
	client *Client
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	cached    decimal.Decimal
	updatedAt time.Time
}

// NewCoinGecko crea el feed. ttl <= 0 usa el valor por defecto.
func NewCoinGecko(client *Client, ttl time.Duration) *CoinGecko {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CoinGecko{client: client, ttl: ttl, now: time.Now}
}

// ETHUSD devuelve el precio cacheado, refrescándolo si está caducado.
// Nunca falla: en el peor caso devuelve FallbackETHUSD.
func (g *CoinGecko) ETHUSD(ctx context.Context) decimal.Decimal {
	g.mu.RLock()
	price := g.cached
	updatedAt := g.updatedAt
	g.mu.RUnlock()

	if price.IsPositive() && g.now().Sub(updatedAt) < g.ttl {
		return price
	}

	fetched, err := g.FetchETHUSD(ctx)
	if err != nil {
		slog.Warn("pricefeed: failed to fetch ETH price, using fallback", "err", err)
		if price.IsPositive() {
			return price
		}
		return FallbackETHUSD
	}

	g.mu.Lock()
	g.cached = fetched
	g.updatedAt = g.now()
	g.mu.Unlock()

	return fetched
}

// FetchETHUSD consulta /simple/price sin caché.
func (g *CoinGecko) FetchETHUSD(ctx context.Context) (decimal.Decimal, error) {
	url := g.client.baseURL + "/simple/price?ids=ethereum&vs_currencies=usd"

	var data map[string]map[string]decimal.Decimal
	if err := g.client.get(ctx, url, &data); err != nil {
		return decimal.Zero, fmt.Errorf("pricefeed.FetchETHUSD: %w", err)
	}

	price, ok := data["ethereum"]["usd"]
	if !ok || !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("pricefeed.FetchETHUSD: ETH price not found in response")
	}

	slog.Debug("pricefeed: fetched ETH price", "usd", price.String())
	return price, nil
}

// Static es un PriceFeed de precio fijo (modo offline y tests).
type Static struct {
	Price decimal.Decimal
}

// ETHUSD devuelve el precio fijo, o FallbackETHUSD si no es positivo.
func (s Static) ETHUSD(context.Context) decimal.Decimal {
	if !s.Price.IsPositive() {
		return FallbackETHUSD
	}
	return s.Price
}
