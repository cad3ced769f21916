package main

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/lockload/config"
	"github.com/alejandrodnm/lockload/internal/adapters/api"
	"github.com/alejandrodnm/lockload/internal/application/marketplace"
	"github.com/alejandrodnm/lockload/internal/application/reveal"
)

// runServer levanta la API HTTP y el motor de reveal en paralelo.
// Si uno falla se cancela el otro.
func runServer(ctx context.Context, cfg *config.Config, market *marketplace.Marketplace, engine *reveal.Engine, store api.Pinger) error {
	gin.SetMode(cfg.Server.Mode)

	srv := api.NewServer(api.Config{
		Addr:            cfg.Server.Addr,
		BidRatePerMin:   cfg.Server.BidRatePerMin,
		BidBurst:        cfg.Server.BidBurst,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		Wallet: api.WalletInfo{
			AppName:   cfg.Wallet.AppName,
			Chain:     cfg.Wallet.Chain,
			ChainID:   cfg.Wallet.ChainID,
			ProjectID: cfg.Wallet.ProjectID,
		},
	}, market, engine)
	srv.SetPinger(store)

	slog.Info("=== LOCK AND LOAD SPONSORS: API + reveal engine ===",
		"addr", cfg.Server.Addr,
		"wallet_chain", cfg.Wallet.Chain,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}
