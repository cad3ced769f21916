package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/lockload/internal/adapters/notify"
	"github.com/alejandrodnm/lockload/internal/application/reveal"
)

// dashboardRefresh es cada cuánto se repinta el panel completo.
// Los reveals se imprimen en cuanto ocurren, vía el notifier del engine.
const dashboardRefresh = 30 * time.Second

// runDashboard imprime el panel de torneos y lo refresca hasta que el contexto se cancele.
func runDashboard(ctx context.Context, engine *reveal.Engine, console *notify.Console, tick time.Duration, once bool) error {
	slog.Info("=== TOURNAMENT DASHBOARD ===", "tick", tick, "refresh", dashboardRefresh)

	dash, err := engine.Snapshot(ctx)
	if err != nil {
		return err
	}
	console.PrintDashboard(dash)
	if once {
		return nil
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	lastPrint := time.Now()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dashboard stopped")
			return nil
		case <-ticker.C:
			transitions, err := engine.Tick(ctx)
			if err != nil {
				slog.Error("reveal tick failed", "err", err)
				continue
			}
			if len(transitions) == 0 && time.Since(lastPrint) < dashboardRefresh {
				continue
			}
			dash, err := engine.Snapshot(ctx)
			if err != nil {
				slog.Error("dashboard snapshot failed", "err", err)
				continue
			}
			console.PrintDashboard(dash)
			lastPrint = time.Now()
		}
	}
}
