package marketplace

// sync.go — lee getDealInfo de cada deal del catálogo en paralelo y
// vuelca isVerified / isActive al catálogo.
//
// Las lecturas son eth_call independientes: un worker pool acota la
// concurrencia contra el RPC. Un deal que falla no aborta el resto.

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// SyncReport resume una pasada de SyncFromChain.
type SyncReport struct {
	Checked int
	Updated int
	Failed  int
}

// SyncFromChain consulta el contrato para todos los deals del catálogo.
func (m *Marketplace) SyncFromChain(ctx context.Context) (SyncReport, error) {
	deals, err := m.deals.ListDeals(ctx)
	if err != nil {
		return SyncReport{}, fmt.Errorf("marketplace.SyncFromChain: %w", err)
	}

	infos := m.readChainConcurrent(ctx, deals)

	report := SyncReport{Checked: len(deals), Failed: len(deals) - len(infos)}
	for _, d := range deals {
		info, ok := infos[d.ID]
		if !ok {
			continue
		}
		if err := m.deals.UpdateDealChainState(ctx, d.ID, info.IsVerified, info.IsActive); err != nil {
			slog.Warn("sync: update chain state failed", "deal_id", d.ID, "err", err)
			report.Failed++
			continue
		}
		report.Updated++
	}

	slog.Info("chain sync complete",
		"checked", report.Checked,
		"updated", report.Updated,
		"failed", report.Failed,
	)
	return report, nil
}

// readChainConcurrent lee getDealInfo con un worker pool.
// Si SyncWorkers <= 0 usa runtime.NumCPU() × 2.
func (m *Marketplace) readChainConcurrent(ctx context.Context, deals []domain.Deal) map[int64]domain.ChainDealInfo {
	workers := m.cfg.SyncWorkers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	workCh := make(chan int64, len(deals))
	resultCh := make(chan domain.ChainDealInfo, len(deals))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range workCh {
				if ctx.Err() != nil {
					continue
				}
				info, err := m.contract.GetDealInfo(ctx, id)
				if err != nil {
					slog.Debug("getDealInfo failed", "deal_id", id, "err", err)
					continue
				}
				resultCh <- info
			}
		}()
	}

	for _, d := range deals {
		workCh <- d.ID
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make(map[int64]domain.ChainDealInfo, len(deals))
	for info := range resultCh {
		out[info.DealID] = info
	}

	slog.Debug("concurrent chain read complete",
		"deals", len(deals),
		"read", len(out),
		"workers", workers,
	)
	return out
}
