package ports

import (
	"context"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// SponsorshipContract es el contrato de patrocinios on-chain.
// from es la address de la wallet que firma la escritura.
type SponsorshipContract interface {
	CreateSponsorshipDeal(ctx context.Context, from string, call domain.CreateDealCall) (domain.TxReceipt, error)
	SubmitBid(ctx context.Context, from string, call domain.SubmitBidCall) (domain.TxReceipt, error)
	AcceptDeal(ctx context.Context, from string, call domain.AcceptDealCall) (domain.TxReceipt, error)
	ReportPerformance(ctx context.Context, from string, call domain.ReportPerformanceCall) (domain.TxReceipt, error)

	// GetDealInfo es la única lectura del contrato (view).
	GetDealInfo(ctx context.Context, dealID int64) (domain.ChainDealInfo, error)
}
