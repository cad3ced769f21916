package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/lockload/internal/adapters/notify"
	"github.com/alejandrodnm/lockload/internal/domain"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func makeDeals() []domain.DealView {
	encrypted := domain.Deal{
		ID: 1, Tournament: "World Championship 2024", Game: "League of Legends", Category: "MOBA",
		Status: domain.DealEncrypted, Value: decimal.NewFromInt(75000), Sponsor: "TechCorp Global", Team: "Phoenix Squad",
		StartTime: now,
	}
	active := domain.Deal{
		ID: 3, Tournament: "Spring Split Finals", Game: "Valorant", Category: "FPS",
		Status: domain.DealActive, Value: decimal.NewFromInt(50000), Sponsor: "TechCorp", Team: "Phoenix Squad",
		StartTime: now,
	}
	return []domain.DealView{encrypted.View(), active.View()}
}

func TestConsole_PrintCatalog_MasksEncrypted(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintCatalog(makeDeals())

	out := buf.String()
	assert.Contains(t, out, "World Championship 2024")
	assert.Contains(t, out, domain.MaskToken)
	assert.NotContains(t, out, "TechCorp Global")
	assert.Contains(t, out, "$50,000")
	assert.Contains(t, out, "2 deals")
}

func TestConsole_PrintCatalog_Empty(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, true).PrintCatalog(nil)
	assert.Contains(t, buf.String(), "No deals found")
}

func TestConsole_PrintCatalog_Compact(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, true).PrintCatalog(makeDeals())

	out := buf.String()
	assert.Contains(t, out, "#1 World Championship 2024 [League of Legends] encrypted")
	assert.Contains(t, out, "#3 Spring Split Finals [Valorant] active $50,000")
}

func TestConsole_NotifyTransition(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf, true)

	tr := domain.Tournament{ID: 1, Name: "World Championship 2024", Game: "League of Legends", Status: domain.TournamentLive}
	revealed := []domain.RevealDeal{
		{ID: 1, Sponsor: "TechCorp Global", Team: "Phoenix Squad", Value: decimal.NewFromInt(75000), Type: "Team Sponsorship", Revealed: true},
	}

	require.NoError(t, c.NotifyTransition(context.Background(), tr, revealed))

	out := buf.String()
	assert.Contains(t, out, "World Championship 2024 (League of Legends) → LIVE")
	assert.Contains(t, out, "revealed #1 TechCorp Global → Phoenix Squad  $75,000")
}

func TestConsole_PrintDashboard(t *testing.T) {
	starting := domain.Tournament{
		ID: 1, Name: "World Championship 2024", Game: "League of Legends",
		Status: domain.TournamentStarting, StartTime: now.Add(125 * time.Second),
		Deals: []domain.RevealDeal{{ID: 1, Sponsor: "TechCorp Global", Team: "Phoenix Squad", Value: decimal.NewFromInt(75000), Type: "Team Sponsorship"}},
	}
	dash := domain.BuildDashboard([]domain.Tournament{starting}, now)

	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintDashboard(dash)

	out := buf.String()
	assert.Contains(t, out, "live:0 starting:1 revealed:0 value:$0")
	assert.Contains(t, out, "STARTING SOON")
	assert.Contains(t, out, "2:05")
	assert.Contains(t, out, domain.MaskToken)
	assert.NotContains(t, out, "TechCorp Global")
}

func TestConsole_PrintDeal(t *testing.T) {
	d := domain.Deal{
		ID: 5, Tournament: "CS2 Major Championship Sponsorship", Value: decimal.RequireFromString("5.5"),
		Currency: domain.CurrencyETH, Status: domain.DealActive, DurationDays: 30,
		EndTime: now.Add(10 * 24 * time.Hour), Benefits: []string{"Brand logo placement"},
		AutoReveal: true,
	}

	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, false).PrintDeal(d.Detail(now, decimal.NewFromInt(2500)))

	out := buf.String()
	assert.Contains(t, out, "5.5 ETH (~$13,750)")
	assert.Contains(t, out, "1 months")
	assert.Contains(t, out, "10 days remaining")
	assert.Contains(t, out, "+ Brand logo placement")
	assert.Contains(t, out, "Reveal:     auto  approval not required")

	d.AutoReveal = false
	d.RequiresApproval = true
	buf.Reset()
	notify.NewConsoleWriter(&buf, false).PrintDeal(d.Detail(now, decimal.Zero))
	assert.Contains(t, buf.String(), "Reveal:     manual  approval required")
}

func TestConsole_PrintReceipt(t *testing.T) {
	var buf bytes.Buffer
	notify.NewConsoleWriter(&buf, true).PrintReceipt(domain.TxReceipt{
		Method: domain.OpSubmitBid, TxHash: "0xabc", From: "0xdef", DryRun: true, SentAt: now,
	})
	assert.Contains(t, buf.String(), "submitBid dry-run tx=0xabc from=0xdef")
}
