package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// Seed carga el catálogo de demo y los torneos del dashboard.
// Es idempotente: si ya hay deals no hace nada.
// Las fechas son relativas a now para que los deals no nazcan caducados.
func (s *SQLiteStorage) Seed(ctx context.Context, now time.Time) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deals`).Scan(&n); err != nil {
		return fmt.Errorf("storage.Seed: count deals: %w", err)
	}
	if n > 0 {
		return nil
	}

	for _, d := range SeedDeals(now) {
		if _, err := s.CreateDeal(ctx, d); err != nil {
			return fmt.Errorf("storage.Seed: deal %d: %w", d.ID, err)
		}
	}
	for _, t := range SeedTournaments(now) {
		if err := s.SaveTournamentState(ctx, t); err != nil {
			return fmt.Errorf("storage.Seed: tournament %d: %w", t.ID, err)
		}
	}
	return nil
}

const day = 24 * time.Hour

// SeedDeals devuelve los deals de demo del catálogo.
func SeedDeals(now time.Time) []domain.Deal {
	now = now.UTC()
	return []domain.Deal{
		{
			ID: 1, Tournament: "World Championship 2024", Game: "League of Legends", Category: "MOBA",
			Description: "Title sponsorship for the World Championship broadcast.",
			Platform: "Twitch", Language: "English", Region: "Global",
			Value: decimal.NewFromInt(75000), Currency: domain.CurrencyUSD,
			Sponsor: "TechCorp Global", Team: "Phoenix Squad",
			Status: domain.DealEncrypted,
			StartTime: now.Add(14 * day), EndTime: now.Add(44 * day), DurationDays: 30,
			ViewerCount: 450000, EngagementRate: 0.72,
			AutoReveal: true, CreatedAt: now,
		},
		{
			ID: 2, Tournament: "Global Masters", Game: "CS2", Category: "FPS",
			Description: "Jersey and stream overlay sponsorship.",
			Platform: "YouTube", Language: "English", Region: "Europe",
			Value: decimal.NewFromInt(45000), Currency: domain.CurrencyUSD,
			Sponsor: "Gaming Gear Pro", Team: "Dragon Force",
			Status: domain.DealEncrypted,
			StartTime: now.Add(19 * day), EndTime: now.Add(33 * day), DurationDays: 14,
			ViewerCount: 210000, EngagementRate: 0.65,
			AutoReveal: true, CreatedAt: now,
		},
		{
			ID: 3, Tournament: "Spring Split Finals", Game: "Valorant", Category: "FPS",
			Description: "Main sponsor for the finals weekend.",
			Platform: "Twitch", Language: "English", Region: "North America",
			Value: decimal.NewFromInt(50000), Currency: domain.CurrencyUSD,
			Sponsor: "TechCorp", Team: "Phoenix Squad",
			Status: domain.DealActive,
			StartTime: now.Add(-2 * day), EndTime: now.Add(5 * day), DurationDays: 7,
			ViewerCount: 180000, EngagementRate: 0.81, IsVerified: true,
			AutoReveal: true, CreatedAt: now,
		},
		{
			ID: 4, Tournament: "International Cup", Game: "Dota 2", Category: "MOBA",
			Description: "Equipment partner for the International Cup.",
			Platform: "Twitch", Language: "English", Region: "Global",
			Value: decimal.NewFromInt(90000), Currency: domain.CurrencyUSD,
			Sponsor: "Crypto Exchange", Team: "Thunder Bolts",
			Status: domain.DealEncrypted,
			StartTime: now.Add(40 * day), EndTime: now.Add(100 * day), DurationDays: 60,
			ViewerCount: 390000, EngagementRate: 0.69,
			AutoReveal: true, CreatedAt: now,
		},
		{
			ID: 5, Tournament: "CS2 Major Championship Sponsorship", Game: "CS2", Category: "FPS",
			Description: "Exclusive sponsorship opportunity for the upcoming CS2 Major Championship. " +
				"Perfect for gaming brands looking to reach competitive esports audience.",
			Platform: "Twitch", Language: "English", Region: "Global",
			Value: decimal.RequireFromString("5.5"), Currency: domain.CurrencyETH,
			Sponsor: "0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6",
			Team: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
			Status: domain.DealActive,
			StartTime: now.Add(-day), EndTime: now.Add(30 * day), DurationDays: 30,
			ViewerCount: 125000, EngagementRate: 0.87, IsVerified: true,
			Requirements: []string{
				"Minimum 100K followers",
				"Active streaming schedule",
				"Gaming content focus",
				"Professional setup",
			},
			Benefits: []string{
				"Brand logo placement",
				"Product mentions",
				"Social media promotion",
				"Revenue sharing",
			},
			AutoReveal: true, CreatedAt: now,
		},
	}
}

// SeedTournaments devuelve los torneos de demo: uno a punto de empezar,
// uno en directo con sus deals ya revelados y uno próximo.
func SeedTournaments(now time.Time) []domain.Tournament {
	now = now.UTC()
	liveStart := now.Add(-30 * time.Minute)
	return []domain.Tournament{
		{
			ID: 1, Name: "World Championship 2024", Game: "League of Legends",
			Status: domain.TournamentStarting, StartTime: now.Add(5 * time.Minute),
			Deals: []domain.RevealDeal{
				{ID: 1, Sponsor: "TechCorp Global", Team: "Phoenix Squad", Value: decimal.NewFromInt(75000), Type: "Team Sponsorship"},
				{ID: 2, Sponsor: "Gaming Gear Pro", Team: "Dragon Force", Value: decimal.NewFromInt(45000), Type: "Equipment Sponsor"},
			},
		},
		{
			ID: 2, Name: "Spring Split Finals", Game: "Valorant",
			Status: domain.TournamentLive, StartTime: liveStart,
			Deals: []domain.RevealDeal{
				{ID: 3, Sponsor: "Energy Drink Co", Team: "Storm Riders", Value: decimal.NewFromInt(60000), Type: "Beverage Partner", Revealed: true, RevealedAt: &liveStart},
				{ID: 4, Sponsor: "Crypto Exchange", Team: "Thunder Bolts", Value: decimal.NewFromInt(90000), Type: "Main Sponsor", Revealed: true, RevealedAt: &liveStart},
			},
		},
		{
			ID: 3, Name: "International Cup", Game: "Dota 2",
			Status: domain.TournamentUpcoming, StartTime: now.Add(2 * time.Hour),
			Deals: []domain.RevealDeal{
				{ID: 5, Sponsor: "Valve Partners", Team: "Team Spirit", Value: decimal.NewFromInt(120000), Type: "Broadcast Partner"},
			},
		},
	}
}
