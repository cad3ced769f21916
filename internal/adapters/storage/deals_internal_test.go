package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/lockload/internal/domain"
)

func TestScanDeal_CorruptListColumnsFail(t *testing.T) {
	cases := []struct {
		name   string
		column string
		want   string
	}{
		{"requirements", "requirements", "requirements"},
		{"benefits", "benefits", "benefits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewSQLiteStorage(":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			ctx := context.Background()

			id, err := s.CreateDeal(ctx, domain.Deal{
				Tournament:   "Spring Split",
				Value:        decimal.NewFromInt(1000),
				Currency:     domain.CurrencyUSD,
				Status:       domain.DealEncrypted,
				Requirements: []string{"Logo on jersey"},
				Benefits:     []string{"Stream shoutout"},
				CreatedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)

			_, err = s.db.ExecContext(ctx, `UPDATE deals SET `+tc.column+` = '{not json' WHERE id = ?`, id)
			require.NoError(t, err)

			_, err = s.GetDeal(ctx, id)
			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrDealNotFound)
			assert.Contains(t, err.Error(), tc.want)

			_, err = s.ListDeals(ctx)
			assert.Error(t, err)
		})
	}
}

func TestScanDeal_EmptyListColumnsAreEmpty(t *testing.T) {
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	id, err := s.CreateDeal(ctx, domain.Deal{
		Tournament: "Spring Split",
		Value:      decimal.NewFromInt(1000),
		Currency:   domain.CurrencyUSD,
		Status:     domain.DealEncrypted,
	})
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, `UPDATE deals SET requirements = '', benefits = '' WHERE id = ?`, id)
	require.NoError(t, err)

	d, err := s.GetDeal(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, d.Requirements)
	assert.Empty(t, d.Benefits)
}
