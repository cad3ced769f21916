package pricefeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/lockload/internal/adapters/pricefeed"
)

func TestCoinGecko_FetchETHUSD(t *testing.T) {
	data, err := os.ReadFile("../../../testdata/fixtures/coingecko_eth_price.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer srv.Close()

	feed := pricefeed.NewCoinGecko(pricefeed.NewClient(srv.URL), time.Minute)
	price, err := feed.FetchETHUSD(context.Background())

	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("3124.57")), price.String())
}

func TestCoinGecko_ETHUSD_CachesWithinTTL(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"ethereum":{"usd":2750.5}}`))
	}))
	defer srv.Close()

	feed := pricefeed.NewCoinGecko(pricefeed.NewClient(srv.URL), time.Hour)

	first := feed.ETHUSD(context.Background())
	second := feed.ETHUSD(context.Background())

	assert.True(t, first.Equal(decimal.RequireFromString("2750.5")))
	assert.True(t, second.Equal(first))
	assert.Equal(t, int32(1), calls.Load())
}

func TestCoinGecko_ETHUSD_FallbackOnClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	feed := pricefeed.NewCoinGecko(pricefeed.NewClient(srv.URL), time.Minute)

	assert.True(t, feed.ETHUSD(context.Background()).Equal(pricefeed.FallbackETHUSD))
}

func TestCoinGecko_FetchETHUSD_MissingPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":60000}}`))
	}))
	defer srv.Close()

	feed := pricefeed.NewCoinGecko(pricefeed.NewClient(srv.URL), time.Minute)
	_, err := feed.FetchETHUSD(context.Background())
	assert.Error(t, err)
}

func TestCoinGecko_FetchETHUSD_ServerErrorRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ethereum":{"usd":3000}}`))
	}))
	defer srv.Close()

	feed := pricefeed.NewCoinGecko(pricefeed.NewClient(srv.URL), time.Minute)
	price, err := feed.FetchETHUSD(context.Background())

	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, int32(2), calls.Load())
}

func TestStatic_ETHUSD(t *testing.T) {
	assert.True(t, pricefeed.Static{}.ETHUSD(context.Background()).Equal(pricefeed.FallbackETHUSD))
	assert.True(t, pricefeed.Static{Price: decimal.NewFromInt(4000)}.ETHUSD(context.Background()).Equal(decimal.NewFromInt(4000)))
}
