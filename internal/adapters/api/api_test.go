package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/lockload/internal/adapters/api"
	"github.com/alejandrodnm/lockload/internal/adapters/fhe"
	"github.com/alejandrodnm/lockload/internal/adapters/onchain"
	"github.com/alejandrodnm/lockload/internal/adapters/pricefeed"
	"github.com/alejandrodnm/lockload/internal/adapters/storage"
	"github.com/alejandrodnm/lockload/internal/application/marketplace"
	"github.com/alejandrodnm/lockload/internal/application/reveal"
	"github.com/alejandrodnm/lockload/internal/domain"
)

const wallet = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	srv      *api.Server
	handler  http.Handler
	db       *storage.SQLiteStorage
	contract *onchain.DryRunContract
}

func newTestServer(t *testing.T, cfg api.Config) *testServer {
	t.Helper()
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Seed(context.Background(), now))

	contract := onchain.NewDryRunContract(nil)
	market := marketplace.New(marketplace.Config{}, db, contract, fhe.NewMockEncryptor(),
		pricefeed.Static{Price: decimal.NewFromInt(2500)})
	market.SetClock(func() time.Time { return now })

	engine := reveal.New(reveal.Config{}, db, nil)
	engine.SetClock(func() time.Time { return now })

	srv := api.NewServer(cfg, market, engine)
	return &testServer{srv: srv, handler: srv.Handler(), db: db, contract: contract}
}

func (ts *testServer) do(t *testing.T, method, path, body, from string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if from != "" {
		req.Header.Set(api.WalletHeader, from)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const bidBody = `{"amount":"1.5","performanceCommitment":"50k","duration":"30","platform":"twitch","content":"Watch parties"}`

func TestHealth(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth_ChecksStorage(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	ts.srv.SetPinger(ts.db)
	rec := ts.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	ts.srv.SetPinger(pingerFunc(func(context.Context) error { return errors.New("database is closed") }))
	rec = ts.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decode(t, rec)["status"])
}

func TestListDeals(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodGet, "/api/deals", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 5, body["count"])

	rec = ts.do(t, http.MethodGet, "/api/deals?status=encrypted&q=world", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	require.EqualValues(t, 1, body["count"])
	deal := body["deals"].([]any)[0].(map[string]any)
	assert.Equal(t, "World Championship 2024", deal["tournament"])
	assert.Equal(t, domain.MaskToken, deal["sponsor"])
	assert.Equal(t, domain.MaskToken, deal["value"])

	rec = ts.do(t, http.MethodGet, "/api/deals?status=completed", "", "")
	assert.EqualValues(t, 0, decode(t, rec)["count"])
}

func TestGetDeal(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodGet, "/api/deals/5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "CS2 Major Championship Sponsorship", body["tournament"])
	assert.Equal(t, "5.5 ETH", body["value"])
	assert.Equal(t, "~$13,750", body["valueUsd"])
	assert.Equal(t, "87.0%", body["engagementRate"])
	assert.EqualValues(t, 30, body["daysRemaining"])
	assert.Equal(t, true, body["autoReveal"])
	assert.Equal(t, false, body["requiresApproval"])

	rec = ts.do(t, http.MethodGet, "/api/deals/99", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Deal not found", decode(t, rec)["error"])

	rec = ts.do(t, http.MethodGet, "/api/deals/abc", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitBid(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodPost, "/api/deals/1/bids", bidBody, wallet)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bid := decode(t, rec)["bid"].(map[string]any)
	assert.Equal(t, "0x312e35", bid["encryptedAmount"])
	assert.NotEmpty(t, bid["txHash"])

	sent := ts.contract.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, domain.OpSubmitBid, sent[0].Receipt.Method)

	rec = ts.do(t, http.MethodGet, "/api/deals/1/bids", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["bids"], 1)
}

func TestSubmitBid_Errors(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodPost, "/api/deals/1/bids", bidBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please connect your wallet first", decode(t, rec)["error"])

	rec = ts.do(t, http.MethodPost, "/api/deals/1/bids", `{"amount":"abc"}`, wallet)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["fields"].(map[string]any)
	assert.Equal(t, "Please enter a valid bid amount", fields["amount"])
	assert.Equal(t, "Please select your primary platform", fields["platform"])

	rec = ts.do(t, http.MethodPost, "/api/deals/1/bids", `not json`, wallet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/deals/42/bids", bidBody, wallet)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Empty(t, ts.contract.Sent())
}

func TestSubmitBid_ExpiredDeal(t *testing.T) {
	ts := newTestServer(t, api.Config{})
	id, err := ts.db.CreateDeal(context.Background(), domain.Deal{
		Tournament: "Old Cup", Status: domain.DealEncrypted,
		StartTime: now.Add(-40 * 24 * time.Hour), EndTime: now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/deals/"+strconv.FormatInt(id, 10)+"/bids", bidBody, wallet)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This deal has expired", decode(t, rec)["error"])
}

func TestSubmitBid_RateLimited(t *testing.T) {
	ts := newTestServer(t, api.Config{BidRatePerMin: 1, BidBurst: 1})

	rec := ts.do(t, http.MethodPost, "/api/deals/1/bids", bidBody, wallet)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/deals/1/bids", bidBody, wallet)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Otra wallet tiene su propio cupo.
	rec = ts.do(t, http.MethodPost, "/api/deals/1/bids", bidBody, "0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestSubmitBid_InvalidWalletNotRateLimited(t *testing.T) {
	ts := newTestServer(t, api.Config{BidRatePerMin: 1, BidBurst: 1})

	for _, from := range []string{"not-a-wallet", "not-a-wallet", "0xZZZ"} {
		rec := ts.do(t, http.MethodPost, "/api/deals/1/bids", bidBody, from)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, from)
	}

	// Mayúsculas y minúsculas de la misma address comparten cupo.
	rec := ts.do(t, http.MethodPost, "/api/deals/1/bids", bidBody, wallet)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = ts.do(t, http.MethodPost, "/api/deals/1/bids", bidBody, strings.ToLower(wallet))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestDealLifecycle_Conflicts(t *testing.T) {
	ts := newTestServer(t, api.Config{})
	report := `{"totalViews":"150000","totalEngagement":"12000","conversionRate":"2.5","revenue":"8000"}`

	rec := ts.do(t, http.MethodPost, "/api/deals/5/accept", "", wallet)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This deal has already been accepted", decode(t, rec)["error"])

	rec = ts.do(t, http.MethodPost, "/api/deals/1/performance", report, wallet)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Performance can only be reported on an active deal", decode(t, rec)["error"])

	got, err := ts.db.GetDeal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DealEncrypted, got.Status)
	assert.Empty(t, ts.contract.Sent())
}

func TestSubmitBid_ApprovalRequired(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodPost, "/api/deals",
		`{"title":"Closed Qualifier","description":"Invite only","amount":"1","duration":"7","streamerAddress":"streamer.eth","requiresApproval":true}`, wallet)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/deals/6/bids", bidBody, wallet)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "This deal requires sponsor approval before accepting bids", decode(t, rec)["error"])

	rec = ts.do(t, http.MethodPost, "/api/deals/6/accept", "", wallet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/deals/6/bids", bidBody, wallet)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateAcceptReport(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodPost, "/api/deals",
		`{"title":"Summer Invitational","description":"LAN","amount":"2","duration":"14","streamerAddress":"streamer.eth"}`, wallet)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	deal := body["deal"].(map[string]any)
	assert.EqualValues(t, 6, deal["id"])
	assert.Equal(t, "encrypted", deal["status"])
	assert.Equal(t, "createSponsorshipDeal", body["receipt"].(map[string]any)["method"])

	rec = ts.do(t, http.MethodPost, "/api/deals/6/accept", "", wallet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got, err := ts.db.GetDeal(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, domain.DealActive, got.Status)

	rec = ts.do(t, http.MethodPost, "/api/deals/6/performance",
		`{"totalViews":"150000","totalEngagement":"12000","conversionRate":"2.5","revenue":"8000"}`, wallet)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got, err = ts.db.GetDeal(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, domain.DealCompleted, got.Status)

	assert.Len(t, ts.contract.Sent(), 3)
}

func TestCreateDeal_MissingFields(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodPost, "/api/deals", `{"title":"x"}`, wallet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in all fields", decode(t, rec)["error"])
}

func TestReportPerformance_MissingData(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodPost, "/api/deals/3/performance", `{"totalViews":"10"}`, wallet)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in all performance data", decode(t, rec)["error"])
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t, api.Config{})

	rec := ts.do(t, http.MethodGet, "/api/tournaments/dashboard", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["liveCount"])
	assert.EqualValues(t, 1, body["startingCount"])
	assert.EqualValues(t, 2, body["revealedDeals"])
	assert.Equal(t, "$150,000", body["revealedValue"])
}

func TestOptionsAndWalletConfig(t *testing.T) {
	ts := newTestServer(t, api.Config{Wallet: api.WalletInfo{
		AppName: "Lock and Load Sponsors", Chain: "sepolia", ChainID: 11155111, ProjectID: "demo",
	}})

	rec := ts.do(t, http.MethodGet, "/api/options", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["platform"], 6)

	rec = ts.do(t, http.MethodGet, "/api/wallet/config", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Lock and Load Sponsors", body["appName"])
	assert.EqualValues(t, 11155111, body["chainId"])
}
