// Package api expone el marketplace y el dashboard de torneos como API JSON sobre gin.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alejandrodnm/lockload/internal/application/marketplace"
	"github.com/alejandrodnm/lockload/internal/domain"
)

// WalletHeader lleva la address de la wallet conectada del cliente.
const WalletHeader = "X-Wallet-Address"

// WalletInfo es la configuración de conexión de wallets que consume el frontend.
type WalletInfo struct {
	AppName   string `json:"appName"`
	Chain     string `json:"chain"`
	ChainID   int64  `json:"chainId"`
	ProjectID string `json:"projectId"`
}

// Config contiene la configuración del servidor HTTP.
type Config struct {
	Addr            string
	BidRatePerMin   float64 // bids por minuto y wallet (0 = sin límite)
	BidBurst        int
	ShutdownTimeout time.Duration
	Wallet          WalletInfo
}

// DashboardSource devuelve la foto actual del dashboard de torneos.
type DashboardSource interface {
	Snapshot(ctx context.Context) (domain.Dashboard, error)
}

// Pinger comprueba que el almacenamiento responde.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server es la API HTTP del marketplace.
type Server struct {
	cfg       Config
	market    *marketplace.Marketplace
	dashboard DashboardSource
	pinger    Pinger
	limiter   *walletLimiter
	router    *gin.Engine
}

// NewServer monta el router con todas las rutas.
func NewServer(cfg Config, market *marketplace.Marketplace, dashboard DashboardSource) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		cfg:       cfg,
		market:    market,
		dashboard: dashboard,
		limiter:   newWalletLimiter(cfg.BidRatePerMin, cfg.BidBurst),
	}
	s.router = s.routes()
	return s
}

// SetPinger conecta el health check con el almacenamiento.
// Sin pinger /health siempre responde ok.
func (s *Server) SetPinger(p Pinger) {
	s.pinger = p
}

// Handler devuelve el http.Handler del servidor (tests y embebido).
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger())

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.GET("/deals", s.listDeals)
		api.POST("/deals", s.createDeal)
		api.GET("/deals/:id", s.getDeal)
		api.GET("/deals/:id/bids", s.listBids)
		api.POST("/deals/:id/bids", s.bidLimit(), s.submitBid)
		api.POST("/deals/:id/accept", s.acceptDeal)
		api.POST("/deals/:id/performance", s.reportPerformance)

		api.GET("/tournaments/dashboard", s.getDashboard)
		api.GET("/options", s.options)
		api.GET("/wallet/config", s.walletConfig)
	}
	return r
}

// Run sirve hasta que el contexto se cancele y luego cierra ordenadamente.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api.Run: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api.Run: shutdown: %w", err)
	}
	slog.Info("http server stopped")
	return nil
}
