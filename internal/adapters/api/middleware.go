package api

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-ID"

// requestID asigna un id a cada request, o respeta el que envía el cliente.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger registra cada request con slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", c.GetString("request_id"),
		}
		if w := walletFrom(c); w != "" {
			attrs = append(attrs, "wallet", w)
		}
		switch {
		case status >= http.StatusInternalServerError:
			slog.Error("http request", attrs...)
		case status >= http.StatusBadRequest:
			slog.Warn("http request", attrs...)
		default:
			slog.Debug("http request", attrs...)
		}
	}
}

// walletFrom devuelve la address de la cabecera; vacío si no hay wallet conectada.
func walletFrom(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(WalletHeader))
}

// walletLimiter limita el envío de bids por wallet, con un limiter por address.
type walletLimiter struct {
	every rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newWalletLimiter(perMinute float64, burst int) *walletLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &walletLimiter{
		every:    rate.Limit(perMinute / 60),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// allow descuenta un bid del cupo de la wallet. Una cabecera que no es una
// address no crea entrada: el marketplace la rechaza con 401.
func (l *walletLimiter) allow(wallet string) bool {
	if !common.IsHexAddress(wallet) {
		return true
	}
	key := common.HexToAddress(wallet).Hex()
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// bidLimit rechaza con 429 a la wallet que supera su cupo de bids.
// Sin wallet no limita: el marketplace responde 401.
func (s *Server) bidLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		w := walletFrom(c)
		if s.limiter == nil || w == "" {
			c.Next()
			return
		}
		if !s.limiter.allow(w) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many bids, please wait before bidding again"})
			return
		}
		c.Next()
	}
}
