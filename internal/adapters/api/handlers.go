package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alejandrodnm/lockload/internal/application/marketplace"
	"github.com/alejandrodnm/lockload/internal/domain"
)

// GET /health
func (s *Server) health(c *gin.Context) {
	if s.pinger != nil {
		if err := s.pinger.Ping(c.Request.Context()); err != nil {
			slog.Error("api: health check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// listDeals devuelve el catálogo enmascarado.
// GET /api/deals?q=world&status=encrypted
func (s *Server) listDeals(c *gin.Context) {
	deals, err := s.market.ListDeals(c.Request.Context(), c.Query("q"), c.DefaultQuery("status", domain.StatusAll))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deals": deals, "count": len(deals)})
}

// GET /api/deals/:id
func (s *Server) getDeal(c *gin.Context) {
	id, err := marketplace.ParseDealID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	detail, err := s.market.GetDeal(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GET /api/deals/:id/bids
func (s *Server) listBids(c *gin.Context) {
	id, err := marketplace.ParseDealID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	bids, err := s.market.ListBids(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if bids == nil {
		bids = []domain.Bid{}
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

// submitBid cifra y envía un bid sobre el deal.
// POST /api/deals/:id/bids  (cabecera X-Wallet-Address)
func (s *Server) submitBid(c *gin.Context) {
	id, err := marketplace.ParseDealID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var req domain.BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.DealID = id
	req.Bidder = walletFrom(c)

	bid, err := s.market.SubmitBid(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bid": bid, "message": "Bid submitted successfully!"})
}

// POST /api/deals
func (s *Server) createDeal(c *gin.Context) {
	var req domain.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.Creator = walletFrom(c)

	deal, receipt, err := s.market.CreateDeal(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"deal":    deal.View(),
		"receipt": receipt,
		"message": "Deal created successfully!",
	})
}

// POST /api/deals/:id/accept
func (s *Server) acceptDeal(c *gin.Context) {
	id, err := marketplace.ParseDealID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	receipt, err := s.market.AcceptDeal(c.Request.Context(), walletFrom(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt, "message": "Deal accepted successfully!"})
}

// POST /api/deals/:id/performance
func (s *Server) reportPerformance(c *gin.Context) {
	id, err := marketplace.ParseDealID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	var report domain.PerformanceReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	receipt, err := s.market.ReportPerformance(c.Request.Context(), walletFrom(c), id, report)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt, "message": "Performance reported successfully!"})
}

// GET /api/tournaments/dashboard
func (s *Server) getDashboard(c *gin.Context) {
	dash, err := s.dashboard.Snapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// GET /api/options
func (s *Server) options(c *gin.Context) {
	c.JSON(http.StatusOK, marketplace.FormOptions())
}

// GET /api/wallet/config
func (s *Server) walletConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg.Wallet)
}
