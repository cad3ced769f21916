package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alejandrodnm/lockload/internal/domain"
)

// statusFor traduce un error del marketplace a código HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrWalletNotConnected):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrDealNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDealExpired), errors.Is(err, domain.ErrDealNotOpen),
		errors.Is(err, domain.ErrDealNotActive), errors.Is(err, domain.ErrApprovalRequired):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEncoding), errors.Is(err, domain.ErrTransactionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError responde {"error": mensaje} y, para formularios, {"fields": {...}}.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": domain.UserMessage(err)}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	if status == http.StatusInternalServerError {
		slog.Error("api: unexpected error", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, body)
}
