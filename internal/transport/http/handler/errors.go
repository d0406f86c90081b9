package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/flintandflours/storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer = "Internal server error"
	errTokenInvalid   = "Token is invalid or expired"
)

// statusFor maps a domain sentinel to its HTTP status. Unknown errors
// fall through to 500 at the call site.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidRegion),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidSubscriptionType),
		errors.Is(err, domain.ErrInvalidCadence),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidOrderStatus),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrMissingDeliveryAddress):
		return http.StatusBadRequest, true
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrSubscriptionNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrInvalidStatusTransition),
		errors.Is(err, domain.ErrNotSubscriptionEligible),
		errors.Is(err, domain.ErrSubscriptionNotActive):
		return http.StatusConflict, true
	case errors.Is(err, domain.ErrPaymentGateway):
		return http.StatusBadGateway, true
	}
	return 0, false
}

// respondError writes the mapped status with the sentinel's message,
// or logs and returns 500 for anything unrecognized.
func respondError(c *gin.Context, logger *slog.Logger, op string, err error) {
	if status, ok := statusFor(err); ok {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	logger.Error(op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}
