package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/invoicehub/internal/accounts"
	"github.com/jmerrifield20/invoicehub/internal/billing"
	"github.com/jmerrifield20/invoicehub/internal/identity"
	"go.uber.org/zap"
)

// writeError translates a service error into a JSON error response.
// Unrecognised errors are logged and reported as 500 without detail.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var billingInvalid *billing.ErrValidation
	var accountInvalid *accounts.ErrValidation

	switch {
	case errors.As(err, &billingInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": billingInvalid.Msg})
	case errors.As(err, &accountInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": accountInvalid.Msg})
	case errors.Is(err, accounts.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, accounts.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, identity.ErrInvalidAssertion):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid identity token"})
	case errors.Is(err, billing.ErrNotFound), errors.Is(err, accounts.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger.Error(op, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// parseID reads the :id path parameter. On failure it writes 400 and returns false.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// optionalInt64 reads an optional integer query parameter.
func optionalInt64(c *gin.Context, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.New(key + " must be an integer")
	}
	return &v, nil
}
