package identity

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ctxPrincipal = "invoicehub_principal"

// Principal is the authenticated account attached to a request.
type Principal struct {
	AccountID int64
	Email     string
	Role      string
}

// PrincipalLookup resolves a token subject to a live principal. It returns an
// error when the account no longer exists or is disabled.
type PrincipalLookup interface {
	LookupPrincipal(ctx context.Context, email string) (*Principal, error)
}

// Authenticate returns a Gin middleware that resolves a Bearer token into a
// Principal. It never aborts: a missing, malformed or rejected token leaves the
// request anonymous and RequireAccount decides what to do with it.
func Authenticate(tokens *TokenIssuer, lookup PrincipalLookup, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := tokens.Verify(tokenStr)
		if err != nil {
			logger.Debug("bearer token rejected", zap.Error(err))
			c.Next()
			return
		}

		p, err := lookup.LookupPrincipal(c.Request.Context(), claims.Email())
		if err != nil {
			logger.Debug("bearer subject not resolvable",
				zap.String("subject", claims.Email()),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Set(ctxPrincipal, p)
		c.Next()
	}
}

// RequireAccount returns a Gin middleware that rejects requests without a
// Principal with 401.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFromCtx(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// PrincipalFromCtx retrieves the principal injected by Authenticate.
// Returns nil for anonymous requests.
func PrincipalFromCtx(c *gin.Context) *Principal {
	v, _ := c.Get(ctxPrincipal)
	p, _ := v.(*Principal)
	return p
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return tok, tok != ""
}
