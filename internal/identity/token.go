package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess     = "access"
	tokenTypeOAuthState = "oauth-state"

	oauthStateTTL = 10 * time.Minute
)

// ErrWeakSecret is returned by NewTokenIssuer when the signing secret is too short.
var ErrWeakSecret = errors.New("token secret must be at least 32 bytes")

// AccountClaims are the JWT claims of an invoicehub bearer token.
// Subject carries the account email.
type AccountClaims struct {
	jwt.RegisteredClaims
	AccountID int64  `json:"account_id,omitempty"`
	Role      string `json:"role,omitempty"`
	Type      string `json:"type"` // "access" or "oauth-state"
}

// Email returns the account email the token was issued to.
func (c *AccountClaims) Email() string {
	return c.Subject
}

// TokenIssuer issues and verifies HS256 bearer tokens signed with a shared secret.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer.
//
//	secret: HMAC key, at least 32 bytes.
//	issuer: the "iss" claim value.
//	ttl: token lifetime (default: 24 hours).
func NewTokenIssuer(secret, issuer string, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Issue creates a signed access token for the account.
func (t *TokenIssuer) Issue(accountID int64, email, role string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("issue token: empty subject")
	}
	now := time.Now().UTC()
	claims := AccountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			ID:        uuid.New().String(),
		},
		AccountID: accountID,
		Role:      role,
		Type:      tokenTypeAccess,
	}
	return t.sign(claims)
}

// Verify parses and validates an access token, returning its claims.
// Signature, algorithm, issuer and expiry are all checked.
func (t *TokenIssuer) Verify(tokenStr string) (*AccountClaims, error) {
	claims, err := t.parse(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if claims.Type != tokenTypeAccess {
		return nil, fmt.Errorf("not an access token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

// IssueOAuthState creates a short-lived JWT used as the OAuth state parameter.
// The provider name is embedded in the token so the callback can verify it.
func (t *TokenIssuer) IssueOAuthState(provider string) (string, error) {
	now := time.Now().UTC()
	claims := AccountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   provider,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(oauthStateTTL)),
			ID:        uuid.New().String(),
		},
		Type: tokenTypeOAuthState,
	}
	return t.sign(claims)
}

// VerifyOAuthState validates an OAuth state JWT and returns the embedded provider.
func (t *TokenIssuer) VerifyOAuthState(tokenStr string) (string, error) {
	claims, err := t.parse(tokenStr)
	if err != nil {
		return "", fmt.Errorf("invalid oauth state: %w", err)
	}
	if claims.Type != tokenTypeOAuthState {
		return "", fmt.Errorf("not an oauth state token")
	}
	return claims.Subject, nil
}

func (t *TokenIssuer) sign(claims AccountClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) parse(tokenStr string) (*AccountClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&AccountClaims{},
		func(tok *jwt.Token) (any, error) {
			if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
