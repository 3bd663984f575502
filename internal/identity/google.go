package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultGoogleCertsURL is Google's published JWKS for ID-token signing keys.
const DefaultGoogleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

// defaultKeyRefreshInterval is the minimum spacing between key-set fetches.
const defaultKeyRefreshInterval = time.Minute

// ErrInvalidAssertion is the single error returned for any rejected external
// identity assertion: bad signature, expiry, wrong audience or issuer,
// malformed input, or failure to obtain signing keys.
var ErrInvalidAssertion = errors.New("invalid identity assertion")

var errKeyFetchThrottled = errors.New("signing key refresh throttled")

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// ExternalIdentity is the verified subset of a Google ID token.
// Optional claims that are absent are empty strings.
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type googleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleVerifier validates Google-issued ID tokens for a single OAuth client.
// Signing keys come from an oidc.RemoteKeySet, which caches them, refetches
// when a token names an unknown key and merges concurrent refreshes. Fetches
// are additionally spaced at least refreshEvery apart.
type GoogleVerifier struct {
	clientID     string
	certsURL     string
	httpClient   *http.Client
	refreshEvery time.Duration
	logger       *zap.Logger

	verifier *oidc.IDTokenVerifier
}

// GoogleOption configures a GoogleVerifier.
type GoogleOption func(*GoogleVerifier)

// WithCertsURL overrides the JWKS endpoint.
func WithCertsURL(u string) GoogleOption {
	return func(v *GoogleVerifier) {
		if u != "" {
			v.certsURL = u
		}
	}
}

// WithKeyHTTPClient sets the HTTP client used to fetch signing keys.
func WithKeyHTTPClient(hc *http.Client) GoogleOption {
	return func(v *GoogleVerifier) {
		if hc != nil {
			v.httpClient = hc
		}
	}
}

// WithKeyRefreshInterval sets the minimum time between two key-set fetches.
func WithKeyRefreshInterval(d time.Duration) GoogleOption {
	return func(v *GoogleVerifier) {
		if d > 0 {
			v.refreshEvery = d
		}
	}
}

// NewGoogleVerifier creates a verifier that accepts tokens whose audience is clientID.
func NewGoogleVerifier(clientID string, logger *zap.Logger, opts ...GoogleOption) *GoogleVerifier {
	v := &GoogleVerifier{
		clientID:     clientID,
		certsURL:     DefaultGoogleCertsURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		refreshEvery: defaultKeyRefreshInterval,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(v)
	}

	keyClient := *v.httpClient
	keyClient.Transport = &throttledTransport{
		limiter: rate.NewLimiter(rate.Every(v.refreshEvery), 1),
		next:    v.httpClient.Transport,
	}
	keys := oidc.NewRemoteKeySet(oidc.ClientContext(context.Background(), &keyClient), v.certsURL)

	// Google signs with two issuer spellings; the issuer is checked in verify.
	v.verifier = oidc.NewVerifier("https://accounts.google.com", keys, &oidc.Config{
		ClientID:             clientID,
		SupportedSigningAlgs: []string{oidc.RS256},
		SkipIssuerCheck:      true,
	})
	return v
}

// Verify checks idToken and returns the identity it asserts.
// Every failure is reported as ErrInvalidAssertion.
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*ExternalIdentity, error) {
	id, err := v.verify(ctx, idToken)
	if err != nil {
		v.logger.Debug("google id token rejected", zap.Error(err))
		return nil, ErrInvalidAssertion
	}
	return id, nil
}

func (v *GoogleVerifier) verify(ctx context.Context, idToken string) (*ExternalIdentity, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("google client id not configured")
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("empty id token")
	}

	tok, err := v.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !googleIssuers[tok.Issuer] {
		return nil, fmt.Errorf("unexpected issuer %q", tok.Issuer)
	}

	var profile googleProfile
	if err := tok.Claims(&profile); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	if tok.Subject == "" || profile.Email == "" {
		return nil, fmt.Errorf("token lacks subject or email")
	}

	return &ExternalIdentity{
		Subject: tok.Subject,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	}, nil
}

// throttledTransport refuses requests beyond the limiter's rate, so tokens
// naming unknown key ids cannot turn into one upstream fetch each.
type throttledTransport struct {
	limiter *rate.Limiter
	next    http.RoundTripper
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.limiter.Allow() {
		return nil, errKeyFetchThrottled
	}
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	return next.RoundTrip(req)
}
