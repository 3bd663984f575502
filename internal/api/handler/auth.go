package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/invoicehub/internal/accounts"
	"github.com/jmerrifield20/invoicehub/internal/identity"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const providerGoogle = "google"

// OAuthProviderConfig holds OAuth client credentials for a single provider.
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// accountSvc is the interface expected by AuthHandler, satisfied by *accounts.AccountService.
type accountSvc interface {
	Register(ctx context.Context, in accounts.RegisterInput) (*accounts.Account, error)
	Login(ctx context.Context, email, password string) (*accounts.Account, error)
	ResolveExternal(ctx context.Context, ext identity.ExternalIdentity) (*accounts.Account, error)
	GetByEmail(ctx context.Context, email string) (*accounts.Account, error)
}

// assertionVerifier checks an ID token issued by an external provider.
type assertionVerifier interface {
	Verify(ctx context.Context, idToken string) (*identity.ExternalIdentity, error)
}

// AuthHandler handles account authentication routes.
type AuthHandler struct {
	accounts    accountSvc
	tokens      *identity.TokenIssuer
	google      assertionVerifier
	oauthCfg    *oauth2.Config
	frontendURL string
	logger      *zap.Logger
}

// NewAuthHandler creates an AuthHandler. The Google redirect flow is enabled
// only when provider carries both a client id and a secret.
func NewAuthHandler(
	svc accountSvc,
	tokens *identity.TokenIssuer,
	verifier assertionVerifier,
	provider OAuthProviderConfig,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:    svc,
		tokens:      tokens,
		google:      verifier,
		oauthCfg:    buildGoogleOAuthConfig(provider),
		frontendURL: "http://localhost:3000",
		logger:      logger,
	}
}

// SetFrontendURL sets the base URL of the frontend for OAuth callback redirects.
func (h *AuthHandler) SetFrontendURL(url string) {
	h.frontendURL = url
}

// SetOAuthEndpoint overrides the provider endpoint of the redirect flow.
func (h *AuthHandler) SetOAuthEndpoint(ep oauth2.Endpoint) {
	if h.oauthCfg != nil {
		h.oauthCfg.Endpoint = ep
	}
}

func buildGoogleOAuthConfig(p OAuthProviderConfig) *oauth2.Config {
	if p.ClientID == "" || p.ClientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		RedirectURL:  p.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

// Register mounts all auth routes on the provided router group. The group is
// expected to run identity.Authenticate so /auth/me can see the principal.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.RegisterAccount)
		auth.POST("/login", h.Login)
		auth.POST("/google", h.GoogleLogin)
		auth.GET("/oauth/:provider", h.OAuthRedirect)
		auth.GET("/oauth/:provider/callback", h.OAuthCallback)
		auth.GET("/me", identity.RequireAccount(), h.Me)
	}
}

// ─── Request / Response types ────────────────────────────────────────────────

type registerRequest struct {
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type sessionResponse struct {
	Token          string `json:"token"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProfilePicture string `json:"profilePicture"`
}

// ─── Handlers ────────────────────────────────────────────────────────────────

// RegisterAccount handles POST /auth/register.
func (h *AuthHandler) RegisterAccount(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.accounts.Register(c.Request.Context(), accounts.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeError(c, h.logger, "register", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registration successful"})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	recordAuthAttempt("password", err == nil)
	if err != nil {
		writeError(c, h.logger, "login", err)
		return
	}
	h.respondSession(c, a)
}

// GoogleLogin handles POST /auth/google with an ID token obtained by the client.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req googleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.resolveGoogle(c.Request.Context(), req.IDToken)
	recordAuthAttempt("google", err == nil)
	if err != nil {
		writeError(c, h.logger, "google login", err)
		return
	}
	h.respondSession(c, a)
}

func (h *AuthHandler) resolveGoogle(ctx context.Context, idToken string) (*accounts.Account, error) {
	ext, err := h.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return h.accounts.ResolveExternal(ctx, *ext)
}

func (h *AuthHandler) respondSession(c *gin.Context, a *accounts.Account) {
	tok, err := h.tokens.Issue(a.ID, a.Email, string(a.Role))
	if err != nil {
		h.logger.Error("issue access token", zap.Int64("account_id", a.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, sessionResponse{
		Token:          tok,
		Email:          a.Email,
		Role:           string(a.Role),
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		ProfilePicture: a.ProfilePicture,
	})
}

// Me handles GET /auth/me and returns the calling account.
func (h *AuthHandler) Me(c *gin.Context) {
	p := identity.PrincipalFromCtx(c)
	a, err := h.accounts.GetByEmail(c.Request.Context(), p.Email)
	if err != nil {
		writeError(c, h.logger, "me", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// OAuthRedirect handles GET /auth/oauth/:provider and redirects to the provider.
func (h *AuthHandler) OAuthRedirect(c *gin.Context) {
	cfg, ok := h.providerConfig(c)
	if !ok {
		return
	}

	state, err := h.tokens.IssueOAuthState(providerGoogle)
	if err != nil {
		h.logger.Error("generate oauth state", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate OAuth state"})
		return
	}

	c.Redirect(http.StatusFound, cfg.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// OAuthCallback handles GET /auth/oauth/:provider/callback. The ID token
// returned by the code exchange goes through the same verifier as POST /auth/google.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	cfg, ok := h.providerConfig(c)
	if !ok {
		return
	}

	gotProvider, err := h.tokens.VerifyOAuthState(c.Query("state"))
	if err != nil || gotProvider != providerGoogle {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid OAuth state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		h.logger.Info("oauth authorization denied",
			zap.String("error", c.Query("error")),
			zap.String("error_description", c.Query("error_description")),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "OAuth authorization failed"})
		return
	}

	oauthToken, err := cfg.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("oauth code exchange", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "OAuth code exchange failed"})
		return
	}
	idToken, _ := oauthToken.Extra("id_token").(string)
	if idToken == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "provider returned no id_token"})
		return
	}

	a, err := h.resolveGoogle(c.Request.Context(), idToken)
	recordAuthAttempt("google_redirect", err == nil)
	if err != nil {
		writeError(c, h.logger, "oauth callback", err)
		return
	}

	tok, err := h.tokens.Issue(a.ID, a.Email, string(a.Role))
	if err != nil {
		h.logger.Error("issue access token after oauth", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	// The fragment never reaches the server, so the token stays client-side.
	c.Redirect(http.StatusFound, h.frontendURL+"/oauth/callback#token="+tok)
}

func (h *AuthHandler) providerConfig(c *gin.Context) (*oauth2.Config, bool) {
	if c.Param("provider") != providerGoogle || h.oauthCfg == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "OAuth provider " + c.Param("provider") + " not configured"})
		return nil, false
	}
	return h.oauthCfg, true
}
