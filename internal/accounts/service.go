package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmerrifield20/invoicehub/internal/email"
	"github.com/jmerrifield20/invoicehub/internal/identity"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for every failed password login, whatever the cause.
var ErrInvalidCredentials = errors.New("invalid credentials")

// accountRepo is the storage interface consumed by AccountService.
type accountRepo interface {
	Create(ctx context.Context, a *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByGoogleID(ctx context.Context, googleID string) (*Account, error)
	SaveGoogleLink(ctx context.Context, a *Account) error
}

// AccountService registers, authenticates and resolves accounts.
type AccountService struct {
	repo     accountRepo
	mailer   email.Sender
	loginURL string
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService. loginURL is quoted in the
// welcome email.
func NewAccountService(repo accountRepo, mailer email.Sender, loginURL string, logger *zap.Logger) *AccountService {
	return &AccountService{repo: repo, mailer: mailer, loginURL: loginURL, logger: logger}
}

// Register creates a local account with a bcrypt-hashed password.
// Returns ErrDuplicateEmail when the email is taken.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*Account, error) {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Password) == "" {
		return nil, &ErrValidation{Msg: "email and password are required"}
	}
	if len(in.Password) > identity.MaxPasswordBytes {
		return nil, &ErrValidation{Msg: fmt.Sprintf("password must be at most %d bytes", identity.MaxPasswordBytes)}
	}

	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		Email:        in.Email,
		PasswordHash: hash,
		Enabled:      true,
		Role:         RoleUser,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("account registered", zap.Int64("account_id", a.ID))

	if err := s.mailer.Send(ctx, email.Welcome(a.Email, a.FirstName, s.loginURL)); err != nil {
		// Non-fatal: the account exists either way.
		s.logger.Warn("failed to send welcome email",
			zap.Int64("account_id", a.ID),
			zap.Error(err),
		)
	}
	return a, nil
}

// Login verifies email/password credentials and returns the account on success.
// Unknown email, OAuth-only account, disabled account and wrong password are
// indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, emailAddr, password string) (*Account, error) {
	a, err := s.repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !a.Enabled || !a.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if !identity.CheckPassword(password, a.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// ResolveExternal maps a verified Google identity onto an account:
// an existing Google binding wins, then an account with the same email is
// linked, otherwise a new password-less account is created.
func (s *AccountService) ResolveExternal(ctx context.Context, ext identity.ExternalIdentity) (*Account, error) {
	a, err := s.resolveExisting(ctx, ext)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	first, last := ParseName(ext.Name)
	a = &Account{
		Email:          ext.Email,
		Enabled:        true,
		Role:           RoleUser,
		FirstName:      first,
		LastName:       last,
		OAuthUser:      true,
		GoogleID:       ext.Subject,
		ProfilePicture: ext.Picture,
	}
	err = s.repo.Create(ctx, a)
	switch {
	case err == nil:
		s.logger.Info("account created from google identity", zap.Int64("account_id", a.ID))
		return a, nil
	case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateGoogleID):
		// A concurrent first login won the insert; resolve against its row.
		s.logger.Debug("concurrent google account creation, re-resolving", zap.Error(err))
		return s.resolveExisting(ctx, ext)
	default:
		return nil, fmt.Errorf("create google account: %w", err)
	}
}

// resolveExisting covers the lookup and link branches of ResolveExternal.
// Returns ErrNotFound when neither branch applies.
func (s *AccountService) resolveExisting(ctx context.Context, ext identity.ExternalIdentity) (*Account, error) {
	a, err := s.repo.GetByGoogleID(ctx, ext.Subject)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup by google id: %w", err)
	}

	a, err = s.repo.GetByEmail(ctx, ext.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	linkGoogle(a, ext)
	if err := s.repo.SaveGoogleLink(ctx, a); err != nil {
		return nil, fmt.Errorf("link google identity: %w", err)
	}
	s.logger.Info("google identity linked to existing account", zap.Int64("account_id", a.ID))
	return a, nil
}

// linkGoogle binds ext to a. The avatar is always replaced; the parsed names
// are candidates that SaveGoogleLink only writes over blank stored names.
func linkGoogle(a *Account, ext identity.ExternalIdentity) {
	a.OAuthUser = true
	a.GoogleID = ext.Subject
	a.ProfilePicture = ext.Picture
	a.FirstName, a.LastName = ParseName(ext.Name)
}

// GetByEmail retrieves an account by email.
func (s *AccountService) GetByEmail(ctx context.Context, emailAddr string) (*Account, error) {
	return s.repo.GetByEmail(ctx, emailAddr)
}

// LookupPrincipal resolves a token subject into the request principal.
// Disabled accounts are treated as missing.
func (s *AccountService) LookupPrincipal(ctx context.Context, emailAddr string) (*identity.Principal, error) {
	a, err := s.repo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	if !a.Enabled {
		return nil, ErrNotFound
	}
	return &identity.Principal{AccountID: a.ID, Email: a.Email, Role: string(a.Role)}, nil
}

// ParseName splits a display name into first and last name on the first space.
// "Alice Smith" → ("Alice", "Smith"); "Cher" → ("Cher", ""); "" → ("", "").
func ParseName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	first, last, _ = strings.Cut(full, " ")
	return first, strings.TrimSpace(last)
}
