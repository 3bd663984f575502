package accounts

import "time"

// Role is the authorization role stored on every account.
type Role string

// RoleUser is the only role issued today.
const RoleUser Role = "ROLE_USER"

// Account is an invoicehub login identity. An account may hold a local
// password, a linked Google identity, or both.
type Account struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Enabled        bool      `json:"enabled"`
	Role           Role      `json:"role"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Phone          string    `json:"phone,omitempty"`
	OAuthUser      bool      `json:"oauthUser"`
	GoogleID       string    `json:"-"`
	ProfilePicture string    `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// HasPassword reports whether the account can log in with a local password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// RegisterInput carries the fields accepted by local registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// ErrValidation is returned when caller-supplied input is rejected.
type ErrValidation struct {
	Msg string
}

func (e *ErrValidation) Error() string { return e.Msg }
