package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an account lookup finds no matching record.
var ErrNotFound = errors.New("account not found")

// ErrDuplicateEmail is returned when an insert collides with an existing email.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrDuplicateGoogleID is returned when a Google identity is already bound to another account.
var ErrDuplicateGoogleID = errors.New("google identity already linked")

const accountColumns = `
	id, email, COALESCE(password_hash, ''), enabled, role,
	COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(phone, ''),
	oauth_user, COALESCE(google_id, ''), COALESCE(profile_picture, ''),
	created_at, updated_at`

// AccountRepository persists accounts in PostgreSQL.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. Sets ID, CreatedAt and UpdatedAt on a.
func (r *AccountRepository) Create(ctx context.Context, a *Account) error {
	now := time.Now().UTC()
	q := `
		INSERT INTO accounts (email, password_hash, enabled, role, first_name, last_name, phone,
		                      oauth_user, google_id, profile_picture, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
		        $8, NULLIF($9, ''), NULLIF($10, ''), $11, $11)
		RETURNING id`
	err := r.db.QueryRow(ctx, q,
		a.Email, a.PasswordHash, a.Enabled, string(a.Role), a.FirstName, a.LastName, a.Phone,
		a.OAuthUser, a.GoogleID, a.ProfilePicture, now,
	).Scan(&a.ID)
	if err != nil {
		return mapWriteError("create account", err)
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	return nil
}

// GetByEmail retrieves an account by exact email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.scanOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

// GetByGoogleID retrieves the account bound to a Google subject.
func (r *AccountRepository) GetByGoogleID(ctx context.Context, googleID string) (*Account, error) {
	return r.scanOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE google_id = $1`, googleID)
}

// SaveGoogleLink persists the Google binding and profile fields of a.
// a.FirstName and a.LastName are candidates: they are written only where the
// stored name is blank, decided under the row lock. On return a holds the
// names actually stored.
func (r *AccountRepository) SaveGoogleLink(ctx context.Context, a *Account) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var storedFirst, storedLast string
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(first_name, ''), COALESCE(last_name, '') FROM accounts WHERE id = $1 FOR UPDATE`,
		a.ID,
	).Scan(&storedFirst, &storedLast)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock account: %w", err)
	}
	first := fillBlank(storedFirst, a.FirstName)
	last := fillBlank(storedLast, a.LastName)

	now := time.Now().UTC()
	q := `
		UPDATE accounts
		SET oauth_user = $2, google_id = NULLIF($3, ''), profile_picture = NULLIF($4, ''),
		    first_name = NULLIF($5, ''), last_name = NULLIF($6, ''), updated_at = $7
		WHERE id = $1`
	if _, err := tx.Exec(ctx, q,
		a.ID, a.OAuthUser, a.GoogleID, a.ProfilePicture, first, last, now,
	); err != nil {
		return mapWriteError("link google identity", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	a.FirstName, a.LastName = first, last
	a.UpdatedAt = now
	return nil
}

// fillBlank keeps stored unless it is blank.
func fillBlank(stored, candidate string) string {
	if strings.TrimSpace(stored) != "" {
		return stored
	}
	return candidate
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "accounts_email_key":
			return ErrDuplicateEmail
		case "accounts_google_id_key":
			return ErrDuplicateGoogleID
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// scanOne executes a single-row query selecting accountColumns.
func (r *AccountRepository) scanOne(ctx context.Context, q string, args ...any) (*Account, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	var a Account
	var role string
	if err := rows.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Enabled, &role,
		&a.FirstName, &a.LastName, &a.Phone,
		&a.OAuthUser, &a.GoogleID, &a.ProfilePicture,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Role = Role(role)
	return &a, rows.Err()
}
