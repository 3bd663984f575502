package billing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// partyDetailColumns lists PartyDetails in scan order for alias p.
const partyDetailColumns = `
	p.name, p.identification_number, COALESCE(p.tax_number, ''), COALESCE(p.account_number, ''),
	COALESCE(p.bank_code, ''), COALESCE(p.iban, ''), COALESCE(p.telephone, ''), COALESCE(p.mail, ''),
	COALESCE(p.street, ''), COALESCE(p.zip, ''), COALESCE(p.city, ''), p.country, COALESCE(p.note, '')`

// PartyRepository persists parties in PostgreSQL.
type PartyRepository struct {
	db *pgxpool.Pool
}

// NewPartyRepository creates a new PartyRepository.
func NewPartyRepository(db *pgxpool.Pool) *PartyRepository {
	return &PartyRepository{db: db}
}

// List returns parties ordered by name.
func (r *PartyRepository) List(ctx context.Context, includeHidden bool) ([]Party, error) {
	q := `SELECT p.id, ` + partyDetailColumns + `, p.hidden
		FROM persons p
		WHERE ($1 OR NOT p.hidden)
		ORDER BY p.name, p.id`
	return r.queryParties(ctx, q, includeHidden)
}

// SearchByName returns parties whose name contains query, ignoring case.
func (r *PartyRepository) SearchByName(ctx context.Context, query string, includeHidden bool) ([]Party, error) {
	q := `SELECT p.id, ` + partyDetailColumns + `, p.hidden
		FROM persons p
		WHERE ($1 OR NOT p.hidden)
		  AND p.name ILIKE '%' || $2 || '%' ESCAPE '\'
		ORDER BY p.name, p.id`
	return r.queryParties(ctx, q, includeHidden, escapeLike(query))
}

// Get returns a party by id regardless of its hidden flag.
func (r *PartyRepository) Get(ctx context.Context, id int64) (*Party, error) {
	q := `SELECT p.id, ` + partyDetailColumns + `, p.hidden FROM persons p WHERE p.id = $1`
	parties, err := r.queryParties(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if len(parties) == 0 {
		return nil, ErrNotFound
	}
	return &parties[0], nil
}

// Create inserts p and sets its ID.
func (r *PartyRepository) Create(ctx context.Context, p *Party) error {
	q := `
		INSERT INTO persons (name, identification_number, tax_number, account_number, bank_code, iban,
		                     telephone, mail, street, zip, city, country, note, hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	d := p.PartyDetails
	err := r.db.QueryRow(ctx, q,
		d.Name, d.IdentificationNumber, d.TaxNumber, d.AccountNumber, d.BankCode, d.IBAN,
		d.Telephone, d.Mail, d.Street, d.Zip, d.City, string(d.Country), d.Note, p.Hidden,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create party: %w", err)
	}
	return nil
}

// Update replaces the stored fields of p, including Hidden.
func (r *PartyRepository) Update(ctx context.Context, p *Party) error {
	q := `
		UPDATE persons
		SET name = $2, identification_number = $3, tax_number = $4, account_number = $5, bank_code = $6,
		    iban = $7, telephone = $8, mail = $9, street = $10, zip = $11, city = $12, country = $13,
		    note = $14, hidden = $15
		WHERE id = $1`
	d := p.PartyDetails
	tag, err := r.db.Exec(ctx, q, p.ID,
		d.Name, d.IdentificationNumber, d.TaxNumber, d.AccountNumber, d.BankCode,
		d.IBAN, d.Telephone, d.Mail, d.Street, d.Zip, d.City, string(d.Country),
		d.Note, p.Hidden,
	)
	if err != nil {
		return fmt.Errorf("update party: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetHidden flips the soft-delete flag.
func (r *PartyRepository) SetHidden(ctx context.Context, id int64, hidden bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE persons SET hidden = $2 WHERE id = $1`, id, hidden)
	if err != nil {
		return fmt.Errorf("set party hidden: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Statistics sums, per party, the price of invoices it issued as seller.
// Parties without sales report zero. Ordered by revenue descending, then name.
func (r *PartyRepository) Statistics(ctx context.Context, includeHidden bool) ([]PartyStatistics, error) {
	q := `
		SELECT p.id, p.name, COALESCE(SUM(i.price), 0) AS revenue
		FROM persons p
		LEFT JOIN invoices i ON i.seller_id = p.id AND ($1 OR NOT i.hidden)
		WHERE ($1 OR NOT p.hidden)
		GROUP BY p.id, p.name
		ORDER BY revenue DESC, p.name, p.id`
	rows, err := r.db.Query(ctx, q, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("party statistics: %w", err)
	}
	defer rows.Close()

	stats := []PartyStatistics{}
	for rows.Next() {
		var s PartyStatistics
		if err := rows.Scan(&s.PersonID, &s.PersonName, &s.Revenue); err != nil {
			return nil, fmt.Errorf("scan party statistics: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *PartyRepository) queryParties(ctx context.Context, q string, args ...any) ([]Party, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query parties: %w", err)
	}
	defer rows.Close()

	parties := []Party{}
	for rows.Next() {
		var p Party
		dest := append([]any{&p.ID}, partyDetailDest(&p.PartyDetails)...)
		if err := rows.Scan(append(dest, &p.Hidden)...); err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		parties = append(parties, p)
	}
	return parties, rows.Err()
}

// partyDetailDest returns scan targets matching partyDetailColumns.
func partyDetailDest(d *PartyDetails) []any {
	return []any{
		&d.Name, &d.IdentificationNumber, &d.TaxNumber, &d.AccountNumber,
		&d.BankCode, &d.IBAN, &d.Telephone, &d.Mail,
		&d.Street, &d.Zip, &d.City, (*string)(&d.Country), &d.Note,
	}
}
