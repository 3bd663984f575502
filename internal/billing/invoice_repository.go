package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PartyRole selects which side of an invoice a party lookup matches.
type PartyRole int

const (
	RoleSeller PartyRole = iota
	RoleBuyer
)

var (
	sellerColumns = strings.ReplaceAll(partyDetailColumns, "p.", "s.")
	buyerColumns  = strings.ReplaceAll(partyDetailColumns, "p.", "b.")
)

var invoiceSelect = `
	SELECT i.id, i.invoice_number, i.issued, i.due_date, COALESCE(i.product, ''),
	       i.price, i.vat, COALESCE(i.note, ''), i.hidden,
	       s.id, ` + sellerColumns + `,
	       b.id, ` + buyerColumns + `
	FROM invoices i
	JOIN persons s ON s.id = i.seller_id
	JOIN persons b ON b.id = i.buyer_id`

// InvoiceRepository persists invoices in PostgreSQL.
type InvoiceRepository struct {
	db *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// List returns invoices matching f, newest issue date first.
func (r *InvoiceRepository) List(ctx context.Context, f InvoiceFilter, includeHidden bool) ([]Invoice, error) {
	q := invoiceSelect + `
		WHERE ($1 OR NOT i.hidden)
		  AND ($2::bigint IS NULL OR i.buyer_id = $2)
		  AND ($3::bigint IS NULL OR i.seller_id = $3)
		  AND ($4 = '' OR i.product ILIKE '%' || $4 || '%' ESCAPE '\')
		  AND ($5::numeric IS NULL OR i.price >= $5)
		  AND ($6::numeric IS NULL OR i.price <= $6)
		ORDER BY i.issued DESC, i.id DESC
		LIMIT $7`
	return r.queryInvoices(ctx, q,
		includeHidden, f.BuyerID, f.SellerID, escapeLike(f.Product),
		nullableDecimal(f.MinPrice), nullableDecimal(f.MaxPrice), f.Limit,
	)
}

// Get returns an invoice by id regardless of its hidden flag.
func (r *InvoiceRepository) Get(ctx context.Context, id int64) (*Invoice, error) {
	invoices, err := r.queryInvoices(ctx, invoiceSelect+` WHERE i.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, ErrNotFound
	}
	return &invoices[0], nil
}

// ListByIdentificationNumber returns invoices where the party with the given
// IČO acts in role, newest first.
func (r *InvoiceRepository) ListByIdentificationNumber(ctx context.Context, ico string, role PartyRole, includeHidden bool) ([]Invoice, error) {
	alias := "s"
	if role == RoleBuyer {
		alias = "b"
	}
	q := invoiceSelect + `
		WHERE ` + alias + `.identification_number = $1
		  AND ($2 OR NOT i.hidden)
		ORDER BY i.issued DESC, i.id DESC`
	return r.queryInvoices(ctx, q, ico, includeHidden)
}

// Create inserts an invoice and returns its id.
func (r *InvoiceRepository) Create(ctx context.Context, in InvoiceInput, hidden bool) (int64, error) {
	q := `
		INSERT INTO invoices (invoice_number, issued, due_date, product, price, vat, note, seller_id, buyer_id, hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, q,
		in.InvoiceNumber, in.Issued.Time, in.DueDate.Time, in.Product,
		in.Price.String(), in.VAT.String(), in.Note, in.SellerID, in.BuyerID, hidden,
	).Scan(&id)
	if err != nil {
		return 0, mapInvoiceWriteError("create invoice", err)
	}
	return id, nil
}

// Update replaces all writable fields of invoice id.
func (r *InvoiceRepository) Update(ctx context.Context, id int64, in InvoiceInput, hidden bool) error {
	q := `
		UPDATE invoices
		SET invoice_number = $2, issued = $3, due_date = $4, product = $5, price = $6, vat = $7,
		    note = $8, seller_id = $9, buyer_id = $10, hidden = $11
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id,
		in.InvoiceNumber, in.Issued.Time, in.DueDate.Time, in.Product,
		in.Price.String(), in.VAT.String(), in.Note, in.SellerID, in.BuyerID, hidden,
	)
	if err != nil {
		return mapInvoiceWriteError("update invoice", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetHidden flips the soft-delete flag.
func (r *InvoiceRepository) SetHidden(ctx context.Context, id int64, hidden bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE invoices SET hidden = $2 WHERE id = $1`, id, hidden)
	if err != nil {
		return fmt.Errorf("set invoice hidden: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Statistics sums invoice prices for the given calendar year and overall.
func (r *InvoiceRepository) Statistics(ctx context.Context, year int, includeHidden bool) (*InvoiceStatistics, error) {
	q := `
		SELECT COALESCE(SUM(CASE WHEN EXTRACT(YEAR FROM issued) = $1 THEN price ELSE 0 END), 0),
		       COALESCE(SUM(price), 0),
		       COUNT(*)
		FROM invoices
		WHERE ($2 OR NOT hidden)`
	var s InvoiceStatistics
	if err := r.db.QueryRow(ctx, q, year, includeHidden).Scan(&s.CurrentYearSum, &s.AllTimeSum, &s.InvoicesCount); err != nil {
		return nil, fmt.Errorf("invoice statistics: %w", err)
	}
	return &s, nil
}

// MonthlyTurnover sums invoice prices per YYYY-MM, oldest month first.
func (r *InvoiceRepository) MonthlyTurnover(ctx context.Context, sellerID, buyerID *int64, includeHidden bool) ([]MonthlyTurnover, error) {
	q := `
		SELECT TO_CHAR(issued, 'YYYY-MM') AS month, SUM(price)
		FROM invoices
		WHERE ($1 OR NOT hidden)
		  AND ($2::bigint IS NULL OR seller_id = $2)
		  AND ($3::bigint IS NULL OR buyer_id = $3)
		GROUP BY month
		ORDER BY month`
	rows, err := r.db.Query(ctx, q, includeHidden, sellerID, buyerID)
	if err != nil {
		return nil, fmt.Errorf("monthly turnover: %w", err)
	}
	defer rows.Close()

	out := []MonthlyTurnover{}
	for rows.Next() {
		var m MonthlyTurnover
		if err := rows.Scan(&m.Month, &m.Turnover); err != nil {
			return nil, fmt.Errorf("scan monthly turnover: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *InvoiceRepository) queryInvoices(ctx context.Context, q string, args ...any) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []Invoice{}
	for rows.Next() {
		var inv Invoice
		var issued, due time.Time
		dest := []any{
			&inv.ID, &inv.InvoiceNumber, &issued, &due, &inv.Product,
			&inv.Price, &inv.VAT, &inv.Note, &inv.Hidden,
			&inv.Seller.ID,
		}
		dest = append(dest, partyDetailDest(&inv.Seller.PartyDetails)...)
		dest = append(dest, &inv.Buyer.ID)
		dest = append(dest, partyDetailDest(&inv.Buyer.PartyDetails)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.Issued = Date{issued}
		inv.DueDate = Date{due}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// mapInvoiceWriteError turns a foreign-key violation into a validation error.
func mapInvoiceWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return invalidf("referenced party does not exist")
		case "22003":
			return invalidf("amount out of range")
		case "23514":
			return invalidf("price and vat must not be negative")
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// escapeLike escapes LIKE wildcards so s matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
