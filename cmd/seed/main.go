// cmd/seed populates the database with demo data for development.
//
// Running twice is safe: the demo account is upserted, persons are matched by
// identification number, and invoices are only created when the table is empty.
// To fully reset:
//
//	psql $DATABASE_URL -c "TRUNCATE invoices, persons, accounts RESTART IDENTITY;"
//
// Usage:
//
//	go run ./cmd/seed
//	DATABASE_URL=postgres://... go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmerrifield20/invoicehub/internal/accounts"
	"github.com/jmerrifield20/invoicehub/internal/billing"
	"github.com/jmerrifield20/invoicehub/internal/config"
	"github.com/jmerrifield20/invoicehub/internal/identity"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	fmt.Println("connected to database")

	if err := seedAccounts(ctx, db); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}

	svc := billing.NewService(billing.NewInvoiceRepository(db), billing.NewPartyRepository(db), zap.NewNop())
	ids, err := seedPersons(ctx, db, svc)
	if err != nil {
		return fmt.Errorf("seed persons: %w", err)
	}
	if err := seedInvoices(ctx, db, svc, ids); err != nil {
		return fmt.Errorf("seed invoices: %w", err)
	}

	fmt.Println("\nseed complete")
	return nil
}

// ── Accounts ─────────────────────────────────────────────────────────────────

type seedAccount struct {
	Email     string
	FirstName string
	LastName  string
	Password  string // plaintext; hashed before insert
}

var demoAccounts = []seedAccount{
	{Email: "alice@example.com", FirstName: "Alice", LastName: "Novak", Password: "invoicehub_dev"},
	{Email: "bob@example.com", FirstName: "Bob", LastName: "Dvorak", Password: "invoicehub_dev"},
}

func seedAccounts(ctx context.Context, db *pgxpool.Pool) error {
	const q = `
		INSERT INTO accounts (email, password_hash, enabled, role, first_name, last_name)
		VALUES ($1, $2, true, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			first_name    = EXCLUDED.first_name,
			last_name     = EXCLUDED.last_name,
			enabled       = true`

	for _, a := range demoAccounts {
		hash, err := identity.HashPassword(a.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", a.Email, err)
		}
		if _, err := db.Exec(ctx, q, a.Email, hash, string(accounts.RoleUser), a.FirstName, a.LastName); err != nil {
			return fmt.Errorf("upsert account %s: %w", a.Email, err)
		}
		fmt.Printf("  account  %-24s  password: %s\n", a.Email, a.Password)
	}
	return nil
}

// ── Persons ──────────────────────────────────────────────────────────────────

var demoPersons = []billing.PartyDetails{
	{
		Name: "Acme Software s.r.o.", IdentificationNumber: "27074358", TaxNumber: "CZ27074358",
		AccountNumber: "123456789", BankCode: "0100", IBAN: "CZ6501000000000123456789",
		Telephone: "+420 222 333 444", Mail: "billing@acme.cz",
		Street: "Vinohradska 12", Zip: "12000", City: "Praha", Country: billing.CountryCzechia,
	},
	{
		Name: "Beta Consulting a.s.", IdentificationNumber: "45274649", TaxNumber: "CZ45274649",
		AccountNumber: "987654321", BankCode: "0300", IBAN: "CZ2103000000000987654321",
		Telephone: "+420 541 111 222", Mail: "ucetni@beta.cz",
		Street: "Husova 5", Zip: "60200", City: "Brno", Country: billing.CountryCzechia,
	},
	{
		Name: "Gamma Trade s.r.o.", IdentificationNumber: "35757442", TaxNumber: "SK2021538423",
		AccountNumber: "5566778899", BankCode: "1100", IBAN: "SK3111000000005566778899",
		Telephone: "+421 2 5555 6666", Mail: "faktury@gamma.sk",
		Street: "Obchodna 20", Zip: "81106", City: "Bratislava", Country: billing.CountrySlovakia,
	},
}

// seedPersons returns the person id for each identification number.
func seedPersons(ctx context.Context, db *pgxpool.Pool, svc *billing.Service) (map[string]int64, error) {
	ids := make(map[string]int64, len(demoPersons))
	for _, d := range demoPersons {
		var id int64
		err := db.QueryRow(ctx,
			`SELECT COALESCE(MIN(id), 0) FROM persons WHERE identification_number = $1`,
			d.IdentificationNumber,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", d.IdentificationNumber, err)
		}
		if id == 0 {
			p, err := svc.CreateParty(ctx, d)
			if err != nil {
				return nil, fmt.Errorf("create %s: %w", d.Name, err)
			}
			id = p.ID
			fmt.Printf("  person   %-24s  id=%d\n", d.Name, id)
		} else {
			fmt.Printf("  skip     %-24s  (exists, id=%d)\n", d.Name, id)
		}
		ids[d.IdentificationNumber] = id
	}
	return ids, nil
}

// ── Invoices ─────────────────────────────────────────────────────────────────

type seedInvoice struct {
	Number  int
	Seller  string // identification number
	Buyer   string
	Product string
	Price   string
	Issued  time.Time
}

func monthsAgo(n int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -n, 0)
}

var demoInvoices = []seedInvoice{
	{Number: 2024101, Seller: "27074358", Buyer: "45274649", Product: "Web application development", Price: "185000.00", Issued: monthsAgo(14)},
	{Number: 2024102, Seller: "27074358", Buyer: "35757442", Product: "Hosting (annual)", Price: "24000.00", Issued: monthsAgo(11)},
	{Number: 2025001, Seller: "45274649", Buyer: "27074358", Product: "Process audit", Price: "42500.50", Issued: monthsAgo(6)},
	{Number: 2025002, Seller: "27074358", Buyer: "45274649", Product: "Support retainer", Price: "15000.00", Issued: monthsAgo(3)},
	{Number: 2025003, Seller: "35757442", Buyer: "27074358", Product: "Hardware delivery", Price: "67890.00", Issued: monthsAgo(1)},
	{Number: 2025004, Seller: "27074358", Buyer: "35757442", Product: "Support retainer", Price: "15000.00", Issued: monthsAgo(0)},
}

func seedInvoices(ctx context.Context, db *pgxpool.Pool, svc *billing.Service, ids map[string]int64) error {
	var count int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&count); err != nil {
		return fmt.Errorf("count invoices: %w", err)
	}
	if count > 0 {
		fmt.Printf("  skip     invoices (%d already present)\n", count)
		return nil
	}

	for _, si := range demoInvoices {
		in := billing.InvoiceInput{
			InvoiceNumber: si.Number,
			Issued:        billing.Date{Time: si.Issued},
			DueDate:       billing.Date{Time: si.Issued.AddDate(0, 0, 14)},
			Product:       si.Product,
			Price:         decimal.RequireFromString(si.Price),
			VAT:           decimal.NewFromInt(21),
			SellerID:      ids[si.Seller],
			BuyerID:       ids[si.Buyer],
		}
		inv, err := svc.CreateInvoice(ctx, in)
		if err != nil {
			return fmt.Errorf("create invoice %d: %w", si.Number, err)
		}
		fmt.Printf("  invoice  %-24d  id=%d  %s\n", inv.InvoiceNumber, inv.ID, inv.Price.StringFixed(2))
	}
	return nil
}
