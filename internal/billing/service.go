package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// invoiceStore is the invoice storage consumed by Service.
type invoiceStore interface {
	List(ctx context.Context, f InvoiceFilter, includeHidden bool) ([]Invoice, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	ListByIdentificationNumber(ctx context.Context, ico string, role PartyRole, includeHidden bool) ([]Invoice, error)
	Create(ctx context.Context, in InvoiceInput, hidden bool) (int64, error)
	Update(ctx context.Context, id int64, in InvoiceInput, hidden bool) error
	SetHidden(ctx context.Context, id int64, hidden bool) error
	Statistics(ctx context.Context, year int, includeHidden bool) (*InvoiceStatistics, error)
	MonthlyTurnover(ctx context.Context, sellerID, buyerID *int64, includeHidden bool) ([]MonthlyTurnover, error)
}

// partyStore is the party storage consumed by Service.
type partyStore interface {
	List(ctx context.Context, includeHidden bool) ([]Party, error)
	SearchByName(ctx context.Context, query string, includeHidden bool) ([]Party, error)
	Get(ctx context.Context, id int64) (*Party, error)
	Create(ctx context.Context, p *Party) error
	Update(ctx context.Context, p *Party) error
	SetHidden(ctx context.Context, id int64, hidden bool) error
	Statistics(ctx context.Context, includeHidden bool) ([]PartyStatistics, error)
}

// Which queries see soft-deleted rows. Listings and aggregates hide them;
// direct lookups, per-party history and party revenue keep them.
const (
	hiddenInListings      = false
	hiddenInInvoiceStats  = false
	hiddenInTurnover      = false
	hiddenInPartyHistory  = true
	hiddenInPartyRevenues = true
)

// Service implements invoice and party bookkeeping.
type Service struct {
	invoices invoiceStore
	parties  partyStore
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a new Service.
func NewService(invoices invoiceStore, parties partyStore, logger *zap.Logger) *Service {
	return &Service{invoices: invoices, parties: parties, now: time.Now, logger: logger}
}

// SetClock overrides the clock that defines the current year for statistics.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ── Invoices ──────────────────────────────────────────────────────────────

// ListInvoices returns visible invoices matching f, newest first.
func (s *Service) ListInvoices(ctx context.Context, f InvoiceFilter) ([]Invoice, error) {
	if err := validateFilter(&f); err != nil {
		return nil, err
	}
	return s.invoices.List(ctx, f, hiddenInListings)
}

func validateFilter(f *InvoiceFilter) error {
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return invalidf("minPrice must not be negative")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return invalidf("maxPrice must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return invalidf("minPrice must not exceed maxPrice")
	}
	if f.Limit < 0 {
		return invalidf("limit must be positive")
	}
	if f.Limit == 0 {
		f.Limit = DefaultInvoiceLimit
	}
	f.Product = strings.TrimSpace(f.Product)
	return nil
}

// GetInvoice returns an invoice by id, including soft-deleted ones.
func (s *Service) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	if id <= 0 {
		return nil, invalidf("id must be positive")
	}
	return s.invoices.Get(ctx, id)
}

// CreateInvoice stores a new invoice between two active parties.
func (s *Service) CreateInvoice(ctx context.Context, in InvoiceInput) (*Invoice, error) {
	if err := s.validateInvoice(ctx, in); err != nil {
		return nil, err
	}
	id, err := s.invoices.Create(ctx, in, lo.FromPtrOr(in.Hidden, false))
	if err != nil {
		return nil, err
	}
	s.logger.Info("invoice created", zap.Int64("invoice_id", id), zap.Int("invoice_number", in.InvoiceNumber))
	return s.invoices.Get(ctx, id)
}

// UpdateInvoice replaces invoice id with in.
func (s *Service) UpdateInvoice(ctx context.Context, id int64, in InvoiceInput) (*Invoice, error) {
	if id <= 0 {
		return nil, invalidf("id must be positive")
	}
	current, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateInvoiceFields(in); err != nil {
		return nil, err
	}
	// A party that was soft-deleted after the invoice was issued may stay on it.
	if in.SellerID != current.Seller.ID {
		if err := s.requireActiveParty(ctx, "seller", in.SellerID); err != nil {
			return nil, err
		}
	}
	if in.BuyerID != current.Buyer.ID {
		if err := s.requireActiveParty(ctx, "buyer", in.BuyerID); err != nil {
			return nil, err
		}
	}
	if err := s.invoices.Update(ctx, id, in, lo.FromPtrOr(in.Hidden, false)); err != nil {
		return nil, err
	}
	return s.invoices.Get(ctx, id)
}

// DeleteInvoice soft-deletes invoice id.
func (s *Service) DeleteInvoice(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidf("id must be positive")
	}
	if err := s.invoices.SetHidden(ctx, id, true); err != nil {
		return err
	}
	s.logger.Info("invoice hidden", zap.Int64("invoice_id", id))
	return nil
}

func (s *Service) validateInvoice(ctx context.Context, in InvoiceInput) error {
	if err := validateInvoiceFields(in); err != nil {
		return err
	}
	if err := s.requireActiveParty(ctx, "seller", in.SellerID); err != nil {
		return err
	}
	return s.requireActiveParty(ctx, "buyer", in.BuyerID)
}

// validateInvoiceFields checks everything but the party references.
func validateInvoiceFields(in InvoiceInput) error {
	switch {
	case in.InvoiceNumber <= 0:
		return invalidf("invoiceNumber must be positive")
	case in.Issued.IsZero():
		return invalidf("issued is required")
	case in.DueDate.IsZero():
		return invalidf("dueDate is required")
	case in.DueDate.Before(in.Issued.Time):
		return invalidf("dueDate must not precede issued")
	case in.Price.IsNegative():
		return invalidf("price must not be negative")
	case in.VAT.IsNegative():
		return invalidf("vat must not be negative")
	}
	if err := checkAmount("price", in.Price); err != nil {
		return err
	}
	return checkAmount("vat", in.VAT)
}

// maxAmount is the first value that no longer fits NUMERIC(14, 2).
var maxAmount = decimal.New(1, 12)

// checkAmount rejects values the amount columns cannot store exactly.
func checkAmount(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(2)) {
		return invalidf("%s must have at most 2 decimal places", field)
	}
	if d.GreaterThanOrEqual(maxAmount) {
		return invalidf("%s must be less than %s", field, maxAmount)
	}
	return nil
}

// requireActiveParty rejects references to missing or soft-deleted parties.
func (s *Service) requireActiveParty(ctx context.Context, side string, id int64) error {
	if id <= 0 {
		return invalidf("%s is required", side)
	}
	p, err := s.parties.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return invalidf("%s %d does not exist", side, id)
	}
	if err != nil {
		return fmt.Errorf("lookup %s: %w", side, err)
	}
	if p.Hidden {
		return invalidf("%s %d has been deleted", side, id)
	}
	return nil
}

// InvoiceStatistics sums visible invoices for the current year and overall.
func (s *Service) InvoiceStatistics(ctx context.Context) (*InvoiceStatistics, error) {
	return s.invoices.Statistics(ctx, s.now().UTC().Year(), hiddenInInvoiceStats)
}

// MonthlyTurnover returns visible turnover per month, optionally narrowed to
// one seller and/or buyer.
func (s *Service) MonthlyTurnover(ctx context.Context, sellerID, buyerID *int64) ([]MonthlyTurnover, error) {
	if lo.FromPtr(sellerID) < 0 || lo.FromPtr(buyerID) < 0 {
		return nil, invalidf("id must be positive")
	}
	return s.invoices.MonthlyTurnover(ctx, sellerID, buyerID, hiddenInTurnover)
}

// SalesByIdentificationNumber returns every invoice issued by the party with
// the given IČO, soft-deleted invoices included.
func (s *Service) SalesByIdentificationNumber(ctx context.Context, ico string) ([]Invoice, error) {
	return s.invoicesByIdentificationNumber(ctx, ico, RoleSeller)
}

// PurchasesByIdentificationNumber returns every invoice received by the party
// with the given IČO, soft-deleted invoices included.
func (s *Service) PurchasesByIdentificationNumber(ctx context.Context, ico string) ([]Invoice, error) {
	return s.invoicesByIdentificationNumber(ctx, ico, RoleBuyer)
}

func (s *Service) invoicesByIdentificationNumber(ctx context.Context, ico string, role PartyRole) ([]Invoice, error) {
	ico = strings.TrimSpace(ico)
	if ico == "" {
		return nil, invalidf("identification number is required")
	}
	return s.invoices.ListByIdentificationNumber(ctx, ico, role, hiddenInPartyHistory)
}

// ── Parties ───────────────────────────────────────────────────────────────

// ListParties returns active parties ordered by name.
func (s *Service) ListParties(ctx context.Context) ([]Party, error) {
	return s.parties.List(ctx, hiddenInListings)
}

// SearchParties returns active parties whose name contains query, ignoring case.
// A blank query matches nothing.
func (s *Service) SearchParties(ctx context.Context, query string) ([]Party, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Party{}, nil
	}
	return s.parties.SearchByName(ctx, query, hiddenInListings)
}

// GetParty returns a party by id, including soft-deleted ones.
func (s *Service) GetParty(ctx context.Context, id int64) (*Party, error) {
	if id <= 0 {
		return nil, invalidf("id must be positive")
	}
	return s.parties.Get(ctx, id)
}

// CreateParty stores a new active party.
func (s *Service) CreateParty(ctx context.Context, d PartyDetails) (*Party, error) {
	d, err := normalizeParty(d)
	if err != nil {
		return nil, err
	}
	p := &Party{PartyDetails: d}
	if err := s.parties.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("party created", zap.Int64("party_id", p.ID))
	return p, nil
}

// UpdateParty replaces the details of party id. The hidden flag is kept as stored.
func (s *Service) UpdateParty(ctx context.Context, id int64, d PartyDetails) (*Party, error) {
	if id <= 0 {
		return nil, invalidf("id must be positive")
	}
	d, err := normalizeParty(d)
	if err != nil {
		return nil, err
	}
	existing, err := s.parties.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := &Party{ID: id, PartyDetails: d, Hidden: existing.Hidden}
	if err := s.parties.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteParty soft-deletes party id. Its invoices are untouched.
func (s *Service) DeleteParty(ctx context.Context, id int64) error {
	if id <= 0 {
		return invalidf("id must be positive")
	}
	if err := s.parties.SetHidden(ctx, id, true); err != nil {
		return err
	}
	s.logger.Info("party hidden", zap.Int64("party_id", id))
	return nil
}

// PartyStatistics returns seller revenue per party, highest first.
// Soft-deleted parties and invoices are counted.
func (s *Service) PartyStatistics(ctx context.Context) ([]PartyStatistics, error) {
	return s.parties.Statistics(ctx, hiddenInPartyRevenues)
}

func normalizeParty(d PartyDetails) (PartyDetails, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.IdentificationNumber = strings.TrimSpace(d.IdentificationNumber)
	d.Country = Country(strings.ToUpper(strings.TrimSpace(string(d.Country))))
	switch {
	case d.Name == "":
		return d, invalidf("name is required")
	case d.IdentificationNumber == "":
		return d, invalidf("identificationNumber is required")
	case d.Country == "":
		return d, invalidf("country is required")
	case !d.Country.Valid():
		return d, invalidf("country must be one of %s, %s", CountryCzechia, CountrySlovakia)
	}
	return d, nil
}
