// Package billing stores business parties and the invoices issued between
// them, and computes turnover statistics over both.
package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money travels as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrNotFound is returned when an invoice or party id does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when caller-supplied input is rejected.
type ErrValidation struct {
	Msg string
}

func (e *ErrValidation) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &ErrValidation{Msg: fmt.Sprintf(format, args...)}
}

// Country is the registered seat of a party.
type Country string

const (
	CountryCzechia  Country = "CZECHIA"
	CountrySlovakia Country = "SLOVAKIA"
)

// Valid reports whether c is a supported country.
func (c Country) Valid() bool {
	return c == CountryCzechia || c == CountrySlovakia
}

// DateLayout is the wire and display format of invoice dates.
const DateLayout = "2006-01-02"

// Date is a calendar date serialised as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PartyDetails are the descriptive fields shared by a party and its
// embedding in an invoice.
type PartyDetails struct {
	Name                 string  `json:"name"`
	IdentificationNumber string  `json:"identificationNumber"`
	TaxNumber            string  `json:"taxNumber"`
	AccountNumber        string  `json:"accountNumber"`
	BankCode             string  `json:"bankCode"`
	IBAN                 string  `json:"iban"`
	Telephone            string  `json:"telephone"`
	Mail                 string  `json:"mail"`
	Street               string  `json:"street"`
	Zip                  string  `json:"zip"`
	City                 string  `json:"city"`
	Country              Country `json:"country"`
	Note                 string  `json:"note"`
}

// Party is a business partner (a "person") acting as seller or buyer.
// Hidden parties are soft-deleted: gone from listings, kept in history.
type Party struct {
	ID int64 `json:"_id"`
	PartyDetails
	Hidden bool `json:"hidden"`
}

// PartyRef is a party as embedded in an invoice.
type PartyRef struct {
	ID int64 `json:"id"`
	PartyDetails
}

// Invoice is a bill from Seller to Buyer.
type Invoice struct {
	ID            int64           `json:"_id"`
	InvoiceNumber int             `json:"invoiceNumber"`
	Issued        Date            `json:"issued"`
	DueDate       Date            `json:"dueDate"`
	Product       string          `json:"product"`
	Price         decimal.Decimal `json:"price"`
	VAT           decimal.Decimal `json:"vat"`
	Note          string          `json:"note"`
	Seller        PartyRef        `json:"seller"`
	Buyer         PartyRef        `json:"buyer"`
	Hidden        bool            `json:"hidden"`
}

// InvoiceInput is the writable part of an invoice. A nil Hidden means false.
type InvoiceInput struct {
	InvoiceNumber int
	Issued        Date
	DueDate       Date
	Product       string
	Price         decimal.Decimal
	VAT           decimal.Decimal
	Note          string
	SellerID      int64
	BuyerID       int64
	Hidden        *bool
}

// InvoiceFilter narrows ListInvoices. Nil fields do not filter.
type InvoiceFilter struct {
	BuyerID  *int64
	SellerID *int64
	Product  string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// Limit caps the result size; zero selects DefaultInvoiceLimit.
	Limit int
}

// DefaultInvoiceLimit is applied when a listing does not name a limit.
const DefaultInvoiceLimit = 100

// InvoiceStatistics summarises turnover over visible invoices.
type InvoiceStatistics struct {
	CurrentYearSum decimal.Decimal `json:"currentYearSum"`
	AllTimeSum     decimal.Decimal `json:"allTimeSum"`
	InvoicesCount  int64           `json:"invoicesCount"`
}

// PartyStatistics is the revenue of one party acting as seller.
type PartyStatistics struct {
	PersonID   int64           `json:"personId"`
	PersonName string          `json:"personName"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// MonthlyTurnover is the invoiced total for one calendar month.
type MonthlyTurnover struct {
	Month    string          `json:"month"` // YYYY-MM
	Turnover decimal.Decimal `json:"turnover"`
}
