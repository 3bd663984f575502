package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound matches an APIError with status 404.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized matches an APIError with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("invoicehub: HTTP %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is match ErrNotFound and ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// Session is the result of a successful login.
type Session struct {
	Token          string `json:"token"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	ProfilePicture string `json:"profilePicture"`
}

// RegisterRequest is the payload for Register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Account is the profile returned by Me.
type Account struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	OAuthUser      bool   `json:"oauthUser"`
	ProfilePicture string `json:"profilePicture"`
}

// PersonDetails are the writable fields of a person.
type PersonDetails struct {
	Name                 string `json:"name"`
	IdentificationNumber string `json:"identificationNumber"`
	TaxNumber            string `json:"taxNumber,omitempty"`
	AccountNumber        string `json:"accountNumber,omitempty"`
	BankCode             string `json:"bankCode,omitempty"`
	IBAN                 string `json:"iban,omitempty"`
	Telephone            string `json:"telephone,omitempty"`
	Mail                 string `json:"mail,omitempty"`
	Street               string `json:"street,omitempty"`
	Zip                  string `json:"zip,omitempty"`
	City                 string `json:"city,omitempty"`
	Country              string `json:"country"`
	Note                 string `json:"note,omitempty"`
}

// Person is a business party as returned by the server.
type Person struct {
	ID int64 `json:"_id"`
	PersonDetails
	Hidden bool `json:"hidden"`
}

// PartyRef is a person embedded in an invoice.
type PartyRef struct {
	ID int64 `json:"id"`
	PersonDetails
}

// Invoice is an invoice as returned by the server. Dates are YYYY-MM-DD.
type Invoice struct {
	ID            int64           `json:"_id"`
	InvoiceNumber int             `json:"invoiceNumber"`
	Issued        string          `json:"issued"`
	DueDate       string          `json:"dueDate"`
	Product       string          `json:"product"`
	Price         decimal.Decimal `json:"price"`
	VAT           decimal.Decimal `json:"vat"`
	Note          string          `json:"note"`
	Seller        PartyRef        `json:"seller"`
	Buyer         PartyRef        `json:"buyer"`
	Hidden        bool            `json:"hidden"`
}

// IDRef references a person by id in an InvoiceRequest.
type IDRef struct {
	ID int64 `json:"id"`
}

// InvoiceRequest is the payload for CreateInvoice and UpdateInvoice.
type InvoiceRequest struct {
	InvoiceNumber int             `json:"invoiceNumber"`
	Issued        string          `json:"issued"`
	DueDate       string          `json:"dueDate"`
	Product       string          `json:"product"`
	Price         decimal.Decimal `json:"price"`
	VAT           decimal.Decimal `json:"vat"`
	Note          string          `json:"note,omitempty"`
	Seller        IDRef           `json:"seller"`
	Buyer         IDRef           `json:"buyer"`
	Hidden        *bool           `json:"hidden,omitempty"`
}

// InvoiceQuery filters ListInvoices. Zero values do not filter.
type InvoiceQuery struct {
	BuyerID  int64
	SellerID int64
	Product  string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
}

func (q InvoiceQuery) values() url.Values {
	v := url.Values{}
	if q.BuyerID != 0 {
		v.Set("buyerID", strconv.FormatInt(q.BuyerID, 10))
	}
	if q.SellerID != 0 {
		v.Set("sellerID", strconv.FormatInt(q.SellerID, 10))
	}
	if q.Product != "" {
		v.Set("product", q.Product)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", q.MaxPrice.String())
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// InvoiceStatistics is the response of InvoiceStatistics.
type InvoiceStatistics struct {
	CurrentYearSum decimal.Decimal `json:"currentYearSum"`
	AllTimeSum     decimal.Decimal `json:"allTimeSum"`
	InvoicesCount  int64           `json:"invoicesCount"`
}

// PersonStatistics is one row of PersonStatistics.
type PersonStatistics struct {
	PersonID   int64           `json:"personId"`
	PersonName string          `json:"personName"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// MonthlyTurnover is one row of MonthlyTurnover.
type MonthlyTurnover struct {
	Month    string          `json:"month"`
	Turnover decimal.Decimal `json:"turnover"`
}

// Client is the invoicehub SDK entry point. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.RWMutex
	bearerToken string
}

// Option is a functional option for configuring a Client.
type Option func(*Client) error

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("nil http client")
		}
		c.httpClient = hc
		return nil
	}
}

// WithBearerToken attaches a pre-obtained access token to every request.
func WithBearerToken(token string) Option {
	return func(c *Client) error {
		c.bearerToken = token
		return nil
	}
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on error. Useful in tests and program init.
func MustNew(baseURL string, opts ...Option) *Client {
	c, err := New(baseURL, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Token returns the bearer token currently attached to requests.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearerToken
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.bearerToken = token
	c.mu.Unlock()
}

// ── Auth ─────────────────────────────────────────────────────────────────────

// Register creates a local account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/register", nil, req, nil)
}

// Login authenticates with email and password and keeps the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.session(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

// LoginWithGoogle exchanges a Google ID token for a session and keeps the token.
func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	return c.session(ctx, "/api/auth/google", map[string]string{"idToken": idToken})
}

func (c *Client) session(ctx context.Context, path string, body any) (*Session, error) {
	var s Session
	if err := c.doJSON(ctx, http.MethodPost, path, nil, body, &s); err != nil {
		return nil, err
	}
	c.SetToken(s.Token)
	return &s, nil
}

// Me returns the account the current token belongs to.
func (c *Client) Me(ctx context.Context) (*Account, error) {
	var a Account
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ── Invoices ─────────────────────────────────────────────────────────────────

// ListInvoices returns invoices matching q.
func (c *Client) ListInvoices(ctx context.Context, q InvoiceQuery) ([]Invoice, error) {
	var out []Invoice
	err := c.doJSON(ctx, http.MethodGet, "/api/invoices", q.values(), nil, &out)
	return out, err
}

// GetInvoice returns one invoice.
func (c *Client) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	var inv Invoice
	if err := c.doJSON(ctx, http.MethodGet, invoicePath(id), nil, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateInvoice stores a new invoice.
func (c *Client) CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	var inv Invoice
	if err := c.doJSON(ctx, http.MethodPost, "/api/invoices", nil, req, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// UpdateInvoice replaces invoice id.
func (c *Client) UpdateInvoice(ctx context.Context, id int64, req InvoiceRequest) (*Invoice, error) {
	var inv Invoice
	if err := c.doJSON(ctx, http.MethodPut, invoicePath(id), nil, req, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// DeleteInvoice soft-deletes invoice id.
func (c *Client) DeleteInvoice(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, invoicePath(id), nil, nil, nil)
}

// InvoiceStatistics returns the current-year and all-time totals.
func (c *Client) InvoiceStatistics(ctx context.Context) (*InvoiceStatistics, error) {
	var s InvoiceStatistics
	if err := c.doJSON(ctx, http.MethodGet, "/api/invoices/statistics", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// MonthlyTurnover returns turnover per month. Zero ids do not filter.
func (c *Client) MonthlyTurnover(ctx context.Context, sellerID, buyerID int64) ([]MonthlyTurnover, error) {
	v := url.Values{}
	if sellerID != 0 {
		v.Set("sellerID", strconv.FormatInt(sellerID, 10))
	}
	if buyerID != 0 {
		v.Set("buyerID", strconv.FormatInt(buyerID, 10))
	}
	var out []MonthlyTurnover
	err := c.doJSON(ctx, http.MethodGet, "/api/invoices/turnover", v, nil, &out)
	return out, err
}

func invoicePath(id int64) string {
	return "/api/invoices/" + strconv.FormatInt(id, 10)
}

// ── Persons ──────────────────────────────────────────────────────────────────

// ListPersons returns active persons.
func (c *Client) ListPersons(ctx context.Context) ([]Person, error) {
	var out []Person
	err := c.doJSON(ctx, http.MethodGet, "/api/persons", nil, nil, &out)
	return out, err
}

// SearchPersons returns active persons whose name contains query.
func (c *Client) SearchPersons(ctx context.Context, query string) ([]Person, error) {
	var out []Person
	err := c.doJSON(ctx, http.MethodGet, "/api/persons/search", url.Values{"query": {query}}, nil, &out)
	return out, err
}

// GetPerson returns one person, including soft-deleted ones.
func (c *Client) GetPerson(ctx context.Context, id int64) (*Person, error) {
	var p Person
	if err := c.doJSON(ctx, http.MethodGet, personPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePerson stores a new person.
func (c *Client) CreatePerson(ctx context.Context, d PersonDetails) (*Person, error) {
	var p Person
	if err := c.doJSON(ctx, http.MethodPost, "/api/persons", nil, d, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePerson replaces the details of person id.
func (c *Client) UpdatePerson(ctx context.Context, id int64, d PersonDetails) (*Person, error) {
	var p Person
	if err := c.doJSON(ctx, http.MethodPut, personPath(id), nil, d, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePerson soft-deletes person id.
func (c *Client) DeletePerson(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, personPath(id), nil, nil, nil)
}

// PersonStatistics returns seller revenue per person.
func (c *Client) PersonStatistics(ctx context.Context) ([]PersonStatistics, error) {
	var out []PersonStatistics
	err := c.doJSON(ctx, http.MethodGet, "/api/persons/statistics", nil, nil, &out)
	return out, err
}

// Sales returns invoices issued by the person with identification number ico.
func (c *Client) Sales(ctx context.Context, ico string) ([]Invoice, error) {
	var out []Invoice
	err := c.doJSON(ctx, http.MethodGet, "/api/persons/identification/"+url.PathEscape(ico)+"/sales", nil, nil, &out)
	return out, err
}

// Purchases returns invoices received by the person with identification number ico.
func (c *Client) Purchases(ctx context.Context, ico string) ([]Invoice, error) {
	var out []Invoice
	err := c.doJSON(ctx, http.MethodGet, "/api/persons/identification/"+url.PathEscape(ico)+"/purchases", nil, nil, &out)
	return out, err
}

func personPath(id int64) string {
	return "/api/persons/" + strconv.FormatInt(id, 10)
}

// ── Transport ────────────────────────────────────────────────────────────────

// doJSON sends in as JSON (when non-nil) and decodes the response into out
// (when non-nil), attaching the bearer token if present.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts the "error" field of an error body, falling back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
