package billing_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jmerrifield20/invoicehub/internal/billing"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for both PostgreSQL repositories.
// It honours the includeHidden flag the way the SQL does, so tests observe
// which visibility policy the service asks for.
type memStore struct {
	mu       sync.RWMutex
	nextID   int64
	parties  map[int64]*billing.Party
	invoices map[int64]*storedInvoice

	lastIncludeHidden map[string]bool
	statsYear         int
}

type storedInvoice struct {
	id     int64
	in     billing.InvoiceInput
	hidden bool
}

func newMemStore() *memStore {
	return &memStore{
		parties:           make(map[int64]*billing.Party),
		invoices:          make(map[int64]*storedInvoice),
		lastIncludeHidden: make(map[string]bool),
	}
}

func (m *memStore) record(op string, includeHidden bool) {
	m.lastIncludeHidden[op] = includeHidden
}

// ── invoiceStore ──────────────────────────────────────────────────────────

type invoiceView struct{ *memStore }
type partyView struct{ *memStore }

func (v invoiceView) List(_ context.Context, f billing.InvoiceFilter, includeHidden bool) ([]billing.Invoice, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("invoices.List", includeHidden)

	out := []billing.Invoice{}
	for _, si := range v.invoices {
		if si.hidden && !includeHidden {
			continue
		}
		if f.BuyerID != nil && si.in.BuyerID != *f.BuyerID {
			continue
		}
		if f.SellerID != nil && si.in.SellerID != *f.SellerID {
			continue
		}
		if f.Product != "" && !strings.Contains(strings.ToLower(si.in.Product), strings.ToLower(f.Product)) {
			continue
		}
		if f.MinPrice != nil && si.in.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && si.in.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		out = append(out, v.view(si))
	}
	sortNewestFirst(out)
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (v invoiceView) Get(_ context.Context, id int64) (*billing.Invoice, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	si, ok := v.invoices[id]
	if !ok {
		return nil, billing.ErrNotFound
	}
	inv := v.view(si)
	return &inv, nil
}

func (v invoiceView) ListByIdentificationNumber(_ context.Context, ico string, role billing.PartyRole, includeHidden bool) ([]billing.Invoice, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("invoices.ListByIdentificationNumber", includeHidden)

	out := []billing.Invoice{}
	for _, si := range v.invoices {
		if si.hidden && !includeHidden {
			continue
		}
		partyID := si.in.SellerID
		if role == billing.RoleBuyer {
			partyID = si.in.BuyerID
		}
		if v.parties[partyID].IdentificationNumber != ico {
			continue
		}
		out = append(out, v.view(si))
	}
	sortNewestFirst(out)
	return out, nil
}

func (v invoiceView) Create(_ context.Context, in billing.InvoiceInput, hidden bool) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	v.invoices[v.nextID] = &storedInvoice{id: v.nextID, in: in, hidden: hidden}
	return v.nextID, nil
}

func (v invoiceView) Update(_ context.Context, id int64, in billing.InvoiceInput, hidden bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.invoices[id]; !ok {
		return billing.ErrNotFound
	}
	v.invoices[id] = &storedInvoice{id: id, in: in, hidden: hidden}
	return nil
}

func (v invoiceView) SetHidden(_ context.Context, id int64, hidden bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	si, ok := v.invoices[id]
	if !ok {
		return billing.ErrNotFound
	}
	si.hidden = hidden
	return nil
}

func (v invoiceView) Statistics(_ context.Context, year int, includeHidden bool) (*billing.InvoiceStatistics, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("invoices.Statistics", includeHidden)
	v.statsYear = year

	s := &billing.InvoiceStatistics{CurrentYearSum: decimal.Zero, AllTimeSum: decimal.Zero}
	for _, si := range v.invoices {
		if si.hidden && !includeHidden {
			continue
		}
		s.AllTimeSum = s.AllTimeSum.Add(si.in.Price)
		if si.in.Issued.Year() == year {
			s.CurrentYearSum = s.CurrentYearSum.Add(si.in.Price)
		}
		s.InvoicesCount++
	}
	return s, nil
}

func (v invoiceView) MonthlyTurnover(_ context.Context, sellerID, buyerID *int64, includeHidden bool) ([]billing.MonthlyTurnover, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("invoices.MonthlyTurnover", includeHidden)

	sums := map[string]decimal.Decimal{}
	for _, si := range v.invoices {
		if si.hidden && !includeHidden {
			continue
		}
		if sellerID != nil && si.in.SellerID != *sellerID {
			continue
		}
		if buyerID != nil && si.in.BuyerID != *buyerID {
			continue
		}
		month := si.in.Issued.Format("2006-01")
		sums[month] = sums[month].Add(si.in.Price)
	}
	out := []billing.MonthlyTurnover{}
	for month, sum := range sums {
		out = append(out, billing.MonthlyTurnover{Month: month, Turnover: sum})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// view joins a stored invoice with its parties. Callers hold the lock.
func (m *memStore) view(si *storedInvoice) billing.Invoice {
	seller := m.parties[si.in.SellerID]
	buyer := m.parties[si.in.BuyerID]
	return billing.Invoice{
		ID:            si.id,
		InvoiceNumber: si.in.InvoiceNumber,
		Issued:        si.in.Issued,
		DueDate:       si.in.DueDate,
		Product:       si.in.Product,
		Price:         si.in.Price,
		VAT:           si.in.VAT,
		Note:          si.in.Note,
		Seller:        billing.PartyRef{ID: seller.ID, PartyDetails: seller.PartyDetails},
		Buyer:         billing.PartyRef{ID: buyer.ID, PartyDetails: buyer.PartyDetails},
		Hidden:        si.hidden,
	}
}

func sortNewestFirst(invoices []billing.Invoice) {
	sort.Slice(invoices, func(i, j int) bool {
		if !invoices[i].Issued.Equal(invoices[j].Issued.Time) {
			return invoices[i].Issued.After(invoices[j].Issued.Time)
		}
		return invoices[i].ID > invoices[j].ID
	})
}

// ── partyStore ────────────────────────────────────────────────────────────

func (v partyView) List(_ context.Context, includeHidden bool) ([]billing.Party, error) {
	return v.filterParties("parties.List", includeHidden, func(*billing.Party) bool { return true }), nil
}

func (v partyView) SearchByName(_ context.Context, query string, includeHidden bool) ([]billing.Party, error) {
	q := strings.ToLower(query)
	return v.filterParties("parties.SearchByName", includeHidden, func(p *billing.Party) bool {
		return strings.Contains(strings.ToLower(p.Name), q)
	}), nil
}

func (v partyView) filterParties(op string, includeHidden bool, keep func(*billing.Party) bool) []billing.Party {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record(op, includeHidden)

	out := []billing.Party{}
	for _, p := range v.parties {
		if p.Hidden && !includeHidden {
			continue
		}
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (v partyView) Get(_ context.Context, id int64) (*billing.Party, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	p, ok := v.parties[id]
	if !ok {
		return nil, billing.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (v partyView) Create(_ context.Context, p *billing.Party) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	p.ID = v.nextID
	cp := *p
	v.parties[p.ID] = &cp
	return nil
}

func (v partyView) Update(_ context.Context, p *billing.Party) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.parties[p.ID]; !ok {
		return billing.ErrNotFound
	}
	cp := *p
	v.parties[p.ID] = &cp
	return nil
}

func (v partyView) SetHidden(_ context.Context, id int64, hidden bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.parties[id]
	if !ok {
		return billing.ErrNotFound
	}
	p.Hidden = hidden
	return nil
}

func (v partyView) Statistics(_ context.Context, includeHidden bool) ([]billing.PartyStatistics, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("parties.Statistics", includeHidden)

	out := []billing.PartyStatistics{}
	for _, p := range v.parties {
		if p.Hidden && !includeHidden {
			continue
		}
		revenue := decimal.Zero
		for _, si := range v.invoices {
			if si.in.SellerID == p.ID && (!si.hidden || includeHidden) {
				revenue = revenue.Add(si.in.Price)
			}
		}
		out = append(out, billing.PartyStatistics{PersonID: p.ID, PersonName: p.Name, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].PersonName < out[j].PersonName
	})
	return out, nil
}
