package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmerrifield20/invoicehub/internal/billing"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (*billing.Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := billing.NewService(invoiceView{store}, partyView{store}, zap.NewNop())
	svc.SetClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	return svc, store
}

func mustParty(t *testing.T, svc *billing.Service, name, ico string) *billing.Party {
	t.Helper()
	p, err := svc.CreateParty(context.Background(), billing.PartyDetails{
		Name: name, IdentificationNumber: ico, Country: billing.CountryCzechia,
	})
	require.NoError(t, err)
	return p
}

func invoiceInput(seller, buyer int64, issued billing.Date, price string) billing.InvoiceInput {
	return billing.InvoiceInput{
		InvoiceNumber: 1,
		Issued:        issued,
		DueDate:       billing.Date{Time: issued.AddDate(0, 0, 14)},
		Product:       "Consulting",
		Price:         decimal.RequireFromString(price),
		VAT:           decimal.NewFromInt(21),
		SellerID:      seller,
		BuyerID:       buyer,
	}
}

func mustInvoice(t *testing.T, svc *billing.Service, in billing.InvoiceInput) *billing.Invoice {
	t.Helper()
	inv, err := svc.CreateInvoice(context.Background(), in)
	require.NoError(t, err)
	return inv
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	var verr *billing.ErrValidation
	assert.True(t, errors.As(err, &verr), "expected ErrValidation, got %v", err)
}

// ── Invoice listing ───────────────────────────────────────────────────────

func TestListInvoices_newestFirstAndHidesDeleted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")

	old := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2024, 1, 10), "100"))
	newer := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 3, 1), "200"))
	gone := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 4, 1), "300"))
	require.NoError(t, svc.DeleteInvoice(ctx, gone.ID))

	list, err := svc.ListInvoices(ctx, billing.InvoiceFilter{})
	require.NoError(t, err)
	ids := lo.Map(list, func(inv billing.Invoice, _ int) int64 { return inv.ID })
	assert.Equal(t, []int64{newer.ID, old.ID}, ids)
}

func TestListInvoices_filters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	c := mustParty(t, svc, "Gamma", "333")

	cheap := invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "50")
	cheap.Product = "Web Hosting"
	mid := mustInvoice(t, svc, invoiceInput(a.ID, c.ID, billing.NewDate(2025, 2, 1), "150"))
	mustInvoice(t, svc, cheap)
	mustInvoice(t, svc, invoiceInput(c.ID, b.ID, billing.NewDate(2025, 3, 1), "500"))

	list, err := svc.ListInvoices(ctx, billing.InvoiceFilter{BuyerID: lo.ToPtr(c.ID)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mid.ID, list[0].ID)

	list, err = svc.ListInvoices(ctx, billing.InvoiceFilter{SellerID: lo.ToPtr(a.ID)})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.ListInvoices(ctx, billing.InvoiceFilter{Product: "hosting"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Web Hosting", list[0].Product)

	minP, maxP := decimal.NewFromInt(100), decimal.NewFromInt(200)
	list, err = svc.ListInvoices(ctx, billing.InvoiceFilter{MinPrice: &minP, MaxPrice: &maxP})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mid.ID, list[0].ID)
}

func TestListInvoices_limit(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	for i := 1; i <= 105; i++ {
		mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.Date{Time: billing.NewDate(2025, 1, 1).AddDate(0, 0, i)}, "1"))
	}

	list, err := svc.ListInvoices(context.Background(), billing.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, list, billing.DefaultInvoiceLimit)

	list, err = svc.ListInvoices(context.Background(), billing.InvoiceFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestListInvoices_validation(t *testing.T) {
	svc, _ := newTestService(t)
	neg := decimal.NewFromInt(-1)
	lo10, hi5 := decimal.NewFromInt(10), decimal.NewFromInt(5)

	for name, f := range map[string]billing.InvoiceFilter{
		"negative min":   {MinPrice: &neg},
		"negative max":   {MaxPrice: &neg},
		"min above max":  {MinPrice: &lo10, MaxPrice: &hi5},
		"negative limit": {Limit: -1},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ListInvoices(context.Background(), f)
			assertValidation(t, err)
		})
	}
}

// ── Invoice writes ────────────────────────────────────────────────────────

func TestCreateInvoice_defaultsVisibleAndEmbedsParties(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")

	inv := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 5, 5), "99.90"))
	assert.False(t, inv.Hidden)
	assert.Equal(t, a.ID, inv.Seller.ID)
	assert.Equal(t, "Beta", inv.Buyer.Name)
	assert.True(t, decimal.RequireFromString("99.9").Equal(inv.Price))
}

func TestCreateInvoice_rejectsMissingOrHiddenParty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	require.NoError(t, svc.DeleteParty(ctx, b.ID))

	_, err := svc.CreateInvoice(ctx, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10"))
	assertValidation(t, err)
	assert.Contains(t, err.Error(), "buyer")

	_, err = svc.CreateInvoice(ctx, invoiceInput(999, a.ID, billing.NewDate(2025, 1, 1), "10"))
	assertValidation(t, err)
	assert.Contains(t, err.Error(), "seller")
}

func TestCreateInvoice_fieldValidation(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	base := invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 10), "10")

	mutations := map[string]func(*billing.InvoiceInput){
		"negative price":    func(in *billing.InvoiceInput) { in.Price = decimal.NewFromInt(-5) },
		"negative vat":      func(in *billing.InvoiceInput) { in.VAT = decimal.NewFromInt(-1) },
		"no number":         func(in *billing.InvoiceInput) { in.InvoiceNumber = 0 },
		"no issue date":     func(in *billing.InvoiceInput) { in.Issued = billing.Date{} },
		"due before issue":  func(in *billing.InvoiceInput) { in.DueDate = billing.NewDate(2025, 1, 1) },
		"no seller":         func(in *billing.InvoiceInput) { in.SellerID = 0 },
		"price too precise": func(in *billing.InvoiceInput) { in.Price = decimal.RequireFromString("10.005") },
		"vat too precise":   func(in *billing.InvoiceInput) { in.VAT = decimal.RequireFromString("21.125") },
		"price too large":   func(in *billing.InvoiceInput) { in.Price = decimal.New(1, 12) },
		"vat too large":     func(in *billing.InvoiceInput) { in.VAT = decimal.New(1, 12) },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := base
			mutate(&in)
			_, err := svc.CreateInvoice(context.Background(), in)
			assertValidation(t, err)
		})
	}
}

func TestCreateInvoice_largeVatAndTwoDecimalsAccepted(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")

	in := invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10000")
	in.VAT = decimal.RequireFromString("2100.00")
	inv, err := svc.CreateInvoice(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, inv.VAT.Equal(decimal.NewFromInt(2100)))

	in.Price = decimal.RequireFromString("999999999999.99")
	in.VAT = decimal.RequireFromString("0.10")
	_, err = svc.CreateInvoice(context.Background(), in)
	assert.NoError(t, err)
}

func TestCreateInvoice_zeroPriceAllowed(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")

	_, err := svc.CreateInvoice(context.Background(), invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "0"))
	assert.NoError(t, err)
}

func TestUpdateInvoice(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	inv := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10"))

	in := invoiceInput(b.ID, a.ID, billing.NewDate(2025, 2, 1), "42")
	in.Product = "Audit"
	updated, err := svc.UpdateInvoice(ctx, inv.ID, in)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, updated.ID)
	assert.Equal(t, "Audit", updated.Product)
	assert.Equal(t, b.ID, updated.Seller.ID)
	assert.False(t, updated.Hidden)

	_, err = svc.UpdateInvoice(ctx, 12345, in)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestUpdateInvoice_explicitHiddenHonoured(t *testing.T) {
	svc, _ := newTestService(t)
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	inv := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10"))

	in := invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10")
	in.Hidden = lo.ToPtr(true)
	updated, err := svc.UpdateInvoice(context.Background(), inv.ID, in)
	require.NoError(t, err)
	assert.True(t, updated.Hidden)
}

func TestUpdateInvoice_keepsPartyDeletedAfterIssue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	c := mustParty(t, svc, "Gamma", "333")
	inv := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10"))
	require.NoError(t, svc.DeleteParty(ctx, a.ID))
	require.NoError(t, svc.DeleteParty(ctx, c.ID))

	in := invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "15")
	in.Note = "corrected amount"
	updated, err := svc.UpdateInvoice(ctx, inv.ID, in)
	require.NoError(t, err)
	assert.Equal(t, a.ID, updated.Seller.ID)
	assert.Equal(t, "corrected amount", updated.Note)

	_, err = svc.UpdateInvoice(ctx, inv.ID, invoiceInput(a.ID, c.ID, billing.NewDate(2025, 1, 1), "15"))
	assertValidation(t, err)
	assert.Contains(t, err.Error(), "buyer")

	_, err = svc.UpdateInvoice(ctx, inv.ID, invoiceInput(a.ID, 999, billing.NewDate(2025, 1, 1), "15"))
	assertValidation(t, err)

	bad := invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "15.001")
	_, err = svc.UpdateInvoice(ctx, inv.ID, bad)
	assertValidation(t, err)
}

func TestDeleteInvoice_softDeleteKeepsDirectLookup(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	inv := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10"))

	require.NoError(t, svc.DeleteInvoice(ctx, inv.ID))

	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.Hidden)

	assert.ErrorIs(t, svc.DeleteInvoice(ctx, 4242), billing.ErrNotFound)
	assertValidation(t, svc.DeleteInvoice(ctx, 0))
}

func TestGetInvoice_invalidAndMissing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.GetInvoice(context.Background(), -1)
	assertValidation(t, err)
	_, err = svc.GetInvoice(context.Background(), 77)
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

// ── Statistics ────────────────────────────────────────────────────────────

func TestInvoiceStatistics_emptyIsZero(t *testing.T) {
	svc, _ := newTestService(t)
	stats, err := svc.InvoiceStatistics(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.CurrentYearSum.IsZero())
	assert.True(t, stats.AllTimeSum.IsZero())
	assert.Zero(t, stats.InvoicesCount)
}

func TestInvoiceStatistics_currentYearAndHidden(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")

	mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2024, 12, 31), "100"))
	mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "250.50"))
	hidden := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 2, 1), "1000"))
	require.NoError(t, svc.DeleteInvoice(ctx, hidden.ID))

	stats, err := svc.InvoiceStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2025, store.statsYear)
	assert.Equal(t, "250.5", stats.CurrentYearSum.String())
	assert.Equal(t, "350.5", stats.AllTimeSum.String())
	assert.Equal(t, int64(2), stats.InvoicesCount)
	assert.False(t, store.lastIncludeHidden["invoices.Statistics"])
}

func TestInvoiceStatistics_currentYearIsUTC(t *testing.T) {
	svc, store := newTestService(t)
	// 23:00 on New Year's Eve two hours west of UTC is already next year in UTC.
	svc.SetClock(func() time.Time {
		return time.Date(2024, 12, 31, 23, 0, 0, 0, time.FixedZone("UTC-2", -2*3600))
	})

	_, err := svc.InvoiceStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2025, store.statsYear)
}

func TestMonthlyTurnover(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")

	mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 2, 3), "10"))
	mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 2, 20), "5"))
	mustInvoice(t, svc, invoiceInput(b.ID, a.ID, billing.NewDate(2025, 1, 9), "7"))

	all, err := svc.MonthlyTurnover(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2025-01", all[0].Month)
	assert.Equal(t, "2025-02", all[1].Month)
	assert.Equal(t, "15", all[1].Turnover.String())

	bySeller, err := svc.MonthlyTurnover(ctx, lo.ToPtr(b.ID), nil)
	require.NoError(t, err)
	require.Len(t, bySeller, 1)
	assert.Equal(t, "7", bySeller[0].Turnover.String())
}

func TestPartyStatistics_includesHiddenAndZeroRevenue(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	idle := mustParty(t, svc, "Idle", "333")

	mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "100"))
	gone := mustInvoice(t, svc, invoiceInput(b.ID, a.ID, billing.NewDate(2025, 1, 2), "500"))
	require.NoError(t, svc.DeleteInvoice(ctx, gone.ID))
	require.NoError(t, svc.DeleteParty(ctx, b.ID))

	stats, err := svc.PartyStatistics(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 3)
	assert.Equal(t, b.ID, stats[0].PersonID)
	assert.Equal(t, "500", stats[0].Revenue.String())
	assert.Equal(t, a.ID, stats[1].PersonID)
	assert.Equal(t, idle.ID, stats[2].PersonID)
	assert.True(t, stats[2].Revenue.IsZero())
	assert.True(t, store.lastIncludeHidden["parties.Statistics"])
}

// ── Per-party history ─────────────────────────────────────────────────────

func TestSalesAndPurchases_includeHidden(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")

	sale := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10"))
	hiddenSale := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 2, 1), "20"))
	require.NoError(t, svc.DeleteInvoice(ctx, hiddenSale.ID))

	sales, err := svc.SalesByIdentificationNumber(ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, []int64{hiddenSale.ID, sale.ID}, lo.Map(sales, func(i billing.Invoice, _ int) int64 { return i.ID }))
	assert.True(t, store.lastIncludeHidden["invoices.ListByIdentificationNumber"])

	purchases, err := svc.PurchasesByIdentificationNumber(ctx, "111")
	require.NoError(t, err)
	assert.Empty(t, purchases)

	purchases, err = svc.PurchasesByIdentificationNumber(ctx, "222")
	require.NoError(t, err)
	assert.Len(t, purchases, 2)

	_, err = svc.SalesByIdentificationNumber(ctx, "  ")
	assertValidation(t, err)
}

// ── Parties ───────────────────────────────────────────────────────────────

func TestListParties_orderedAndVisible(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustParty(t, svc, "Zeta", "1")
	alpha := mustParty(t, svc, "Alpha", "2")
	gone := mustParty(t, svc, "Mu", "3")
	require.NoError(t, svc.DeleteParty(ctx, gone.ID))

	list, err := svc.ListParties(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Zeta"}, lo.Map(list, func(p billing.Party, _ int) string { return p.Name }))

	got, err := svc.GetParty(ctx, gone.ID)
	require.NoError(t, err)
	assert.True(t, got.Hidden)
	assert.Equal(t, alpha.ID, list[0].ID)
}

func TestSearchParties(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	mustParty(t, svc, "Novak Consulting", "1")
	mustParty(t, svc, "Svoboda s.r.o.", "2")

	found, err := svc.SearchParties(ctx, "novak")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Novak Consulting", found[0].Name)

	empty, err := svc.SearchParties(ctx, "   ")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestCreateParty_validation(t *testing.T) {
	svc, _ := newTestService(t)
	for name, d := range map[string]billing.PartyDetails{
		"no name":     {IdentificationNumber: "1", Country: billing.CountryCzechia},
		"no ico":      {Name: "X", Country: billing.CountryCzechia},
		"no country":  {Name: "X", IdentificationNumber: "1"},
		"bad country": {Name: "X", IdentificationNumber: "1", Country: "GERMANY"},
		"blank name":  {Name: "   ", IdentificationNumber: "1", Country: billing.CountryCzechia},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateParty(context.Background(), d)
			assertValidation(t, err)
		})
	}
}

func TestCreateParty_normalisesCountry(t *testing.T) {
	svc, _ := newTestService(t)
	p, err := svc.CreateParty(context.Background(), billing.PartyDetails{
		Name: "X", IdentificationNumber: "1", Country: "slovakia",
	})
	require.NoError(t, err)
	assert.Equal(t, billing.CountrySlovakia, p.Country)
	assert.False(t, p.Hidden)
}

func TestUpdateParty_preservesHidden(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	p := mustParty(t, svc, "Old Name", "1")
	require.NoError(t, svc.DeleteParty(ctx, p.ID))

	updated, err := svc.UpdateParty(ctx, p.ID, billing.PartyDetails{
		Name: "New Name", IdentificationNumber: "1", Country: billing.CountryCzechia,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.True(t, updated.Hidden)

	stored, err := svc.GetParty(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Hidden)
	assert.Equal(t, "New Name", stored.Name)
}

func TestUpdateParty_missing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateParty(context.Background(), 404, billing.PartyDetails{
		Name: "X", IdentificationNumber: "1", Country: billing.CountryCzechia,
	})
	assert.ErrorIs(t, err, billing.ErrNotFound)
}

func TestDeleteParty_keepsInvoices(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := mustParty(t, svc, "Acme", "111")
	b := mustParty(t, svc, "Beta", "222")
	inv := mustInvoice(t, svc, invoiceInput(a.ID, b.ID, billing.NewDate(2025, 1, 1), "10"))

	require.NoError(t, svc.DeleteParty(ctx, a.ID))

	got, err := svc.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, got.Hidden)
	assert.Equal(t, "Acme", got.Seller.Name)

	list, err := svc.ListInvoices(ctx, billing.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
