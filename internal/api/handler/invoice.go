package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/invoicehub/internal/billing"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// invoiceSvc is the interface expected by InvoiceHandler, satisfied by *billing.Service.
type invoiceSvc interface {
	ListInvoices(ctx context.Context, f billing.InvoiceFilter) ([]billing.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*billing.Invoice, error)
	CreateInvoice(ctx context.Context, in billing.InvoiceInput) (*billing.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, in billing.InvoiceInput) (*billing.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
	InvoiceStatistics(ctx context.Context) (*billing.InvoiceStatistics, error)
	MonthlyTurnover(ctx context.Context, sellerID, buyerID *int64) ([]billing.MonthlyTurnover, error)
}

// InvoiceHandler handles /invoices routes.
type InvoiceHandler struct {
	svc    invoiceSvc
	logger *zap.Logger
}

// NewInvoiceHandler creates an InvoiceHandler.
func NewInvoiceHandler(svc invoiceSvc, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, logger: logger}
}

// Register mounts the invoice routes. Callers guard the group with
// identity.RequireAccount.
func (h *InvoiceHandler) Register(rg *gin.RouterGroup) {
	inv := rg.Group("/invoices")
	{
		inv.GET("", h.List)
		inv.POST("", h.Create)
		inv.GET("/statistics", h.Statistics)
		inv.GET("/turnover", h.Turnover)
		inv.GET("/:id", h.Get)
		inv.PUT("/:id", h.Update)
		inv.DELETE("/:id", h.Delete)
	}
}

type partyIDRef struct {
	ID int64 `json:"id"`
}

type invoiceRequest struct {
	InvoiceNumber int             `json:"invoiceNumber"`
	Issued        billing.Date    `json:"issued"`
	DueDate       billing.Date    `json:"dueDate"`
	Product       string          `json:"product"`
	Price         decimal.Decimal `json:"price"`
	VAT           decimal.Decimal `json:"vat"`
	Note          string          `json:"note"`
	Seller        *partyIDRef     `json:"seller"`
	Buyer         *partyIDRef     `json:"buyer"`
	Hidden        *bool           `json:"hidden"`
}

func (r invoiceRequest) input() billing.InvoiceInput {
	return billing.InvoiceInput{
		InvoiceNumber: r.InvoiceNumber,
		Issued:        r.Issued,
		DueDate:       r.DueDate,
		Product:       r.Product,
		Price:         r.Price,
		VAT:           r.VAT,
		Note:          r.Note,
		SellerID:      lo.FromPtr(r.Seller).ID,
		BuyerID:       lo.FromPtr(r.Buyer).ID,
		Hidden:        r.Hidden,
	}
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	f, err := parseInvoiceFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invoices, err := h.svc.ListInvoices(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.logger, "list invoices", err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func parseInvoiceFilter(c *gin.Context) (billing.InvoiceFilter, error) {
	var f billing.InvoiceFilter
	var err error
	if f.BuyerID, err = optionalInt64(c, "buyerID"); err != nil {
		return f, err
	}
	if f.SellerID, err = optionalInt64(c, "sellerID"); err != nil {
		return f, err
	}
	if f.MinPrice, err = optionalDecimal(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optionalDecimal(c, "maxPrice"); err != nil {
		return f, err
	}
	f.Product = c.Query("product")
	if raw := c.Query("limit"); raw != "" {
		n, convErr := strconv.Atoi(raw)
		if convErr != nil || n <= 0 {
			return f, &billing.ErrValidation{Msg: "limit must be a positive integer"}
		}
		f.Limit = n
	}
	return f, nil
}

func optionalDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &billing.ErrValidation{Msg: key + " must be a number"}
	}
	return &d, nil
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	inv, err := h.svc.GetInvoice(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "get invoice", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.svc.CreateInvoice(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.logger, "create invoice", err)
		return
	}
	recordInvoiceWrite("create")
	c.JSON(http.StatusCreated, inv)
}

// Update handles PUT /invoices/:id.
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.svc.UpdateInvoice(c.Request.Context(), id, req.input())
	if err != nil {
		writeError(c, h.logger, "update invoice", err)
		return
	}
	recordInvoiceWrite("update")
	c.JSON(http.StatusOK, inv)
}

// Delete handles DELETE /invoices/:id. The invoice is hidden, not removed.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteInvoice(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, "delete invoice", err)
		return
	}
	recordInvoiceWrite("delete")
	c.Status(http.StatusNoContent)
}

// Statistics handles GET /invoices/statistics.
func (h *InvoiceHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.InvoiceStatistics(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "invoice statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Turnover handles GET /invoices/turnover.
func (h *InvoiceHandler) Turnover(c *gin.Context) {
	sellerID, err := optionalInt64(c, "sellerID")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buyerID, err := optionalInt64(c, "buyerID")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	months, err := h.svc.MonthlyTurnover(c.Request.Context(), sellerID, buyerID)
	if err != nil {
		writeError(c, h.logger, "monthly turnover", err)
		return
	}
	c.JSON(http.StatusOK, months)
}
