package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/invoicehub/internal/billing"
	"go.uber.org/zap"
)

// personSvc is the interface expected by PersonHandler, satisfied by *billing.Service.
type personSvc interface {
	ListParties(ctx context.Context) ([]billing.Party, error)
	SearchParties(ctx context.Context, query string) ([]billing.Party, error)
	GetParty(ctx context.Context, id int64) (*billing.Party, error)
	CreateParty(ctx context.Context, d billing.PartyDetails) (*billing.Party, error)
	UpdateParty(ctx context.Context, id int64, d billing.PartyDetails) (*billing.Party, error)
	DeleteParty(ctx context.Context, id int64) error
	PartyStatistics(ctx context.Context) ([]billing.PartyStatistics, error)
	SalesByIdentificationNumber(ctx context.Context, ico string) ([]billing.Invoice, error)
	PurchasesByIdentificationNumber(ctx context.Context, ico string) ([]billing.Invoice, error)
}

// PersonHandler handles /persons routes.
type PersonHandler struct {
	svc    personSvc
	logger *zap.Logger
}

// NewPersonHandler creates a PersonHandler.
func NewPersonHandler(svc personSvc, logger *zap.Logger) *PersonHandler {
	return &PersonHandler{svc: svc, logger: logger}
}

// Register mounts the person routes.
func (h *PersonHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/persons")
	{
		p.GET("", h.List)
		p.POST("", h.Create)
		p.GET("/search", h.Search)
		p.GET("/statistics", h.Statistics)
		p.GET("/identification/:ico/sales", h.Sales)
		p.GET("/identification/:ico/purchases", h.Purchases)
		p.GET("/:id", h.Get)
		p.PUT("/:id", h.Update)
		p.DELETE("/:id", h.Delete)
	}
}

// List handles GET /persons.
func (h *PersonHandler) List(c *gin.Context) {
	parties, err := h.svc.ListParties(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "list persons", err)
		return
	}
	c.JSON(http.StatusOK, parties)
}

// Search handles GET /persons/search?query=.
func (h *PersonHandler) Search(c *gin.Context) {
	parties, err := h.svc.SearchParties(c.Request.Context(), c.Query("query"))
	if err != nil {
		writeError(c, h.logger, "search persons", err)
		return
	}
	c.JSON(http.StatusOK, parties)
}

// Get handles GET /persons/:id.
func (h *PersonHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.svc.GetParty(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, "get person", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles POST /persons.
func (h *PersonHandler) Create(c *gin.Context) {
	var req billing.PartyDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.CreateParty(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "create person", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update handles PUT /persons/:id.
func (h *PersonHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req billing.PartyDetails
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.UpdateParty(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.logger, "update person", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /persons/:id.
func (h *PersonHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteParty(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, "delete person", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Statistics handles GET /persons/statistics.
func (h *PersonHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.PartyStatistics(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "person statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Sales handles GET /persons/identification/:ico/sales.
func (h *PersonHandler) Sales(c *gin.Context) {
	invoices, err := h.svc.SalesByIdentificationNumber(c.Request.Context(), c.Param("ico"))
	if err != nil {
		writeError(c, h.logger, "person sales", err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// Purchases handles GET /persons/identification/:ico/purchases.
func (h *PersonHandler) Purchases(c *gin.Context) {
	invoices, err := h.svc.PurchasesByIdentificationNumber(c.Request.Context(), c.Param("ico"))
	if err != nil {
		writeError(c, h.logger, "person purchases", err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}
