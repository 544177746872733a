package handlers

import (
	"github.com/gin-gonic/gin"

	"fishledger/internal/domain/registers/stock"
	"fishledger/internal/infrastructure/export"
	"fishledger/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes the stock register.
type StockHandler struct {
	BaseHandler
	stock *stock.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(svc *stock.Service) *StockHandler {
	return &StockHandler{stock: svc}
}

// Current returns the stock position.
// GET /stock
func (h *StockHandler) Current(c *gin.Context) {
	ctx := c.Request.Context()
	current, err := h.stock.Current(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	available, err := h.stock.Available(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.StockResponse{CurrentKg: current, AvailableKg: available})
}

// Lots returns per-lot balances, oldest first.
// GET /stock/lots
func (h *StockHandler) Lots(c *gin.Context) {
	lots, err := h.stock.Lots(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewList(dto.FromLotBalances(lots)))
}

// Reconcile compares sale quantities with their lot allocations.
// GET /stock/reconcile
func (h *StockHandler) Reconcile(c *gin.Context) {
	rec, err := h.stock.Reconcile(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"consistent": rec.Consistent(), "totals": rec})
}

// Export downloads lot balances as a spreadsheet.
// GET /stock/export
func (h *StockHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	lots, err := h.stock.Lots(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	rec, err := h.stock.Reconcile(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}
	data, err := export.StockWorkbook(lots, rec)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Attachment(c, "stock.xlsx", export.ContentType, data)
}
