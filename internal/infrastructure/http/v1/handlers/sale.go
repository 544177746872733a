package handlers

import (
	"github.com/gin-gonic/gin"

	"fishledger/internal/domain/ledger"
	"fishledger/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles sale and payment endpoints.
type SaleHandler struct {
	BaseHandler
	ledger *ledger.Service
}

// NewSaleHandler creates a sale handler.
func NewSaleHandler(svc *ledger.Service) *SaleHandler {
	return &SaleHandler{ledger: svc}
}

// Create records a sale and allocates it to open lots.
// POST /sales
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	terms, err := req.ToTerms()
	if err != nil {
		h.Error(c, err)
		return
	}

	s, err := h.ledger.RecordSale(c.Request.Context(), h.Caller(c), terms)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromSale(s))
}

// Get returns a sale with its items and payments.
// GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}
	s, err := h.ledger.GetSale(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSale(s))
}

// Delete removes a sale and returns its kilograms to the lots.
// DELETE /sales/:id
func (h *SaleHandler) Delete(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}
	if err := h.ledger.DeleteSale(c.Request.Context(), h.Caller(c), saleID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Balance returns what is still owed on a sale.
// GET /sales/:id/balance
func (h *SaleHandler) Balance(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}
	outstanding, err := h.ledger.OutstandingBalance(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.BalanceResponse{SaleID: saleID, Outstanding: outstanding})
}

// RecordPayment records money received against a sale.
// POST /sales/:id/payments
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	saleID, ok := h.ParamID(c)
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.ledger.RecordPayment(c.Request.Context(), h.Caller(c), saleID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromPaymentResult(result))
}
