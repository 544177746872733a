package handlers

import (
	"github.com/gin-gonic/gin"

	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/ledger"
	"fishledger/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler handles the receipt lifecycle.
type ReceiptHandler struct {
	BaseHandler
	ledger *ledger.Service
}

// NewReceiptHandler creates a receipt handler.
func NewReceiptHandler(svc *ledger.Service) *ReceiptHandler {
	return &ReceiptHandler{ledger: svc}
}

// Issue returns a handler issuing a receipt for the owner in :id.
// POST /sales/:id/receipts, POST /purchases/:id/receipts
func (h *ReceiptHandler) Issue(ownerType receipt.OwnerType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := h.ParamID(c)
		if !ok {
			return
		}
		rc, err := h.ledger.IssueReceipt(c.Request.Context(), h.Caller(c), ownerType, ownerID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.Created(c, rc)
	}
}

// List returns a handler listing every receipt of the owner in :id.
// GET /sales/:id/receipts, GET /purchases/:id/receipts
func (h *ReceiptHandler) List(ownerType receipt.OwnerType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := h.ParamID(c)
		if !ok {
			return
		}
		receipts, err := h.ledger.ListReceipts(c.Request.Context(), ownerType, ownerID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.NewList(receipts))
	}
}

// Get returns one receipt.
// GET /receipts/:id
func (h *ReceiptHandler) Get(c *gin.Context) {
	receiptID, ok := h.ParamID(c)
	if !ok {
		return
	}
	rc, err := h.ledger.GetReceipt(c.Request.Context(), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rc)
}

// Void voids an issued receipt.
// POST /receipts/:id/void
func (h *ReceiptHandler) Void(c *gin.Context) {
	receiptID, ok := h.ParamID(c)
	if !ok {
		return
	}
	rc, err := h.ledger.VoidReceipt(c.Request.Context(), h.Caller(c), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rc)
}

// Reissue supersedes an issued receipt with a newly numbered one.
// POST /receipts/:id/reissue
func (h *ReceiptHandler) Reissue(c *gin.Context) {
	receiptID, ok := h.ParamID(c)
	if !ok {
		return
	}
	rc, err := h.ledger.ReissueReceipt(c.Request.Context(), h.Caller(c), receiptID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rc)
}
