package handlers

import (
	"github.com/gin-gonic/gin"

	"fishledger/internal/domain/ledger"
	"fishledger/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles purchase lot endpoints.
type PurchaseHandler struct {
	BaseHandler
	ledger *ledger.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(svc *ledger.Service) *PurchaseHandler {
	return &PurchaseHandler{ledger: svc}
}

// Create records a purchase lot.
// POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	lot, err := h.ledger.RecordPurchase(c.Request.Context(), h.Caller(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromPurchase(lot))
}

// Get returns one lot.
// GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	lotID, ok := h.ParamID(c)
	if !ok {
		return
	}
	lot, err := h.ledger.GetPurchase(c.Request.Context(), lotID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromPurchase(lot))
}
