package handlers

import (
	"github.com/gin-gonic/gin"

	"fishledger/internal/domain/documents/receipt"
	"fishledger/internal/domain/ledger"
	"fishledger/internal/infrastructure/http/v1/dto"
)

// DocumentHandler renders and delivers sale and purchase documents.
type DocumentHandler struct {
	BaseHandler
	ledger *ledger.Service
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(svc *ledger.Service) *DocumentHandler {
	return &DocumentHandler{ledger: svc}
}

// Send returns a handler delivering the owner in :id to the requested recipient.
// POST /sales/:id/send, POST /purchases/:id/send
func (h *DocumentHandler) Send(ownerType receipt.OwnerType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := h.ParamID(c)
		if !ok {
			return
		}
		var req dto.SendDocumentRequest
		if !h.BindJSON(c, &req) {
			return
		}
		if err := h.ledger.SendDocument(c.Request.Context(), h.Caller(c), ownerType, ownerID, req.Recipient); err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.SuccessResponse{Success: true, Message: "document sent"})
	}
}
