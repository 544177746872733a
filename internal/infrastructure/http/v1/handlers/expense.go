package handlers

import (
	"github.com/gin-gonic/gin"

	"fishledger/internal/domain/ledger"
	"fishledger/internal/infrastructure/http/v1/dto"
)

// ExpenseHandler handles operating cost endpoints.
type ExpenseHandler struct {
	BaseHandler
	ledger *ledger.Service
}

// NewExpenseHandler creates an expense handler.
func NewExpenseHandler(svc *ledger.Service) *ExpenseHandler {
	return &ExpenseHandler{ledger: svc}
}

// Create records an expense.
// POST /expenses
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	e, err := h.ledger.RecordExpense(c.Request.Context(), h.Caller(c), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}
