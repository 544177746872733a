package handlers

import (
	"github.com/gin-gonic/gin"

	"fishledger/internal/domain/reports"
	"fishledger/internal/infrastructure/export"
	"fishledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves margin reports.
type ReportsHandler struct {
	BaseHandler
	reports *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(svc *reports.Service) *ReportsHandler {
	return &ReportsHandler{reports: svc}
}

func (h *ReportsHandler) margin(c *gin.Context) (*reports.MarginReport, bool) {
	var q dto.PeriodQuery
	if !h.BindQuery(c, &q) {
		return nil, false
	}
	period, err := q.ToPeriod()
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	report, err := h.reports.Margin(c.Request.Context(), period)
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return report, true
}

// Margin returns the margin report for [from, to).
// GET /reports/margin?from=2025-01-01&to=2025-02-01
func (h *ReportsHandler) Margin(c *gin.Context) {
	if report, ok := h.margin(c); ok {
		h.OK(c, report)
	}
}

// MarginExport downloads the margin report as a spreadsheet.
// GET /reports/margin/export?from=2025-01-01&to=2025-02-01
func (h *ReportsHandler) MarginExport(c *gin.Context) {
	report, ok := h.margin(c)
	if !ok {
		return
	}
	data, err := export.MarginWorkbook(report)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Attachment(c, "margin-"+report.Period.From.Format(dto.DateLayout)+".xlsx", export.ContentType, data)
}
