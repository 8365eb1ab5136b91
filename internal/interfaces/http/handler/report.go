package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/marketplace/portal/internal/application/report"
	"github.com/marketplace/portal/internal/domain/report"
	"github.com/marketplace/portal/internal/domain/shared"
)

const reportDateLayout = "2006-01-02"

// ReportHandler serves dashboards and report pages
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ReportRequest selects a report period; dates are YYYY-MM-DD
type ReportRequest struct {
	From        string `json:"from" binding:"required" example:"2026-01-01"`
	To          string `json:"to" binding:"required" example:"2026-01-31"`
	Granularity string `json:"granularity" binding:"omitempty,oneof=day week month" example:"week"`
}

// query parses the dates. To is inclusive, so it is moved to the end of its day.
func (r ReportRequest) query() (report.Query, error) {
	from, err := time.Parse(reportDateLayout, r.From)
	if err != nil {
		return report.Query{}, shared.NewDomainError("INVALID_REPORT_RANGE", "Start date must be YYYY-MM-DD")
	}
	to, err := time.Parse(reportDateLayout, r.To)
	if err != nil {
		return report.Query{}, shared.NewDomainError("INVALID_REPORT_RANGE", "End date must be YYYY-MM-DD")
	}
	return report.Query{
		From:        from,
		To:          to.Add(24*time.Hour - time.Nanosecond),
		Granularity: report.Granularity(r.Granularity),
	}, nil
}

// VendorDashboard handles GET /vendor/dashboard
func (h *ReportHandler) VendorDashboard(c *gin.Context) {
	d, err := h.reportService.VendorDashboard(c.Request.Context(), principal(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// AdminDashboard handles GET /admin/dashboard
func (h *ReportHandler) AdminDashboard(c *gin.Context) {
	d, err := h.reportService.AdminDashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, d)
}

// VendorReport handles POST /vendor/reports
func (h *ReportHandler) VendorReport(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	r, err := h.reportService.VendorReport(c.Request.Context(), principal(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

// AdminReport handles POST /admin/reports
func (h *ReportHandler) AdminReport(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}
	r, err := h.reportService.AdminReport(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, r)
}

func (h *ReportHandler) bindQuery(c *gin.Context) (report.Query, bool) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return report.Query{}, false
	}
	q, err := req.query()
	if err != nil {
		h.HandleError(c, err)
		return report.Query{}, false
	}
	return q, true
}
