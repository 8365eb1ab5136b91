package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	bulkapp "github.com/marketplace/portal/internal/application/bulk"
	"github.com/marketplace/portal/internal/domain/bulk"
	"github.com/marketplace/portal/internal/infrastructure/backend"
	"github.com/marketplace/portal/internal/interfaces/http/dto"
)

const templateFileName = "bulk-import-template.xlsx"

// BulkHandler serves workbook uploads and their history
type BulkHandler struct {
	BaseHandler
	bulkService *bulkapp.Service
}

// NewBulkHandler creates a new BulkHandler
func NewBulkHandler(bulkService *bulkapp.Service) *BulkHandler {
	return &BulkHandler{bulkService: bulkService}
}

// HistoryQuery filters the upload history
type HistoryQuery struct {
	VendorID string `form:"vendor_id" binding:"max=64"`
	Kind     string `form:"kind" binding:"omitempty,oneof=products prices"`
	Status   string `form:"status" binding:"omitempty,oneof=pending processing completed failed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ImportResultResponse is the rendered verdict of an upload
type ImportResultResponse struct {
	HistoryID  uuid.UUID        `json:"history_id"`
	Message    string           `json:"message"`
	Inserted   int              `json:"inserted"`
	Updated    int              `json:"updated"`
	Errors     []bulk.RowError  `json:"errors"`
	Duplicates []bulk.Duplicate `json:"duplicates"`
}

// ArchivedFileResponse is a temporary link to an uploaded workbook
type ArchivedFileResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Template handles GET /vendor/bulk/template and /admin/bulk/template
func (h *BulkHandler) Template(c *gin.Context) {
	content, contentType, err := h.bulkService.Template(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if contentType == "" {
		contentType = bulk.XLSXContentType
	}
	h.Attachment(c, templateFileName, contentType, content)
}

// ImportProducts handles POST /vendor/bulk/import
func (h *BulkHandler) ImportProducts(c *gin.Context) {
	h.upload(c, bulk.KindProducts, "")
}

// ImportPrices handles POST /vendor/bulk/price-update
func (h *BulkHandler) ImportPrices(c *gin.Context) {
	h.upload(c, bulk.KindPrices, "")
}

// ImportForVendor handles POST /admin/bulk/import/:vendorId. The form
// field kind picks a price update instead of a product upload.
func (h *BulkHandler) ImportForVendor(c *gin.Context) {
	kind := bulk.Kind(c.DefaultPostForm("kind", string(bulk.KindProducts)))
	if !kind.IsValid() {
		h.BadRequest(c, "Upload kind must be products or prices")
		return
	}
	h.upload(c, kind, c.Param("vendorId"))
}

// upload reads the file field and hands it to the service. A missing file
// is passed on empty so the service rejects it before any backend call.
func (h *BulkHandler) upload(c *gin.Context, kind bulk.Kind, vendorID string) {
	up := bulkapp.Upload{Kind: kind, VendorID: vendorID}
	fh, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		h.BadRequest(c, "Invalid form data")
		return
	default:
		content, err := readFormFile(fh)
		if err != nil {
			h.BadRequest(c, "Could not read the uploaded file")
			return
		}
		up.FileName = fh.Filename
		up.Content = content
	}

	outcome, err := h.bulkService.Import(c.Request.Context(), principal(c), up)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	res := ImportResultResponse{
		HistoryID:  outcome.HistoryID,
		Message:    outcome.Result.Message,
		Inserted:   outcome.Result.Inserted,
		Updated:    outcome.Result.Updated,
		Errors:     outcome.Result.Errors,
		Duplicates: outcome.Result.Duplicates,
	}
	if outcome.Err == nil && outcome.Result.Succeeded() {
		msg := res.Message
		if msg == "" {
			msg = "Upload complete"
		}
		h.Mutated(c, http.StatusOK, res, msg)
		return
	}

	// a rejected upload still shows its row errors
	var be *backend.BusinessError
	if outcome.Err != nil && !errors.As(outcome.Err, &be) {
		h.HandleError(c, outcome.Err)
		return
	}
	msg := res.Message
	if be != nil {
		msg = be.UserMessage()
	}
	if outcome.Err != nil {
		_ = c.Error(outcome.Err)
	}
	resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeBackendRejected, msg, getRequestID(c))
	resp.Data = res
	c.JSON(http.StatusUnprocessableEntity, resp)
}

// History handles GET /vendor/bulk/history and /admin/bulk/history
func (h *BulkHandler) History(c *gin.Context) {
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.bulkService.History(c.Request.Context(), principal(c), bulk.HistoryFilter{
		VendorID: q.VendorID,
		Kind:     bulk.Kind(q.Kind),
		Status:   bulk.Status(q.Status),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// historyID parses the :id path parameter; it answers 400 itself on failure
func (h *BulkHandler) historyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid upload id")
		return uuid.Nil, false
	}
	return id, true
}

// ErrorReport handles GET .../bulk/history/:id/errors?format=csv|xlsx
func (h *BulkHandler) ErrorReport(c *gin.Context) {
	id, ok := h.historyID(c)
	if !ok {
		return
	}
	format, err := bulk.ParseReportFormat(c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	report, err := h.bulkService.ErrorReport(c.Request.Context(), principal(c), id, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Attachment(c, report.FileName, report.ContentType, report.Content)
}

// ArchivedFile handles GET /admin/bulk/history/:id/file
func (h *BulkHandler) ArchivedFile(c *gin.Context) {
	id, ok := h.historyID(c)
	if !ok {
		return
	}
	url, expires, err := h.bulkService.ArchivedFile(c.Request.Context(), principal(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ArchivedFileResponse{URL: url, ExpiresAt: expires})
}
