// Package bulk forwards workbook uploads to the backend and keeps a local
// audit trail of every upload with its row errors.
package bulk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/bulk"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/marketplace/portal/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrArchiveDisabled is returned by archives when object storage is off
var ErrArchiveDisabled = errors.New("import archive disabled")

// Archive stores uploaded workbooks
type Archive interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	URL(ctx context.Context, key string) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
}

// Gateway is the backend's bulk resource
type Gateway interface {
	Template(ctx context.Context) ([]byte, string, error)
	Import(ctx context.Context, kind bulk.Kind, vendorID, fileName string, content io.Reader) (bulk.Result, error)
}

// Preflight checks that an upload is a readable workbook with data rows
type Preflight interface {
	Inspect(content []byte) (int, error)
}

// ReportRenderer turns stored problems into a downloadable file
type ReportRenderer interface {
	Render(format bulk.ReportFormat, problems []bulk.Problem) ([]byte, error)
}

// Upload is one workbook submitted through the portal
type Upload struct {
	Kind     bulk.Kind
	FileName string
	Content  []byte
	// VendorID is the vendor the products belong to. For admins it is
	// the vendor they upload on behalf of.
	VendorID string
}

// Outcome is what the portal shows after an upload
type Outcome struct {
	HistoryID uuid.UUID
	Result    bulk.Result
	// Err is the backend rejection, if any. Result is still filled in.
	Err error
}

// Report is a rendered error report
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Service handles bulk uploads
type Service struct {
	gateway   Gateway
	history   bulk.ImportHistoryRepository
	archive   Archive
	preflight Preflight
	reports   ReportRenderer
}

// NewService creates a new bulk Service
func NewService(gw Gateway, history bulk.ImportHistoryRepository, archive Archive, preflight Preflight, reports ReportRenderer) *Service {
	return &Service{gateway: gw, history: history, archive: archive, preflight: preflight, reports: reports}
}

// Template returns the import workbook template
func (s *Service) Template(ctx context.Context) ([]byte, string, error) {
	return s.gateway.Template(ctx)
}

// Import validates the workbook, archives it, forwards it and records the
// outcome. Nothing reaches the backend unless there is a non-empty .xlsx
// file that opens as a workbook.
func (s *Service) Import(ctx context.Context, p identity.Principal, up Upload) (*Outcome, error) {
	if len(up.Content) == 0 {
		if up.FileName == "" {
			return nil, bulk.ErrNoFile
		}
		return nil, shared.NewDomainError("EMPTY_FILE", "The selected file is empty")
	}
	if err := bulk.CheckFileName(up.FileName); err != nil {
		return nil, err
	}

	vendorID, onBehalf, err := s.resolveVendor(p, up.VendorID)
	if err != nil {
		return nil, err
	}

	rows, err := s.preflight.Inspect(up.Content)
	if err != nil {
		return nil, err
	}

	h, err := bulk.NewImportHistory(up.Kind, vendorID, p.UserID, up.FileName, int64(len(up.Content)))
	if err != nil {
		return nil, err
	}
	log := logger.L(ctx).With(
		zap.String("import_id", h.ID.String()),
		zap.String("kind", string(h.Kind)),
		zap.String("vendor_id", vendorID),
		zap.Int("rows", rows),
	)

	key := h.ArchiveObjectKey()
	if err := s.archive.Put(ctx, key, up.Content, bulk.XLSXContentType); err != nil {
		// the upload still goes through, it just has no archived copy
		log.Warn("Failed to archive workbook", zap.Error(err))
		key = ""
	}
	if err := h.StartProcessing(key); err != nil {
		return nil, err
	}
	if err := s.history.Save(ctx, h); err != nil {
		return nil, fmt.Errorf("save import history: %w", err)
	}

	backendVendor := ""
	if onBehalf {
		backendVendor = vendorID
	}
	res, callErr := s.gateway.Import(ctx, up.Kind, backendVendor, up.FileName, bytes.NewReader(up.Content))
	res.Normalize()

	if callErr == nil && res.Succeeded() {
		err = h.Complete(res)
	} else {
		err = h.Fail(res)
	}
	if err != nil {
		return nil, err
	}
	if err := s.history.Save(ctx, h); err != nil {
		log.Error("Failed to record import outcome", zap.Error(err))
	}

	log.Info("Bulk import finished",
		zap.String("status", string(h.Status)),
		zap.Int("inserted", h.Inserted),
		zap.Int("updated", h.Updated),
		zap.Int("error_rows", h.ErrorRows),
		zap.Int("duplicate_rows", h.DuplicateRows),
		zap.Duration("duration", h.Duration()),
	)
	return &Outcome{HistoryID: h.ID, Result: res, Err: callErr}, nil
}

// resolveVendor works out whose catalog an upload targets. Vendors always
// upload for themselves, admins must name a vendor.
func (s *Service) resolveVendor(p identity.Principal, requested string) (string, bool, error) {
	if p.Role == identity.RoleVendor {
		if p.VendorID == "" {
			return "", false, shared.ErrForbidden
		}
		return p.VendorID, false, nil
	}
	if !p.Can(identity.ModuleBulkImport, identity.ActionBulk) {
		return "", false, shared.ErrForbidden
	}
	if requested == "" {
		return "", false, shared.NewDomainError("INVALID_VENDOR", "Vendor is required for a bulk upload")
	}
	return requested, true, nil
}

// History lists uploads. Vendors only ever see their own.
func (s *Service) History(ctx context.Context, p identity.Principal, filter bulk.HistoryFilter) (*bulk.HistoryPage, error) {
	if p.Role == identity.RoleVendor {
		filter.VendorID = p.VendorID
	}
	filter.Normalize()
	return s.history.FindAll(ctx, filter)
}

// Get returns one upload record
func (s *Service) Get(ctx context.Context, p identity.Principal, id uuid.UUID) (*bulk.ImportHistory, error) {
	h, err := s.history.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role == identity.RoleVendor && h.VendorID != p.VendorID {
		return nil, shared.ErrNotFound
	}
	return h, nil
}

// ErrorReport renders the stored row errors and duplicates of an upload
func (s *Service) ErrorReport(ctx context.Context, p identity.Principal, id uuid.UUID, format bulk.ReportFormat) (*Report, error) {
	h, err := s.Get(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !h.HasProblems() {
		return nil, shared.NewDomainError("NO_IMPORT_ERRORS", "This upload has no errors to export")
	}
	content, err := s.reports.Render(format, h.Problems())
	if err != nil {
		return nil, fmt.Errorf("render error report: %w", err)
	}
	return &Report{
		FileName:    fmt.Sprintf("import-%s-errors.%s", h.ID.String()[:8], format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}

// ArchivedFile returns a temporary link to the uploaded workbook
func (s *Service) ArchivedFile(ctx context.Context, p identity.Principal, id uuid.UUID) (string, time.Time, error) {
	h, err := s.Get(ctx, p, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if h.ArchiveKey == "" {
		return "", time.Time{}, shared.NewDomainError("NOT_ARCHIVED", "The uploaded file was not archived")
	}
	url, expires, err := s.archive.URL(ctx, h.ArchiveKey)
	if errors.Is(err, ErrArchiveDisabled) {
		return "", time.Time{}, shared.NewDomainError("NOT_ARCHIVED", "File archiving is disabled")
	}
	return url, expires, err
}
