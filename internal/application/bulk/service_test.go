package bulk

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/bulk"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Template(ctx context.Context) ([]byte, string, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]byte)
	return b, args.String(1), args.Error(2)
}

func (m *MockGateway) Import(ctx context.Context, kind bulk.Kind, vendorID, fileName string, content io.Reader) (bulk.Result, error) {
	args := m.Called(ctx, kind, vendorID, fileName, content)
	return args.Get(0).(bulk.Result), args.Error(1)
}

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.ImportHistory), args.Error(1)
}

func (m *MockHistoryRepository) FindAll(ctx context.Context, f bulk.HistoryFilter) (*bulk.HistoryPage, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bulk.HistoryPage), args.Error(1)
}

func (m *MockHistoryRepository) Save(ctx context.Context, h *bulk.ImportHistory) error {
	return m.Called(ctx, h).Error(0)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockArchive) URL(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockArchive) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockPreflight struct {
	mock.Mock
}

func (m *MockPreflight) Inspect(content []byte) (int, error) {
	args := m.Called(content)
	return args.Int(0), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(format bulk.ReportFormat, problems []bulk.Problem) ([]byte, error) {
	args := m.Called(format, problems)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type fixture struct {
	svc       *Service
	gateway   *MockGateway
	history   *MockHistoryRepository
	archive   *MockArchive
	preflight *MockPreflight
	reports   *MockRenderer
}

func newFixture() *fixture {
	f := &fixture{
		gateway:   new(MockGateway),
		history:   new(MockHistoryRepository),
		archive:   new(MockArchive),
		preflight: new(MockPreflight),
		reports:   new(MockRenderer),
	}
	f.svc = NewService(f.gateway, f.history, f.archive, f.preflight, f.reports)
	return f
}

var (
	vendor = identity.Principal{UserID: "u-1", Role: identity.RoleVendor, VendorID: "v-1"}
	admin  = identity.Principal{UserID: "a-1", Role: identity.RoleSuperAdmin}
	book   = []byte("PK\x03\x04fake")
)

func TestService_Import_NoFileNeverUploads(t *testing.T) {
	for name, up := range map[string]Upload{
		"no file":    {Kind: bulk.KindProducts},
		"empty file": {Kind: bulk.KindProducts, FileName: "products.xlsx"},
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture()

			out, err := f.svc.Import(context.Background(), vendor, up)
			require.Error(t, err)
			assert.Nil(t, out)
			f.gateway.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.history.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Import_RejectsBeforeUpload(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Import(context.Background(), vendor, Upload{Kind: bulk.KindProducts, FileName: "products.csv", Content: book})
		assert.ErrorIs(t, err, bulk.ErrNotXLSX)
		f.gateway.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unreadable workbook", func(t *testing.T) {
		f := newFixture()
		f.preflight.On("Inspect", book).Return(0, bulk.ErrUnreadableWorkbook)
		_, err := f.svc.Import(context.Background(), vendor, Upload{Kind: bulk.KindProducts, FileName: "p.xlsx", Content: book})
		assert.ErrorIs(t, err, bulk.ErrUnreadableWorkbook)
		f.gateway.AssertNotCalled(t, "Import", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin without vendor", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Import(context.Background(), admin, Upload{Kind: bulk.KindProducts, FileName: "p.xlsx", Content: book})
		require.Error(t, err)
		f.preflight.AssertNotCalled(t, "Inspect", mock.Anything)
	})

	t.Run("sub-admin without bulk capability", func(t *testing.T) {
		f := newFixture()
		sub := identity.Principal{UserID: "s-1", Role: identity.RoleSubAdmin, Permissions: identity.PermissionSet{
			identity.ModuleBulkImport: {View: true},
		}}
		_, err := f.svc.Import(context.Background(), sub, Upload{Kind: bulk.KindProducts, FileName: "p.xlsx", Content: book, VendorID: "v-9"})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestService_Import_Success(t *testing.T) {
	f := newFixture()
	f.preflight.On("Inspect", book).Return(3, nil)
	f.archive.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "imports/v-1/products/")
	}), book, bulk.XLSXContentType).Return(nil)
	f.history.On("Save", mock.Anything, mock.AnythingOfType("*bulk.ImportHistory")).Return(nil)
	f.gateway.On("Import", mock.Anything, bulk.KindProducts, "", "p.xlsx", mock.Anything).
		Return(bulk.Result{Status: 1, Message: "3 products imported", Inserted: 3}, nil)

	out, err := f.svc.Import(context.Background(), vendor, Upload{Kind: bulk.KindProducts, FileName: "p.xlsx", Content: book})
	require.NoError(t, err)
	require.NoError(t, out.Err)
	assert.Equal(t, 3, out.Result.Inserted)
	assert.NotNil(t, out.Result.Errors)

	f.history.AssertNumberOfCalls(t, "Save", 2)
	saved := f.history.Calls[1].Arguments.Get(1).(*bulk.ImportHistory)
	assert.Equal(t, bulk.StatusCompleted, saved.Status)
	assert.Equal(t, "u-1", saved.UploadedBy)
	assert.NotEmpty(t, saved.ArchiveKey)
}

func TestService_Import_BusinessFailureKeepsRows(t *testing.T) {
	f := newFixture()
	f.preflight.On("Inspect", book).Return(2, nil)
	f.archive.On("Put", mock.Anything, mock.Anything, book, bulk.XLSXContentType).Return(errors.New("s3 down"))
	f.history.On("Save", mock.Anything, mock.Anything).Return(nil)
	rejected := errors.New("2 rows failed")
	f.gateway.On("Import", mock.Anything, bulk.KindPrices, "v-7", "p.xlsx", mock.Anything).Return(bulk.Result{
		Status:     0,
		Message:    "2 rows failed",
		Errors:     []bulk.RowError{{Row: 3, Field: "price", Message: "must be positive"}},
		Duplicates: []bulk.Duplicate{{Row: 2, SKU: "SKU-1"}},
	}, rejected)

	out, err := f.svc.Import(context.Background(), admin, Upload{Kind: bulk.KindPrices, FileName: "p.xlsx", Content: book, VendorID: "v-7"})
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, rejected)
	assert.Len(t, out.Result.Errors, 1)
	assert.Len(t, out.Result.Duplicates, 1)

	saved := f.history.Calls[1].Arguments.Get(1).(*bulk.ImportHistory)
	assert.Equal(t, bulk.StatusFailed, saved.Status)
	assert.Equal(t, "v-7", saved.VendorID)
	assert.Empty(t, saved.ArchiveKey)
	assert.Equal(t, 1, saved.ErrorRows)
}

func TestService_History_VendorScoped(t *testing.T) {
	f := newFixture()
	f.history.On("FindAll", mock.Anything, bulk.HistoryFilter{VendorID: "v-1", Page: 1, PageSize: 20}).
		Return(&bulk.HistoryPage{Total: 0, Page: 1, PageSize: 20}, nil)

	_, err := f.svc.History(context.Background(), vendor, bulk.HistoryFilter{VendorID: "someone-else"})
	require.NoError(t, err)
	f.history.AssertExpectations(t)
}

func TestService_ErrorReport(t *testing.T) {
	h, err := bulk.NewImportHistory(bulk.KindProducts, "v-1", "u-1", "p.xlsx", 10)
	require.NoError(t, err)
	require.NoError(t, h.StartProcessing(""))
	require.NoError(t, h.Fail(bulk.Result{Errors: []bulk.RowError{{Row: 4, Message: "bad"}}}))

	t.Run("renders problems", func(t *testing.T) {
		f := newFixture()
		f.history.On("FindByID", mock.Anything, h.ID).Return(h, nil)
		f.reports.On("Render", bulk.ReportXLSX, h.Problems()).Return([]byte("xlsx"), nil)

		rep, err := f.svc.ErrorReport(context.Background(), vendor, h.ID, bulk.ReportXLSX)
		require.NoError(t, err)
		assert.Equal(t, bulk.XLSXContentType, rep.ContentType)
		assert.Equal(t, "import-"+h.ID.String()[:8]+"-errors.xlsx", rep.FileName)
	})

	t.Run("other vendor gets not found", func(t *testing.T) {
		f := newFixture()
		f.history.On("FindByID", mock.Anything, h.ID).Return(h, nil)
		other := identity.Principal{UserID: "u-2", Role: identity.RoleVendor, VendorID: "v-2"}

		_, err := f.svc.ErrorReport(context.Background(), other, h.ID, bulk.ReportCSV)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.reports.AssertNotCalled(t, "Render", mock.Anything, mock.Anything)
	})
}

func TestService_ArchivedFile_Disabled(t *testing.T) {
	h, err := bulk.NewImportHistory(bulk.KindProducts, "v-1", "u-1", "p.xlsx", 10)
	require.NoError(t, err)
	require.NoError(t, h.StartProcessing("imports/v-1/products/x.xlsx"))

	f := newFixture()
	f.history.On("FindByID", mock.Anything, h.ID).Return(h, nil)
	f.archive.On("URL", mock.Anything, h.ArchiveKey).Return("", time.Time{}, ErrArchiveDisabled)

	_, _, err = f.svc.ArchivedFile(context.Background(), vendor, h.ID)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_ARCHIVED", de.Code)
}
