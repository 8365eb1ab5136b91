package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/bulk"
	"github.com/marketplace/portal/internal/domain/catalog"
	"github.com/marketplace/portal/internal/domain/identity"
	"github.com/marketplace/portal/internal/domain/onboarding"
	"github.com/marketplace/portal/internal/domain/trade"
	"github.com/marketplace/portal/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// as builds a router whose requests are made by p
func as(p *identity.Principal) *gin.Engine {
	middleware.SetupValidator()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "test-request")
		if p != nil {
			c.Set(middleware.JWTPrincipalKey, *p)
		}
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// multipartBody builds a form with an optional file field
func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

// imageForm builds a form with one png part under images
func imageForm(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="images"; filename="`+fileName+`"`)
	hdr.Set("Content-Type", "image/png")
	pw, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = pw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func dataMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decode(t, w)
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data is %T", resp.Data)
	return m
}

type MockProductGateway struct {
	mock.Mock
}

func (m *MockProductGateway) Get(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductGateway) Browse(ctx context.Context, f catalog.ProductFilter) (*catalog.ProductPage, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductPage), args.Error(1)
}

func (m *MockProductGateway) ListByVendor(ctx context.Context, vendorID string, f catalog.ProductFilter) (*catalog.ProductPage, error) {
	args := m.Called(ctx, vendorID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductPage), args.Error(1)
}

func (m *MockProductGateway) Update(ctx context.Context, id string, upd catalog.ProductUpdate, images []catalog.Image) (*catalog.Product, error) {
	args := m.Called(ctx, id, upd, images)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductGateway) UpdatePrice(ctx context.Context, id string, in catalog.PriceInput) (string, error) {
	args := m.Called(ctx, id, in)
	return args.String(0), args.Error(1)
}

type MockBulkGateway struct {
	mock.Mock
}

func (m *MockBulkGateway) Template(ctx context.Context) ([]byte, string, error) {
	args := m.Called(ctx)
	b, _ := args.Get(0).([]byte)
	return b, args.String(1), args.Error(2)
}

func (m *MockBulkGateway) Import(ctx context.Context, kind bulk.Kind, vendorID, fileName string, content io.Reader) (bulk.Result, error) {
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

type MockAdminGateway struct {
	mock.Mock
}

func (m *MockAdminGateway) List(ctx context.Context) ([]identity.SubAdmin, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]identity.SubAdmin)
	return list, args.Error(1)
}

func (m *MockAdminGateway) Create(ctx context.Context, s *identity.SubAdmin) (*identity.SubAdmin, string, error) {
	args := m.Called(ctx, s)
	created, _ := args.Get(0).(*identity.SubAdmin)
	return created, args.String(1), args.Error(2)
}

func (m *MockAdminGateway) Update(ctx context.Context, id string, s *identity.SubAdmin) (string, error) {
	args := m.Called(ctx, id, s)
	return args.String(0), args.Error(1)
}

func (m *MockAdminGateway) Delete(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockVendorGateway struct {
	mock.Mock
}

func (m *MockVendorGateway) SendOTP(ctx context.Context, mobile string) error {
	return m.Called(ctx, mobile).Error(0)
}

func (m *MockVendorGateway) VerifyOTP(ctx context.Context, mobile, otp string) error {
	return m.Called(ctx, mobile, otp).Error(0)
}

func (m *MockVendorGateway) Register(ctx context.Context, reg *onboarding.Registration) (string, error) {
	args := m.Called(ctx, reg)
	return args.String(0), args.Error(1)
}

type MockKYCGateway struct {
	mock.Mock
}

func (m *MockKYCGateway) InitiateSession(ctx context.Context) (*onboarding.Captcha, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(*onboarding.Captcha)
	return c, args.Error(1)
}

func (m *MockKYCGateway) GenerateOTP(ctx context.Context, kycSessionID, aadhaar, captcha string) (*onboarding.AadhaarOTPResult, error) {
	args := m.Called(ctx, kycSessionID, aadhaar, captcha)
	r, _ := args.Get(0).(*onboarding.AadhaarOTPResult)
	return r, args.Error(1)
}

func (m *MockKYCGateway) VerifyOTP(ctx context.Context, kycSessionID, otp string) (*onboarding.KYCIdentity, error) {
	args := m.Called(ctx, kycSessionID, otp)
	id, _ := args.Get(0).(*onboarding.KYCIdentity)
	return id, args.Error(1)
}

func (m *MockKYCGateway) VerifyPAN(ctx context.Context, pan string) (*onboarding.DocumentCheck, error) {
	args := m.Called(ctx, pan)
	c, _ := args.Get(0).(*onboarding.DocumentCheck)
	return c, args.Error(1)
}

func (m *MockKYCGateway) VerifyGST(ctx context.Context, gstin string) (*onboarding.DocumentCheck, error) {
	args := m.Called(ctx, gstin)
	c, _ := args.Get(0).(*onboarding.DocumentCheck)
	return c, args.Error(1)
}

type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) List(ctx context.Context, f trade.OrderFilter) (*trade.OrderPage, error) {
	args := m.Called(ctx, f)
	page, _ := args.Get(0).(*trade.OrderPage)
	return page, args.Error(1)
}

func (m *MockOrderGateway) Get(ctx context.Context, id string) (*trade.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*trade.Order)
	return o, args.Error(1)
}

func (m *MockOrderGateway) UpdateStatus(ctx context.Context, id string, status trade.OrderStatus) (string, error) {
	args := m.Called(ctx, id, status)
	return args.String(0), args.Error(1)
}

func (m *MockOrderGateway) RequestReturn(ctx context.Context, req *trade.ReturnRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockOrderGateway) RequestReplacement(ctx context.Context, req *trade.ReplacementRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockOrderGateway) Returns(ctx context.Context, f trade.OrderFilter) ([]trade.ReturnCase, error) {
	args := m.Called(ctx, f)
	cases, _ := args.Get(0).([]trade.ReturnCase)
	return cases, args.Error(1)
}
