package onboarding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/marketplace/portal/internal/domain/onboarding"
	"github.com/marketplace/portal/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.Captcha), args.Error(1)
}

func (m *MockKYCGateway) GenerateOTP(ctx context.Context, kycSessionID, aadhaar, captcha string) (*onboarding.AadhaarOTPResult, error) {
	args := m.Called(ctx, kycSessionID, aadhaar, captcha)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.AadhaarOTPResult), args.Error(1)
}

func (m *MockKYCGateway) VerifyOTP(ctx context.Context, kycSessionID, otp string) (*onboarding.KYCIdentity, error) {
	args := m.Called(ctx, kycSessionID, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.KYCIdentity), args.Error(1)
}

func (m *MockKYCGateway) VerifyPAN(ctx context.Context, pan string) (*onboarding.DocumentCheck, error) {
	args := m.Called(ctx, pan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.DocumentCheck), args.Error(1)
}

func (m *MockKYCGateway) VerifyGST(ctx context.Context, gstin string) (*onboarding.DocumentCheck, error) {
	args := m.Called(ctx, gstin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.DocumentCheck), args.Error(1)
}

// mapStore keeps clones, like the real stores do
type mapStore struct {
	mu sync.Mutex
	m  map[uuid.UUID]*onboarding.Session
}

func newMapStore() *mapStore {
	return &mapStore{m: make(map[uuid.UUID]*onboarding.Session)}
}

func (s *mapStore) Save(_ context.Context, sess *onboarding.Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = sess.Clone()
	return nil
}

func (s *mapStore) Get(_ context.Context, id uuid.UUID) (*onboarding.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return nil, onboarding.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (s *mapStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

type fixture struct {
	svc     *Service
	store   *mapStore
	vendors *MockVendorGateway
	kyc     *MockKYCGateway
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   newMapStore(),
		vendors: new(MockVendorGateway),
		kyc:     new(MockKYCGateway),
		now:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.store, f.vendors, f.kyc, Config{SessionTTL: time.Hour, ResendCooldown: 30 * time.Second})
	f.svc.now = func() time.Time { return f.now }
	return f
}

const (
	mobile  = "9876543210"
	aadhaar = "234567890123"
	pan     = "ABCDE1234F"
	gstin   = "22ABCDE1234F1Z5"
)

// toForm walks a session through mobile and Aadhaar verification
func (f *fixture) toForm(t *testing.T) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	f.vendors.On("SendOTP", mock.Anything, mobile).Return(nil).Once()
	f.vendors.On("VerifyOTP", mock.Anything, mobile, "1234").Return(nil).Once()
	f.kyc.On("InitiateSession", mock.Anything).Return(&onboarding.Captcha{KYCSessionID: "kyc-1", Image: "data:image/png;base64,AA"}, nil).Once()
	f.kyc.On("GenerateOTP", mock.Anything, "kyc-1", aadhaar, "x7k2").Return(&onboarding.AadhaarOTPResult{ReferenceID: "ref"}, nil).Once()
	f.kyc.On("VerifyOTP", mock.Anything, "kyc-1", "123456").Return(&onboarding.KYCIdentity{Name: "Asha"}, nil).Once()

	sess, err := f.svc.Start(ctx, mobile)
	require.NoError(t, err)
	_, err = f.svc.VerifyMobileOTP(ctx, sess.ID, "1234")
	require.NoError(t, err)
	_, err = f.svc.StartAadhaar(ctx, sess.ID)
	require.NoError(t, err)
	_, err = f.svc.RequestAadhaarOTP(ctx, sess.ID, aadhaar, "x7k2")
	require.NoError(t, err)
	_, _, err = f.svc.VerifyAadhaarOTP(ctx, sess.ID, "123456")
	require.NoError(t, err)
	return sess.ID
}

func validForm() onboarding.VendorForm {
	return onboarding.VendorForm{
		BusinessName: "Asha Traders",
		OwnerName:    "Asha",
		Email:        "asha@example.com",
		Password:     "secret-pass",
		Address:      onboarding.Address{Line1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001"},
		Bank:         onboarding.BankDetails{AccountHolder: "Asha", AccountNumber: "123456789012", IFSC: "hdfc0001234"},
	}
}

func TestService_Start(t *testing.T) {
	f := newFixture(t)
	f.vendors.On("SendOTP", mock.Anything, mobile).Return(nil)

	sess, err := f.svc.Start(context.Background(), "+91 98765 43210")
	require.NoError(t, err)
	assert.Equal(t, onboarding.StepMobile, sess.Step)
	require.NotNil(t, sess.OTPSentAt)
	assert.Equal(t, f.now, *sess.OTPSentAt)

	stored, err := f.svc.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, mobile, stored.Mobile)
}

func TestService_Start_InvalidMobile(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Start(context.Background(), "12345")
	require.Error(t, err)
	f.vendors.AssertNotCalled(t, "SendOTP", mock.Anything, mock.Anything)
}

func TestService_Start_BackendFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	f.vendors.On("SendOTP", mock.Anything, mobile).Return(errors.New("down"))

	_, err := f.svc.Start(context.Background(), mobile)
	require.Error(t, err)
	assert.Empty(t, f.store.m)
}

func TestService_ResendMobileOTP_Cooldown(t *testing.T) {
	f := newFixture(t)
	f.vendors.On("SendOTP", mock.Anything, mobile).Return(nil)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, mobile)
	require.NoError(t, err)

	f.now = f.now.Add(10 * time.Second)
	_, err = f.svc.ResendMobileOTP(ctx, sess.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrRateLimited))
	assert.Contains(t, err.Error(), "20 seconds")

	f.now = f.now.Add(20 * time.Second)
	resent, err := f.svc.ResendMobileOTP(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, f.now, *resent.OTPSentAt)
	f.vendors.AssertNumberOfCalls(t, "SendOTP", 2)
}

func TestService_VerifyMobileOTP(t *testing.T) {
	t.Run("wrong length never reaches backend", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.VerifyMobileOTP(context.Background(), uuid.New(), "12345")
		require.Error(t, err)
		f.vendors.AssertNotCalled(t, "VerifyOTP", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected otp leaves session unchanged", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.vendors.On("SendOTP", mock.Anything, mobile).Return(nil)
		f.vendors.On("VerifyOTP", mock.Anything, mobile, "9999").Return(errors.New("Invalid OTP"))

		sess, err := f.svc.Start(ctx, mobile)
		require.NoError(t, err)
		_, err = f.svc.VerifyMobileOTP(ctx, sess.ID, "9999")
		require.Error(t, err)

		stored, err := f.svc.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.False(t, stored.MobileVerified)
		assert.Equal(t, onboarding.StepMobile, stored.Step)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.VerifyMobileOTP(context.Background(), uuid.New(), "1234")
		assert.ErrorIs(t, err, onboarding.ErrSessionNotFound)
	})
}

func TestService_StartAadhaar_RequiresMobile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.vendors.On("SendOTP", mock.Anything, mobile).Return(nil)

	sess, err := f.svc.Start(ctx, mobile)
	require.NoError(t, err)
	_, err = f.svc.StartAadhaar(ctx, sess.ID)
	assert.ErrorIs(t, err, onboarding.ErrMobileNotVerified)
	f.kyc.AssertNotCalled(t, "InitiateSession", mock.Anything)
}

func TestService_RequestAadhaarOTP_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RequestAadhaarOTP(context.Background(), uuid.New(), "1234", "abc")
	require.Error(t, err)
	_, err = f.svc.RequestAadhaarOTP(context.Background(), uuid.New(), aadhaar, " ")
	require.Error(t, err)
	f.kyc.AssertNotCalled(t, "GenerateOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_FullFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.toForm(t)

	stored, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StepForm, stored.Step)
	assert.Equal(t, "XXXXXXXX0123", stored.AadhaarRef)

	f.kyc.On("VerifyPAN", mock.Anything, pan).Return(&onboarding.DocumentCheck{Valid: true, Name: "ASHA"}, nil)
	f.kyc.On("VerifyGST", mock.Anything, gstin).Return(&onboarding.DocumentCheck{Valid: true, BusinessName: "Asha Traders"}, nil)
	f.vendors.On("Register", mock.Anything, mock.MatchedBy(func(r *onboarding.Registration) bool {
		return r.Mobile == mobile && r.PAN == pan && r.GSTIN == gstin && r.KYCSessionID == "kyc-1" && r.Bank.IFSC == "HDFC0001234"
	})).Return("vendor-42", nil)

	_, check, err := f.svc.VerifyPAN(ctx, id, "abcde1234f")
	require.NoError(t, err)
	assert.Equal(t, "ASHA", check.Name)

	_, _, err = f.svc.VerifyGST(ctx, id, gstin)
	require.NoError(t, err)

	sess, err := f.svc.Submit(ctx, id, validForm())
	require.NoError(t, err)
	assert.Equal(t, onboarding.StepSubmitted, sess.Step)
	assert.Equal(t, "vendor-42", sess.VendorID)

	_, err = f.svc.Submit(ctx, id, validForm())
	assert.ErrorIs(t, err, onboarding.ErrAlreadySubmitted)
	f.vendors.AssertNumberOfCalls(t, "Register", 1)
}

func TestService_VerifyPAN_InvalidDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.toForm(t)
	f.kyc.On("VerifyPAN", mock.Anything, pan).Return(&onboarding.DocumentCheck{Valid: false}, nil)

	_, check, err := f.svc.VerifyPAN(ctx, id, pan)
	require.Error(t, err)
	require.NotNil(t, check)
	assert.False(t, check.Valid)

	stored, err := f.svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.PANVerified)
}

func TestService_VerifyGST_NeedsPAN(t *testing.T) {
	f := newFixture(t)
	id := f.toForm(t)

	_, _, err := f.svc.VerifyGST(context.Background(), id, gstin)
	assert.ErrorIs(t, err, onboarding.ErrPANNotVerified)
	f.kyc.AssertNotCalled(t, "VerifyGST", mock.Anything, mock.Anything)
}

func TestService_Submit_BeforeDocuments(t *testing.T) {
	f := newFixture(t)
	id := f.toForm(t)

	_, err := f.svc.Submit(context.Background(), id, validForm())
	assert.ErrorIs(t, err, onboarding.ErrPANNotVerified)
	f.vendors.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}
