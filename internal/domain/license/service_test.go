package license

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelfolio/internal/notification"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []notification.LicenseMail
	err  error
}

func (m *recordingMailer) SendLicenseActivated(_ context.Context, mail notification.LicenseMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return m.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.LicenseActivated
}

func (p *recordingPublisher) PublishLicenseActivated(_ context.Context, evt notification.LicenseActivated) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, l *License) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*License), args.Error(1)
}

func (m *MockRepository) GetByTransactionID(ctx context.Context, transactionID string) (*License, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*License), args.Error(1)
}

func (m *MockRepository) ActivateIfPending(ctx context.Context, id string, a Activation) (bool, error) {
	args := m.Called(ctx, id, a)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

const completedPayload = `{"event":"charge.completed","data":{"status":"successful","tx_ref":"license_abc123_yearly","id":"tx1","customer":{"email":"payer@hotel.test"}}}`

var fixedNow = time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)

func newTestReconciler(t *testing.T, secret string) (*Reconciler, Repository, *recordingMailer, *recordingPublisher) {
	t.Helper()
	repo := NewRepository(setupTestDB(t))
	mailer := &recordingMailer{}
	pub := &recordingPublisher{}
	r := NewReconciler(repo, mailer, pub, secret, nil)
	r.now = func() time.Time { return fixedNow }
	return r, repo, mailer, pub
}

func TestReconciler_ActivatesPendingLicenseOnce(t *testing.T) {
	r, repo, mailer, pub := newTestReconciler(t, "")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &License{ID: "abc123", HotelID: 4, Email: "owner@hotel.test", PlanID: "pro"}))

	res := r.Handle(ctx, "", []byte(completedPayload))
	require.Equal(t, http.StatusOK, res.HTTPStatus, res.Description)
	assert.Equal(t, "success", res.Status)
	data, ok := res.Data.(ActivatedData)
	require.True(t, ok)
	assert.NotEmpty(t, data.LicenceKey)
	assert.Equal(t, fixedNow.AddDate(1, 0, 0), data.ExpiresAt)

	got, err := repo.GetByID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.PaymentStatus)
	assert.Equal(t, "tx1", got.TransactionID)
	assert.Equal(t, BillingYearly, got.BillingPeriod)
	assert.Equal(t, data.LicenceKey, got.LicenceKey)

	require.NoError(t, r.Wait(ctx))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "owner@hotel.test", mailer.sent[0].To)
	require.Len(t, pub.events, 1)
	assert.Equal(t, int64(4), pub.events[0].HotelID)
	firstUpdate := got.UpdatedAt

	replay := r.Handle(ctx, "", []byte(completedPayload))
	assert.Equal(t, http.StatusOK, replay.HTTPStatus)
	assert.Equal(t, "Payment already processed", replay.Description)

	again, err := repo.GetByID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, data.LicenceKey, again.LicenceKey)
	assert.True(t, firstUpdate.Equal(again.UpdatedAt))
	require.NoError(t, r.Wait(ctx))
	assert.Len(t, mailer.sent, 1)
	assert.Len(t, pub.events, 1)
}

func TestReconciler_QuarterlyFromTxRef(t *testing.T) {
	r, repo, _, _ := newTestReconciler(t, "")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &License{ID: "q1", LicenceKey: "HF-KEEP"}))

	res := r.Handle(ctx, "", []byte(`{"event":"charge.completed","data":{"status":"successful","tx_ref":"license_q1_quarterly","id":99}}`))
	require.Equal(t, http.StatusOK, res.HTTPStatus)

	data := res.Data.(ActivatedData)
	assert.Equal(t, "HF-KEEP", data.LicenceKey)
	assert.Equal(t, fixedNow.AddDate(0, 3, 0), data.ExpiresAt)
}

func TestReconciler_NothingToDo(t *testing.T) {
	r, _, _, _ := newTestReconciler(t, "secret")
	ctx := context.Background()

	tests := []struct {
		name        string
		body        string
		message     string
		description string
	}{
		{"empty body", "", "Webhook received", "Webhook received (test/verification)"},
		{"no data", `{"event":"charge.completed"}`, "Webhook received", "No payment data to process"},
		{"other event", `{"event":"transfer.completed.v2","data":{"id":"t","status":"successful"}}`, "Event ignored", "Unhandled event: transfer.completed.v2"},
		{"completed transfer", `{"event":"transfer.completed","data":{"id":"t","status":"successful","tx_ref":"license_abc123_yearly"}}`, "Event ignored", "Unhandled event: transfer.completed"},
		{"failed charge", `{"event":"charge.completed","data":{"id":"t","status":"failed","tx_ref":"license_abc123_yearly"}}`, "Payment not successful", "Payment status: failed"},
		{"not a license payment", `{"event":"charge.completed","data":{"id":"t","status":"successful","tx_ref":"booking_77"}}`, "Webhook received", "Transaction is not a license payment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Handle(ctx, "", []byte(tt.body))
			assert.Equal(t, http.StatusOK, res.HTTPStatus)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.description, res.Description)
		})
	}
}

func TestReconciler_Failures(t *testing.T) {
	r, _, _, _ := newTestReconciler(t, "secret")
	ctx := context.Background()

	res := r.Handle(ctx, "wrong", []byte(completedPayload))
	assert.Equal(t, http.StatusUnauthorized, res.HTTPStatus)
	assert.Equal(t, "error", res.Status)

	res = r.Handle(ctx, "secret", []byte(`{"event":`))
	assert.Equal(t, http.StatusBadRequest, res.HTTPStatus)

	res = r.Handle(ctx, "secret", []byte(completedPayload))
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
}

func TestReconciler_SignatureSkippedWhenHeaderMissing(t *testing.T) {
	r, repo, _, _ := newTestReconciler(t, "secret")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &License{ID: "abc123"}))

	res := r.Handle(ctx, "", []byte(completedPayload))
	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	assert.Equal(t, "License activated", res.Message)
}

func TestReconciler_MailFailureStillSucceeds(t *testing.T) {
	r, repo, mailer, pub := newTestReconciler(t, "")
	mailer.err = errors.New("smtp down")
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &License{ID: "abc123"}))

	res := r.Handle(ctx, "", []byte(completedPayload))
	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	require.NoError(t, r.Wait(ctx))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "payer@hotel.test", mailer.sent[0].To)
	assert.Len(t, pub.events, 1)
}

func TestReconciler_ConcurrentDeliveriesActivateOnce(t *testing.T) {
	r, repo, mailer, pub := newTestReconciler(t, "")
	db := repo.(*repository).db
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &License{ID: "abc123", Email: "owner@hotel.test"}))

	const deliveries = 8
	results := make([]Result, deliveries)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Handle(ctx, "", []byte(completedPayload))
		}(i)
	}
	wg.Wait()
	require.NoError(t, r.Wait(ctx))

	activated := 0
	for _, res := range results {
		require.Equal(t, http.StatusOK, res.HTTPStatus, res.Description)
		if res.Message == "License activated" {
			activated++
		} else {
			assert.Equal(t, "Payment already processed", res.Description)
		}
	}
	assert.Equal(t, 1, activated)
	assert.Len(t, mailer.sent, 1)
	assert.Len(t, pub.events, 1)
}

func TestReconciler_PersistenceFailure(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByTransactionID", mock.Anything, "tx1").Return(nil, ErrLicenseNotFound)
	repo.On("GetByID", mock.Anything, "abc123").Return(&License{ID: "abc123", PaymentStatus: StatusPending}, nil)
	repo.On("ActivateIfPending", mock.Anything, "abc123", mock.AnythingOfType("license.Activation")).Return(false, errors.New("deadlock"))

	r := NewReconciler(repo, nil, nil, "", nil)
	res := r.Handle(context.Background(), "", []byte(completedPayload))

	assert.Equal(t, http.StatusInternalServerError, res.HTTPStatus)
	assert.NotContains(t, res.Description, "deadlock")
	repo.AssertExpectations(t)
}

func TestReconciler_LostRaceIsAlreadyProcessed(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByTransactionID", mock.Anything, "tx1").Return(nil, ErrLicenseNotFound)
	repo.On("GetByID", mock.Anything, "abc123").Return(&License{ID: "abc123", PaymentStatus: StatusPending}, nil)
	repo.On("ActivateIfPending", mock.Anything, "abc123", mock.Anything).Return(false, nil)
	mailer := &recordingMailer{}

	r := NewReconciler(repo, mailer, nil, "", nil)
	res := r.Handle(context.Background(), "", []byte(completedPayload))

	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	assert.Equal(t, "Payment already processed", res.Description)
	require.NoError(t, r.Wait(context.Background()))
	assert.Empty(t, mailer.sent)
}

// stalledMailer blocks until its context ends, like an SMTP server that
// accepts the connection and never answers.
type stalledMailer struct {
	err chan error
}

func (m *stalledMailer) SendLicenseActivated(ctx context.Context, _ notification.LicenseMail) error {
	<-ctx.Done()
	m.err <- ctx.Err()
	return ctx.Err()
}

func TestReconciler_StalledMailerDoesNotDelayResponse(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	mailer := &stalledMailer{err: make(chan error, 1)}
	pub := &recordingPublisher{}
	r := NewReconciler(repo, mailer, pub, "", nil)
	r.notifyTimeout = 100 * time.Millisecond

	require.NoError(t, repo.Create(context.Background(), &License{ID: "abc123", Email: "owner@hotel.test"}))

	reqCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	res := r.Handle(reqCtx, "", []byte(completedPayload))
	assert.Less(t, time.Since(start), time.Second)
	require.Equal(t, http.StatusOK, res.HTTPStatus, res.Description)
	assert.Equal(t, "License activated", res.Message)

	// the request is over; the mail must still run to its own deadline
	cancel()
	require.NoError(t, r.Wait(context.Background()))
	assert.ErrorIs(t, <-mailer.err, context.DeadlineExceeded)
	assert.Len(t, pub.events, 1)

	got, err := repo.GetByID(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.PaymentStatus)
}

func TestReconciler_WaitHonorsContext(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	r := NewReconciler(repo, &stalledMailer{err: make(chan error, 1)}, nil, "", nil)
	r.notifyTimeout = 2 * time.Second
	require.NoError(t, repo.Create(context.Background(), &License{ID: "abc123", Email: "owner@hotel.test"}))

	res := r.Handle(context.Background(), "", []byte(completedPayload))
	require.Equal(t, http.StatusOK, res.HTTPStatus)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Wait(ctx), context.DeadlineExceeded)
}

func TestNewLicenceKey(t *testing.T) {
	key := NewLicenceKey()
	assert.Regexp(t, `^HF-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`, key)
	assert.NotEqual(t, key, NewLicenceKey())
}
