package license

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hotelfolio/internal/notification"
	"hotelfolio/internal/pkg/metrics"
)

const (
	statusSuccess = "success"
	statusError   = "error"

	defaultNotifyTimeout = 5 * time.Second
)

// Result is the outcome of one webhook delivery, ready to be written back to
// the gateway.
type Result struct {
	HTTPStatus  int
	Status      string
	Message     string
	Description string
	Data        any
}

// ActivatedData is returned to the gateway after a licence was activated.
type ActivatedData struct {
	LicenseID   string    `json:"licenseId"`
	LicenceKey  string    `json:"licenseKey"`
	ExpiresAt   time.Time `json:"expiresAt"`
	BillingType string    `json:"billingPeriod"`
}

type Reconciler struct {
	repo          Repository
	mailer        notification.Mailer
	publisher     notification.Publisher
	secretHash    string
	notifyTimeout time.Duration
	now           func() time.Time
	log           *zap.Logger

	inflight sync.WaitGroup
}

func NewReconciler(repo Repository, mailer notification.Mailer, publisher notification.Publisher, secretHash string, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	if publisher == nil {
		publisher = notification.NopPublisher{}
	}
	return &Reconciler{
		repo:          repo,
		mailer:        mailer,
		publisher:     publisher,
		secretHash:    secretHash,
		notifyTimeout: defaultNotifyTimeout,
		now:           time.Now,
		log:           log,
	}
}

// Handle processes one raw webhook delivery. Conditions that leave nothing to
// do answer 200 so the gateway stops retrying; only corrupt payloads, bad
// signatures, unknown licences and persistence failures answer non-200.
func (r *Reconciler) Handle(ctx context.Context, signature string, body []byte) Result {
	if len(strings.TrimSpace(string(body))) == 0 {
		return r.done("received", succeed("Webhook received", "Webhook received (test/verification)"))
	}

	if err := r.verify(signature); err != nil {
		r.log.Warn("webhook signature mismatch")
		return r.done("unauthorized", fail(http.StatusUnauthorized, "Invalid signature", err.Error()))
	}

	payload, err := ParsePayload(body)
	if err != nil {
		r.log.Warn("webhook payload rejected", zap.Error(err))
		return r.done("invalid_payload", fail(http.StatusBadRequest, "Invalid payload", err.Error()))
	}
	if payload.Data == nil {
		return r.done("no_data", succeed("Webhook received", "No payment data to process"))
	}
	if !payload.IsCompleted() {
		return r.done("ignored", succeed("Event ignored", "Unhandled event: "+payload.Event))
	}
	data := payload.Data
	if !data.IsSuccessful() {
		r.log.Info("payment not successful",
			zap.String("tx_ref", data.TxRef),
			zap.String("status", data.Status),
		)
		return r.done("unsuccessful", succeed("Payment not successful", "Payment status: "+data.Status))
	}

	lic, res, found := r.resolve(ctx, data)
	if !found {
		return res
	}
	if lic.PaymentStatus != StatusPending {
		return r.done("duplicate", alreadyProcessed(lic))
	}

	now := r.now().UTC()
	period := billingPeriodFor(data)
	activation := Activation{
		TransactionID: string(data.ID),
		BillingPeriod: period,
		LicenceKey:    lic.LicenceKey,
		ActivatedAt:   now,
		ExpiresAt:     period.ExpiryFrom(now),
	}
	if activation.LicenceKey == "" {
		activation.LicenceKey = NewLicenceKey()
	}

	activated, err := r.repo.ActivateIfPending(ctx, lic.ID, activation)
	if err != nil {
		r.log.Error("activate license", zap.String("license_id", lic.ID), zap.Error(err))
		return r.done("persistence_error", fail(http.StatusInternalServerError, "Internal server error", "Failed to activate license"))
	}
	if !activated {
		return r.done("duplicate", alreadyProcessed(lic))
	}

	lic.PaymentStatus = StatusActive
	lic.TransactionID = activation.TransactionID
	lic.BillingPeriod = activation.BillingPeriod
	lic.LicenceKey = activation.LicenceKey
	lic.ActivatedAt = &activation.ActivatedAt
	lic.ExpiresAt = &activation.ExpiresAt

	metrics.LicensesActivatedTotal.Inc()
	r.log.Info("license activated",
		zap.String("license_id", lic.ID),
		zap.String("transaction_id", lic.TransactionID),
		zap.String("billing_period", string(period)),
		zap.Time("expires_at", activation.ExpiresAt),
	)
	res = r.done("activated", Result{
		HTTPStatus: http.StatusOK,
		Status:     statusSuccess,
		Message:    "License activated",
		Data: ActivatedData{
			LicenseID:   lic.ID,
			LicenceKey:  lic.LicenceKey,
			ExpiresAt:   activation.ExpiresAt,
			BillingType: string(period),
		},
	})

	// The response must not wait on SMTP or the broker, and a client that
	// hangs up must not cancel the mail.
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		r.notify(context.WithoutCancel(ctx), lic, data.Customer.Email)
	}()

	return res
}

// Wait blocks until notifications started by Handle have finished or ctx is
// done.
func (r *Reconciler) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// verify fails only when both the header and the configured secret are present
// and differ.
func (r *Reconciler) verify(signature string) error {
	signature = strings.TrimSpace(signature)
	if signature == "" || r.secretHash == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(signature), []byte(r.secretHash)) != 1 {
		return ErrInvalidSignature
	}
	return nil
}

func (r *Reconciler) resolve(ctx context.Context, data *ChargeData) (*License, Result, bool) {
	lic, err := r.repo.GetByTransactionID(ctx, string(data.ID))
	if err == nil {
		return lic, Result{}, true
	}
	if !errors.Is(err, ErrLicenseNotFound) {
		r.log.Error("lookup license by transaction", zap.Error(err))
		return nil, r.done("persistence_error", fail(http.StatusInternalServerError, "Internal server error", "Failed to load license")), false
	}

	id, isRef := ParseLicenseRef(data.TxRef)
	if !isRef {
		r.log.Info("webhook without license reference", zap.String("tx_ref", data.TxRef))
		return nil, r.done("no_license_ref", succeed("Webhook received", "Transaction is not a license payment")), false
	}

	lic, err = r.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, ErrLicenseNotFound):
		r.log.Warn("license not found", zap.String("license_id", id), zap.String("tx_ref", data.TxRef))
		return nil, r.done("not_found", fail(http.StatusNotFound, "License not found", "No license matches "+data.TxRef)), false
	case err != nil:
		r.log.Error("lookup license", zap.String("license_id", id), zap.Error(err))
		return nil, r.done("persistence_error", fail(http.StatusInternalServerError, "Internal server error", "Failed to load license")), false
	}
	return lic, Result{}, true
}

// notify is best effort: the licence is already active and the gateway must
// not retry because a side channel failed. Each channel gets its own deadline.
func (r *Reconciler) notify(ctx context.Context, lic *License, customerEmail string) {
	to := lic.Email
	if to == "" {
		to = customerEmail
	}
	if r.mailer != nil && to != "" {
		mailCtx, cancel := context.WithTimeout(ctx, r.notifyTimeout)
		err := r.mailer.SendLicenseActivated(mailCtx, notification.LicenseMail{
			To:            to,
			LicenceKey:    lic.LicenceKey,
			PlanID:        lic.PlanID,
			BillingPeriod: string(lic.BillingPeriod),
			ExpiresAt:     *lic.ExpiresAt,
		})
		cancel()
		if err != nil {
			metrics.LicenseMailFailuresTotal.Inc()
			r.log.Warn("license mail failed", zap.String("license_id", lic.ID), zap.Error(err))
		}
	}

	pubCtx, cancel := context.WithTimeout(ctx, r.notifyTimeout)
	defer cancel()
	err := r.publisher.PublishLicenseActivated(pubCtx, notification.LicenseActivated{
		Event:         notification.EventLicenseActivated,
		Version:       1,
		OccurredAt:    *lic.ActivatedAt,
		LicenseID:     lic.ID,
		HotelID:       lic.HotelID,
		PlanID:        lic.PlanID,
		TransactionID: lic.TransactionID,
		BillingPeriod: string(lic.BillingPeriod),
		ExpiresAt:     *lic.ExpiresAt,
	})
	if err != nil {
		r.log.Warn("publish license event failed", zap.String("license_id", lic.ID), zap.Error(err))
	}
}

func (r *Reconciler) done(outcome string, res Result) Result {
	metrics.WebhookOutcomesTotal.WithLabelValues(outcome).Inc()
	return res
}

// NewLicenceKey returns a key such as HF-3F2A-91C0-77BE-0D14.
func NewLicenceKey() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	parts := []string{"HF"}
	for i := 0; i < 16; i += 4 {
		parts = append(parts, raw[i:i+4])
	}
	return strings.Join(parts, "-")
}

func succeed(message, description string) Result {
	return Result{HTTPStatus: http.StatusOK, Status: statusSuccess, Message: message, Description: description}
}

func fail(code int, message, description string) Result {
	return Result{HTTPStatus: code, Status: statusError, Message: message, Description: description}
}

func alreadyProcessed(l *License) Result {
	res := succeed("Webhook received", "Payment already processed")
	if l.PaymentStatus == StatusActive {
		res.Data = map[string]any{"licenseId": l.ID, "paymentStatus": l.PaymentStatus}
	}
	return res
}
