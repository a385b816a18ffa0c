package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hotelfolio/internal/config"
	"hotelfolio/internal/database"
	"hotelfolio/internal/domain/license"
	"hotelfolio/internal/domain/pos"
	"hotelfolio/internal/domain/stay"
	jwtsvc "hotelfolio/internal/pkg/jwt"
)

type E2ETestSuite struct {
	router     *Router
	db         *gorm.DB
	jwtService *jwtsvc.Service
	rates      *fixedRates
}

type TestResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type fixedRates struct {
	calls int
}

func (f *fixedRates) Rate(context.Context, string) (decimal.Decimal, error) {
	f.calls++
	return decimal.NewFromInt(1500), nil
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name()), nil)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:           "e2e-secret",
		JWTAccessTTL:        time.Hour,
		ExchangeRateTTL:     time.Hour,
		ExchangeRateTimeout: time.Second,
		WebhookRPS:          100,
		WebhookBurst:        100,
	}
	rates := &fixedRates{}
	router := NewRouter(cfg, db, Deps{Rates: rates, Location: time.UTC}, nil)

	return &E2ETestSuite{
		router:     router,
		db:         db,
		jwtService: jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL),
		rates:      rates,
	}
}

func (s *E2ETestSuite) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, TestResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp TestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestE2E_FolioAccess(t *testing.T) {
	s := setupTestSuite(t)
	ctx := context.Background()

	in := time.Now().UTC().AddDate(0, 0, -1)
	out := in.AddDate(0, 0, 3)
	require.NoError(t, stay.NewRepository(s.db).Create(ctx, &stay.Stay{
		HotelID:       1,
		GuestName:     "Ada Lovelace",
		RoomNumber:    "204",
		CheckInDate:   &in,
		CheckOutDate:  &out,
		TotalAmount:   decimal.NewFromInt(500),
		PaidAmount:    decimal.NewFromInt(200),
		Status:        stay.StatusCheckedIn,
		PaymentStatus: stay.PaymentPending,
	}))
	require.NoError(t, pos.NewRepository(s.db).Create(ctx, &pos.Order{
		HotelID: 1,
		Items:   []pos.OrderItem{{Name: "Espresso", Price: decimal.NewFromInt(3), Quantity: 2}},
		Status:  pos.StatusPending,
	}))
	require.NoError(t, pos.NewRepository(s.db).Create(ctx, &pos.Order{HotelID: 2, Status: pos.StatusPending}))

	staff, err := s.jwtService.GenerateToken(10, "front_desk", 1)
	require.NoError(t, err)

	w, resp := s.do(t, http.MethodGet, "/api/v1/hotels/1/folios", staff, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, resp.Success)
	stats := resp.Data["stats"].(map[string]any)
	assert.Equal(t, float64(2), stats["total_folios"])
	assert.Equal(t, "306", stats["total_outstanding"])

	w, resp = s.do(t, http.MethodGet, "/api/v1/hotels/2/folios", staff, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	w, resp = s.do(t, http.MethodGet, "/api/v1/hotels/1/revenue", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)
}

func TestE2E_LicenseWebhook(t *testing.T) {
	s := setupTestSuite(t)
	ctx := context.Background()
	repo := license.NewRepository(s.db)
	require.NoError(t, repo.Create(ctx, &license.License{ID: "abc123", HotelID: 1}))

	payload := `{"event":"charge.completed","data":{"status":"successful","tx_ref":"license_abc123_yearly","id":"tx1"}}`

	w, _ := s.do(t, http.MethodPost, "/api/v1/payment/webhook", "", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"licenseKey"`)

	w, _ = s.do(t, http.MethodPost, "/api/v1/payment/webhook", "", payload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Payment already processed")

	got, err := repo.GetByID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, license.StatusActive, got.PaymentStatus)

	w, _ = s.do(t, http.MethodPost, "/api/v1/payment/webhook", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Webhook received (test/verification)")

	w, _ = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "licenses_activated_total")

	drainCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	assert.NoError(t, s.router.Drain(drainCtx))
}

func TestE2E_ExchangeRate(t *testing.T) {
	s := setupTestSuite(t)

	w, _ := s.do(t, http.MethodGet, "/api/v1/exchange-rate?currency=ngn", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "NGN", quote["to"])
	assert.Equal(t, float64(1500), quote["rate"])
	assert.Equal(t, "flutterwave", quote["source"])

	w, _ = s.do(t, http.MethodGet, "/api/v1/exchange-rate?currency=NGN", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "cache", quote["source"])
	assert.Equal(t, 1, s.rates.calls)

	w, _ = s.do(t, http.MethodGet, "/api/v1/exchange-rate?currency=NAIRA", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
