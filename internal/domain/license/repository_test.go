package license

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:license_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&License{}))
	return db
}

func TestRepository_ActivateIfPendingOnlyOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	lic := &License{ID: "abc123", HotelID: 1, Email: "owner@hotel.test"}
	require.NoError(t, repo.Create(ctx, lic))
	assert.Equal(t, StatusPending, lic.PaymentStatus)

	now := time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)
	a := Activation{
		TransactionID: "tx1",
		BillingPeriod: BillingYearly,
		LicenceKey:    "HF-TEST",
		ActivatedAt:   now,
		ExpiresAt:     BillingYearly.ExpiryFrom(now),
	}

	ok, err := repo.ActivateIfPending(ctx, "abc123", a)
	require.NoError(t, err)
	assert.True(t, ok)

	a.LicenceKey = "HF-OTHER"
	ok, err = repo.ActivateIfPending(ctx, "abc123", a)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByTransactionID(ctx, "tx1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.PaymentStatus)
	assert.Equal(t, "HF-TEST", got.LicenceKey)
	require.NotNil(t, got.ExpiresAt)
	assert.True(t, got.ExpiresAt.Equal(time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)))
}

// SQLite serializes writers, so the pool is pinned to one connection; each
// goroutine still issues its own conditional UPDATE.
func TestRepository_ActivateIfPendingConcurrentDeliveries(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &License{ID: "abc123"}))

	const deliveries = 16
	now := time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC)

	var (
		wg       sync.WaitGroup
		wins     atomic.Int32
		failures atomic.Int32
		start    = make(chan struct{})
	)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			ok, err := repo.ActivateIfPending(ctx, "abc123", Activation{
				TransactionID: "tx1",
				BillingPeriod: BillingYearly,
				LicenceKey:    fmt.Sprintf("HF-%04d", i),
				ActivatedAt:   now,
				ExpiresAt:     BillingYearly.ExpiryFrom(now),
			})
			if err != nil {
				failures.Add(1)
				return
			}
			if ok {
				wins.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, int32(1), wins.Load())

	got, err := repo.GetByID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.PaymentStatus)
	assert.Regexp(t, `^HF-\d{4}$`, got.LicenceKey)
}

func TestRepository_CreateDuplicate(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &License{ID: "dup"}))
	err := repo.Create(ctx, &License{ID: "dup"})
	assert.ErrorIs(t, err, ErrLicenseExists)
}

func TestRepository_NotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrLicenseNotFound)

	_, err = repo.GetByTransactionID(ctx, "")
	assert.ErrorIs(t, err, ErrLicenseNotFound)
}

func TestRepository_ExpireOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 1, 0)

	require.NoError(t, repo.Create(ctx, &License{ID: "overdue", PaymentStatus: StatusActive, ExpiresAt: &past}))
	require.NoError(t, repo.Create(ctx, &License{ID: "current", PaymentStatus: StatusActive, ExpiresAt: &future}))
	require.NoError(t, repo.Create(ctx, &License{ID: "pending", ExpiresAt: &past}))

	n, err := repo.ExpireOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, "overdue")
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.PaymentStatus)

	got, err = repo.GetByID(ctx, "pending")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.PaymentStatus)
}

func TestBillingPeriod_ExpiryFrom(t *testing.T) {
	start := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), BillingYearly.ExpiryFrom(start))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), BillingQuarterly.ExpiryFrom(start))

	p, ok := ParseBillingPeriod(" YEARLY ")
	assert.True(t, ok)
	assert.Equal(t, BillingYearly, p)
	_, ok = ParseBillingPeriod("weekly")
	assert.False(t, ok)
}
