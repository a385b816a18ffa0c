package license

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, l *License) error
	GetByID(ctx context.Context, id string) (*License, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*License, error)
	ActivateIfPending(ctx context.Context, id string, a Activation) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *License) error {
	if err := r.db.WithContext(ctx).Create(l).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrLicenseExists
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *repository) GetByID(ctx context.Context, id string) (*License, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *repository) GetByTransactionID(ctx context.Context, transactionID string) (*License, error) {
	if transactionID == "" {
		return nil, ErrLicenseNotFound
	}
	return r.first(ctx, "transaction_id = ?", transactionID)
}

func (r *repository) first(ctx context.Context, query string, args ...any) (*License, error) {
	var l License
	if err := r.db.WithContext(ctx).Where(query, args...).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLicenseNotFound
		}
		return nil, err
	}
	return &l, nil
}

// ActivateIfPending flips a pending licence to active in a single conditional
// UPDATE. It reports false when the row was no longer pending, so concurrent
// duplicate deliveries activate at most once.
func (r *repository) ActivateIfPending(ctx context.Context, id string, a Activation) (bool, error) {
	updates := map[string]any{
		"payment_status": StatusActive,
		"transaction_id": a.TransactionID,
		"billing_period": a.BillingPeriod,
		"activated_at":   a.ActivatedAt,
		"expires_at":     a.ExpiresAt,
		"updated_at":     a.ActivatedAt,
	}
	if a.LicenceKey != "" {
		updates["licence_key"] = a.LicenceKey
	}
	res := r.db.WithContext(ctx).
		Model(&License{}).
		Where("id = ? AND payment_status = ?", id, StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&License{}).
		Where("payment_status = ? AND expires_at IS NOT NULL AND expires_at < ?", StatusActive, now).
		Updates(map[string]any{
			"payment_status": StatusExpired,
			"updated_at":     now,
		})
	return res.RowsAffected, res.Error
}
