package license

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	StatusPending PaymentStatus = "pending"
	StatusActive  PaymentStatus = "active"
	StatusExpired PaymentStatus = "expired"
	StatusFailed  PaymentStatus = "failed"
)

type BillingPeriod string

const (
	BillingYearly    BillingPeriod = "yearly"
	BillingQuarterly BillingPeriod = "quarterly"
)

// License is a hotel's software licence. It becomes usable once the payment
// gateway confirms the charge and PaymentStatus moves from pending to active.
type License struct {
	ID            string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	HotelID       int64         `gorm:"index;not null" json:"hotel_id"`
	PlanID        string        `gorm:"type:varchar(64)" json:"plan_id"`
	Email         string        `gorm:"type:varchar(255)" json:"email"`
	LicenceKey    string        `gorm:"type:varchar(64);index" json:"licence_key,omitempty"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);default:'pending';index" json:"payment_status"`
	TransactionID string        `gorm:"type:varchar(64);index" json:"transaction_id,omitempty"`
	BillingPeriod BillingPeriod `gorm:"type:varchar(20)" json:"billing_period"`
	ExpiresAt     *time.Time    `json:"expires_at,omitempty"`
	ActivatedAt   *time.Time    `json:"activated_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (License) TableName() string { return "licenses" }

func (l *License) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.PaymentStatus == "" {
		l.PaymentStatus = StatusPending
	}
	return nil
}

// Activation holds the fields written when a pending licence is activated.
type Activation struct {
	TransactionID string
	BillingPeriod BillingPeriod
	LicenceKey    string
	ActivatedAt   time.Time
	ExpiresAt     time.Time
}

// ParseBillingPeriod accepts the known periods case-insensitively.
func ParseBillingPeriod(v string) (BillingPeriod, bool) {
	switch BillingPeriod(lower(v)) {
	case BillingYearly:
		return BillingYearly, true
	case BillingQuarterly:
		return BillingQuarterly, true
	}
	return "", false
}

// ExpiryFrom returns the end of a billing period starting at t.
func (p BillingPeriod) ExpiryFrom(t time.Time) time.Time {
	if p == BillingQuarterly {
		return t.AddDate(0, 3, 0)
	}
	return t.AddDate(1, 0, 0)
}
