package amenity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "paid"
	PaymentPending   PaymentStatus = "pending"
	PaymentCancelled PaymentStatus = "cancelled"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// ServiceRef describes the bookable amenity (spa, event hall, tour).
type ServiceRef struct {
	Name     string `gorm:"column:service_name;type:varchar(255)" json:"name"`
	Category string `gorm:"column:service_category;type:varchar(64)" json:"category"`
	Location string `gorm:"column:service_location;type:varchar(255)" json:"location"`
}

// ScheduledService is an amenity booked for a specific instant.
type ScheduledService struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	HotelID       int64           `gorm:"index;not null" json:"hotel_id"`
	Service       ServiceRef      `gorm:"embedded" json:"service"`
	ScheduledAt   *time.Time      `gorm:"index" json:"scheduled_at"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);index" json:"payment_status"`
	Status        Status          `gorm:"type:varchar(20)" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(32)" json:"payment_method,omitempty"`
	Note          string          `gorm:"type:text" json:"note,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (ScheduledService) TableName() string { return "scheduled_services" }

func (s *ScheduledService) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// PaidAmount is the full amount once paid and zero otherwise.
func (s *ScheduledService) PaidAmount() decimal.Decimal {
	if s.PaymentStatus == PaymentPaid {
		return s.TotalAmount
	}
	return decimal.Zero
}
