package stay

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "paid"
	PaymentPending   PaymentStatus = "pending"
	PaymentRefunded  PaymentStatus = "refunded"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Stay is a guest's room booking. Balance may go negative on over-payment.
type Stay struct {
	ID            string          `gorm:"type:varchar(36);primaryKey" json:"id"`
	HotelID       int64           `gorm:"index;not null" json:"hotel_id"`
	GuestName     string          `gorm:"type:varchar(255)" json:"guest_name"`
	GuestEmail    string          `gorm:"type:varchar(255)" json:"guest_email,omitempty"`
	GuestPhone    string          `gorm:"type:varchar(64)" json:"guest_phone,omitempty"`
	RoomNumber    string          `gorm:"type:varchar(32)" json:"room_number"`
	CheckInDate   *time.Time      `json:"check_in_date"`
	CheckOutDate  *time.Time      `json:"check_out_date"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`
	PaidAmount    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"paid_amount"`
	Status        Status          `gorm:"type:varchar(20);index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);index" json:"payment_status"`
	PaymentMethod string          `gorm:"type:varchar(32)" json:"payment_method,omitempty"`
	Adults        int             `json:"adults"`
	Children      int             `json:"children"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Stay) TableName() string { return "stays" }

func (s *Stay) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (s *Stay) Balance() decimal.Decimal {
	return s.TotalAmount.Sub(s.PaidAmount)
}
