package pos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

type OrderType string

const (
	OrderDineIn      OrderType = "dine_in"
	OrderRoomService OrderType = "room_service"
	OrderTakeaway    OrderType = "takeaway"
)

type OrderItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// Order is a point-of-sale bill. There is no partial payment: it is either
// fully paid or not paid at all.
type Order struct {
	ID          string                         `gorm:"type:varchar(36);primaryKey" json:"id"`
	HotelID     int64                          `gorm:"index;not null" json:"hotel_id"`
	Items       datatypes.JSONSlice[OrderItem] `json:"items"`
	Discount    decimal.Decimal                `gorm:"type:numeric(14,2);not null;default:0" json:"discount"`
	Status      Status                         `gorm:"type:varchar(20);index" json:"status"`
	OrderType   OrderType                      `gorm:"type:varchar(20)" json:"order_type"`
	TableNumber string                         `gorm:"type:varchar(16)" json:"table_number,omitempty"`
	RoomID      string                         `gorm:"type:varchar(36)" json:"room_id,omitempty"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`
}

func (Order) TableName() string { return "pos_orders" }

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Total is the gross value of the order before discount.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	return total
}

// Charge is what the guest owes for the order.
func (o *Order) Charge() decimal.Decimal {
	return o.Total().Sub(o.Discount)
}

func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}
