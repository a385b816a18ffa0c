package folio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is the normalized ledger row for a stay, order or scheduled service.
// Balance always equals TotalCharges minus TotalPayments.
type Line struct {
	ID            string          `json:"id"`
	Type          Kind            `json:"type"`
	Label         string          `json:"label"`
	Location      string          `json:"location"`
	PeriodStart   *time.Time      `json:"period_start,omitempty"`
	PeriodEnd     *time.Time      `json:"period_end,omitempty"`
	TotalCharges  decimal.Decimal `json:"total_charges"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	Balance       decimal.Decimal `json:"balance"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	LastActivity  string          `json:"last_activity"`
	Detail        string          `json:"detail,omitempty"`

	// SortKey orders lines most recent first; zero when the record has no usable date.
	SortKey time.Time `json:"-"`
}

type Stats struct {
	TotalFolios      int             `json:"total_folios"`
	OpenFolios       int             `json:"open_folios"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalCharges     decimal.Decimal `json:"total_charges"`
}

type RevenueSnapshot struct {
	Date                     string          `json:"date"`
	StayRevenue              decimal.Decimal `json:"stay_revenue"`
	OrderRevenue             decimal.Decimal `json:"order_revenue"`
	ScheduledServicesRevenue decimal.Decimal `json:"scheduled_services_revenue"`
	TotalRevenue             decimal.Decimal `json:"total_revenue"`
}

func newLine(id string, kind Kind, charges, payments decimal.Decimal) Line {
	return Line{
		ID:            id,
		Type:          kind,
		TotalCharges:  charges,
		TotalPayments: payments,
		Balance:       charges.Sub(payments),
	}
}
