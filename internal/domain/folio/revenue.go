package folio

import (
	"time"

	"github.com/shopspring/decimal"

	"hotelfolio/internal/domain/amenity"
	"hotelfolio/internal/domain/pos"
	"hotelfolio/internal/domain/stay"
)

const dateLayout = "2006-01-02"

// RevenuePolicy toggles the optional same-day window for orders. The zero value
// counts every paid order regardless of when it was created.
type RevenuePolicy struct {
	OrderSameDay bool
}

// Revenue classifies the loaded records against the reference day. Stays need
// a paid booking that covers today, orders only need to be paid, and services
// count while paid or still pending.
func Revenue(stays []stay.Stay, orders []pos.Order, services []amenity.ScheduledService, today time.Time, policy RevenuePolicy) RevenueSnapshot {
	day := midnight(today, today.Location())

	snap := RevenueSnapshot{
		Date:                     day.Format(dateLayout),
		StayRevenue:              decimal.Zero,
		OrderRevenue:             decimal.Zero,
		ScheduledServicesRevenue: decimal.Zero,
	}
	for i := range stays {
		snap.StayRevenue = snap.StayRevenue.Add(StayRevenue(&stays[i], day))
	}
	for i := range orders {
		snap.OrderRevenue = snap.OrderRevenue.Add(OrderRevenue(&orders[i], day, policy))
	}
	for i := range services {
		snap.ScheduledServicesRevenue = snap.ScheduledServicesRevenue.Add(ServiceRevenue(&services[i]))
	}
	snap.TotalRevenue = snap.StayRevenue.Add(snap.OrderRevenue).Add(snap.ScheduledServicesRevenue)
	return snap
}

// StayRevenue returns the stay's total when it is paid and today falls inside
// [check-in, check-out] at day granularity, zero otherwise.
func StayRevenue(s *stay.Stay, today time.Time) decimal.Decimal {
	if s == nil || s.CheckInDate == nil || s.CheckOutDate == nil {
		return decimal.Zero
	}
	if s.CheckInDate.IsZero() || s.CheckOutDate.IsZero() {
		return decimal.Zero
	}
	loc := today.Location()
	day := midnight(today, loc)
	in := midnight(*s.CheckInDate, loc)
	out := midnight(*s.CheckOutDate, loc)

	if day.Before(in) || day.After(out) {
		return decimal.Zero
	}
	if s.PaymentStatus != stay.PaymentPaid {
		return decimal.Zero
	}
	return s.TotalAmount
}

// OrderRevenue returns the discounted charge of a paid order. No date window
// applies unless the policy asks for one.
func OrderRevenue(o *pos.Order, today time.Time, policy RevenuePolicy) decimal.Decimal {
	if o == nil || !o.IsPaid() {
		return decimal.Zero
	}
	if policy.OrderSameDay {
		if o.CreatedAt.IsZero() {
			return decimal.Zero
		}
		loc := today.Location()
		if !midnight(o.CreatedAt, loc).Equal(midnight(today, loc)) {
			return decimal.Zero
		}
	}
	return o.Charge()
}

// ServiceRevenue counts booked services whether paid or pending.
func ServiceRevenue(s *amenity.ScheduledService) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	switch s.PaymentStatus {
	case amenity.PaymentPaid, amenity.PaymentPending:
		return s.TotalAmount
	default:
		return decimal.Zero
	}
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD reference day in loc. An empty value means today.
func ParseDate(value string, now time.Time, loc *time.Location) (time.Time, error) {
	if value == "" {
		return midnight(now, loc), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
