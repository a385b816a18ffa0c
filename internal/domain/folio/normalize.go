package folio

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hotelfolio/internal/domain/amenity"
	"hotelfolio/internal/domain/pos"
	"hotelfolio/internal/domain/stay"
)

const (
	activityLayout      = "Jan 2, 2006"
	orderLabelIDSuffix  = 6
	orderDetailMaxItems = 2
	defaultServiceLabel = "Scheduled Service"
)

// Normalize projects a single record onto the common Line shape.
func Normalize(r Record) (Line, error) {
	switch r.Kind {
	case KindStay:
		if r.Stay == nil {
			return Line{}, ErrUnknownKind
		}
		return normalizeStay(r.Stay)
	case KindOrder:
		if r.Order == nil {
			return Line{}, ErrUnknownKind
		}
		return normalizeOrder(r.Order)
	case KindService:
		if r.Service == nil {
			return Line{}, ErrUnknownKind
		}
		return normalizeService(r.Service)
	default:
		return Line{}, fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind)
	}
}

// NormalizeAll merges the three collections into lines sorted most recent
// first. Records that cannot be normalized are skipped.
func NormalizeAll(stays []stay.Stay, orders []pos.Order, services []amenity.ScheduledService) []Line {
	records := Records(stays, orders, services)
	lines := make([]Line, 0, len(records))
	for _, r := range records {
		line, err := Normalize(r)
		if err != nil {
			continue
		}
		lines = append(lines, line)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].SortKey.After(lines[j].SortKey)
	})
	return lines
}

func normalizeStay(s *stay.Stay) (Line, error) {
	if strings.TrimSpace(s.ID) == "" {
		return Line{}, ErrMissingID
	}
	line := newLine(s.ID, KindStay, s.TotalAmount, s.PaidAmount)
	line.Label = s.GuestName
	line.Location = s.RoomNumber
	line.PeriodStart = s.CheckInDate
	line.PeriodEnd = s.CheckOutDate
	line.Status = string(s.Status)
	line.PaymentStatus = string(s.PaymentStatus)
	line.Detail = partySize(s.Adults, s.Children)

	switch {
	case s.CheckInDate != nil:
		line.SortKey = *s.CheckInDate
	case s.CheckOutDate != nil:
		line.SortKey = *s.CheckOutDate
	}
	line.LastActivity = formatActivity(line.SortKey)
	return line, nil
}

func normalizeOrder(o *pos.Order) (Line, error) {
	if strings.TrimSpace(o.ID) == "" {
		return Line{}, ErrMissingID
	}
	charge := o.Charge()
	payments := decimal.Zero
	if o.IsPaid() {
		payments = charge
	}

	line := newLine(o.ID, KindOrder, charge, payments)
	line.Label = "Order #" + lastChars(o.ID, orderLabelIDSuffix)
	line.Location = o.TableNumber
	if line.Location == "" {
		line.Location = o.RoomID
	}
	line.Status = string(o.Status)
	line.PaymentStatus = string(o.Status)
	line.Detail = itemSummary(o.Items)
	line.SortKey = o.CreatedAt
	line.LastActivity = formatActivity(o.CreatedAt)
	return line, nil
}

func normalizeService(s *amenity.ScheduledService) (Line, error) {
	if strings.TrimSpace(s.ID) == "" {
		return Line{}, ErrMissingID
	}
	line := newLine(s.ID, KindService, s.TotalAmount, s.PaidAmount())
	line.Label = s.Service.Name
	if strings.TrimSpace(line.Label) == "" {
		line.Label = defaultServiceLabel
	}
	line.Location = s.Service.Location
	line.PaymentStatus = string(s.PaymentStatus)
	// Only the payment side is surfaced at top level; the service lifecycle
	// status stays on the source record.
	line.Status = string(amenity.PaymentPending)
	if s.PaymentStatus == amenity.PaymentPaid {
		line.Status = string(amenity.PaymentPaid)
	}
	line.Detail = s.Service.Category
	if s.ScheduledAt != nil {
		line.PeriodStart = s.ScheduledAt
		line.SortKey = *s.ScheduledAt
	}
	line.LastActivity = formatActivity(line.SortKey)
	return line, nil
}

func itemSummary(items []pos.OrderItem) string {
	names := make([]string, 0, orderDetailMaxItems)
	for i, it := range items {
		if i == orderDetailMaxItems {
			break
		}
		names = append(names, it.Name)
	}
	summary := strings.Join(names, ", ")
	if extra := len(items) - orderDetailMaxItems; extra > 0 {
		summary += fmt.Sprintf(" +%d more", extra)
	}
	return summary
}

func partySize(adults, children int) string {
	if adults == 0 && children == 0 {
		return ""
	}
	out := plural(adults, "adult", "adults")
	if children > 0 {
		out += ", " + plural(children, "child", "children")
	}
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

func lastChars(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func formatActivity(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(activityLayout)
}
