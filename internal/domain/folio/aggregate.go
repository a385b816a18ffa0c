package folio

import (
	"time"

	"github.com/shopspring/decimal"

	"hotelfolio/internal/domain/amenity"
	"hotelfolio/internal/domain/pos"
	"hotelfolio/internal/domain/stay"
)

type Input struct {
	Stays         []stay.Stay
	Orders        []pos.Order
	Services      []amenity.ScheduledService
	ReferenceDate time.Time
	Search        string
	Policy        RevenuePolicy
}

// View is everything the folio dashboard needs for one hotel and day.
// Stats always covers the full ledger; Visible and VisibleStats reflect Search.
type View struct {
	Lines        []Line          `json:"-"`
	Visible      []Line          `json:"lines"`
	Stats        Stats           `json:"stats"`
	VisibleStats Stats           `json:"visible_stats"`
	Revenue      RevenueSnapshot `json:"revenue"`
}

// Aggregate normalizes, summarizes and classifies the given records. It reads
// nothing but its input and may be called concurrently.
func Aggregate(in Input) View {
	lines := NormalizeAll(in.Stays, in.Orders, in.Services)
	visible := Filter(lines, in.Search)
	return View{
		Lines:        lines,
		Visible:      visible,
		Stats:        Summarize(lines),
		VisibleStats: Summarize(visible),
		Revenue:      Revenue(in.Stays, in.Orders, in.Services, in.ReferenceDate, in.Policy),
	}
}

func Summarize(lines []Line) Stats {
	stats := Stats{
		TotalFolios:      len(lines),
		TotalOutstanding: decimal.Zero,
		TotalCharges:     decimal.Zero,
	}
	for i := range lines {
		l := &lines[i]
		if IsOpen(l) {
			stats.OpenFolios++
		}
		if l.Balance.IsPositive() {
			stats.TotalOutstanding = stats.TotalOutstanding.Add(l.Balance)
		}
		stats.TotalCharges = stats.TotalCharges.Add(l.TotalCharges)
	}
	return stats
}

// IsOpen applies the per-type open/closed policy to a line.
func IsOpen(l *Line) bool {
	switch l.Type {
	case KindStay:
		switch stay.Status(l.Status) {
		case stay.StatusCheckedIn, stay.StatusConfirmed:
			return true
		}
		return l.Balance.IsPositive()
	case KindOrder:
		s := pos.Status(l.Status)
		return s != pos.StatusPaid && s != pos.StatusCancelled
	case KindService:
		s := amenity.PaymentStatus(l.PaymentStatus)
		return s != amenity.PaymentPaid && s != amenity.PaymentCancelled
	default:
		return l.Balance.IsPositive()
	}
}
