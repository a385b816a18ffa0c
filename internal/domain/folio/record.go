package folio

import (
	"hotelfolio/internal/domain/amenity"
	"hotelfolio/internal/domain/pos"
	"hotelfolio/internal/domain/stay"
)

// Kind discriminates the source record behind a folio line.
type Kind string

const (
	KindStay    Kind = "stay"
	KindOrder   Kind = "order"
	KindService Kind = "service"
)

// Record is a tagged union over the three financial record types. Exactly one
// of Stay, Order or Service is set, matching Kind.
type Record struct {
	Kind    Kind
	Stay    *stay.Stay
	Order   *pos.Order
	Service *amenity.ScheduledService
}

func FromStay(s *stay.Stay) Record {
	return Record{Kind: KindStay, Stay: s}
}

func FromOrder(o *pos.Order) Record {
	return Record{Kind: KindOrder, Order: o}
}

func FromService(s *amenity.ScheduledService) Record {
	return Record{Kind: KindService, Service: s}
}

// Records wraps the three collections in a single slice, stays first.
func Records(stays []stay.Stay, orders []pos.Order, services []amenity.ScheduledService) []Record {
	out := make([]Record, 0, len(stays)+len(orders)+len(services))
	for i := range stays {
		out = append(out, FromStay(&stays[i]))
	}
	for i := range orders {
		out = append(out, FromOrder(&orders[i]))
	}
	for i := range services {
		out = append(out, FromService(&services[i]))
	}
	return out
}
