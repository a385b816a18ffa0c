package folio

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hotelfolio/internal/domain/amenity"
	"hotelfolio/internal/domain/pos"
	"hotelfolio/internal/domain/stay"
	"hotelfolio/internal/pkg/logger"
	"hotelfolio/internal/pkg/metrics"
)

type stayLister interface {
	ListByHotel(ctx context.Context, hotelID int64) ([]stay.Stay, error)
}

type orderLister interface {
	ListByHotel(ctx context.Context, hotelID int64) ([]pos.Order, error)
}

type serviceLister interface {
	ListByHotel(ctx context.Context, hotelID int64) ([]amenity.ScheduledService, error)
}

// Service loads one hotel's records and hands them to Aggregate.
type Service struct {
	stays    stayLister
	orders   orderLister
	services serviceLister
	policy   RevenuePolicy
	log      *zap.Logger
}

func NewService(stays stayLister, orders orderLister, services serviceLister, policy RevenuePolicy, log *zap.Logger) *Service {
	return &Service{
		stays:    stays,
		orders:   orders,
		services: services,
		policy:   policy,
		log:      logger.OrNop(log),
	}
}

func (s *Service) Build(ctx context.Context, hotelID int64, q Query) (*View, error) {
	start := time.Now()
	defer func() { metrics.FolioBuildDuration.Observe(time.Since(start).Seconds()) }()

	stays, err := s.stays.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("load stays: %w", err)
	}
	orders, err := s.orders.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	services, err := s.services.ListByHotel(ctx, hotelID)
	if err != nil {
		return nil, fmt.Errorf("load scheduled services: %w", err)
	}

	view := Aggregate(Input{
		Stays:         stays,
		Orders:        orders,
		Services:      services,
		ReferenceDate: q.Date,
		Search:        q.Search,
		Policy:        s.policy,
	})

	if skipped := len(stays) + len(orders) + len(services) - len(view.Lines); skipped > 0 {
		s.log.Warn("skipped malformed folio records",
			zap.Int64("hotel_id", hotelID),
			zap.Int("skipped", skipped),
		)
	}
	return &view, nil
}
