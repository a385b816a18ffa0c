package amenity

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, s *ScheduledService) error
	ListByHotel(ctx context.Context, hotelID int64) ([]ScheduledService, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *ScheduledService) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) ListByHotel(ctx context.Context, hotelID int64) ([]ScheduledService, error) {
	var services []ScheduledService
	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("scheduled_at DESC").
		Find(&services).Error
	return services, err
}
