package pos

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	ListByHotel(ctx context.Context, hotelID int64) ([]Order, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) ListByHotel(ctx context.Context, hotelID int64) ([]Order, error) {
	var orders []Order
	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
