package stay

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, s *Stay) error
	GetByID(ctx context.Context, id string) (*Stay, error)
	ListByHotel(ctx context.Context, hotelID int64) ([]Stay, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Stay) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Stay, error) {
	var s Stay
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) ListByHotel(ctx context.Context, hotelID int64) ([]Stay, error) {
	var stays []Stay
	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("check_in_date DESC").
		Find(&stays).Error
	return stays, err
}
