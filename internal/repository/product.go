package repository

import (
	"context"

	"cart-recovery-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Upsert(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, productID int64) error
	// ListActiveTitles returns the titles of active catalog entries, used
	// as supplementary context for recovery calls.
	ListActiveTitles(ctx context.Context) ([]string, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Upsert(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		UpdateAll: true,
	}).Create(product).Error
}

func (r *productRepoImpl) Delete(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&model.Product{}).Error
}

func (r *productRepoImpl) ListActiveTitles(ctx context.Context) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("status = ?", "active").
		Pluck("title", &titles).Error

	if err != nil {
		return nil, err
	}

	return titles, nil
}
