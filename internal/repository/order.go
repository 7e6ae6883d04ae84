package repository

import (
	"context"

	"cart-recovery-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	// Upsert saves the order by its platform id; replays of the same order
	// webhook overwrite the row instead of erroring.
	Upsert(ctx context.Context, order *model.Order) error
	FindByOrderID(ctx context.Context, orderID int64) (*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Upsert(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		UpdateAll: true,
	}).Create(order).Error
}

func (r *orderRepoImpl) FindByOrderID(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}
