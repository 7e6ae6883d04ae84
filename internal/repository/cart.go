package repository

import (
	"context"
	"time"

	"cart-recovery-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AbandonedCartRepository interface {
	// Upsert creates or refreshes a cart by checkout token. Stage flags and
	// completion state are excluded from the update set so a late checkout
	// webhook never rewinds scheduler progress.
	Upsert(ctx context.Context, cart *model.AbandonedCart) error

	// Insert adds a cart only when the token is not taken yet; a concurrent
	// duplicate loses silently against the unique token index.
	Insert(ctx context.Context, cart *model.AbandonedCart) error

	ExistsByToken(ctx context.Context, token string) (bool, error)
	FindIncompleteWithPhone(ctx context.Context) ([]*model.AbandonedCart, error)
	FindAll(ctx context.Context, day *time.Time) ([]*model.AbandonedCart, error)

	// MarkCompleted flips is_completed once; already-completed or missing
	// carts report zero affected rows, not an error.
	MarkCompleted(ctx context.Context, token string, at time.Time) (int64, error)

	// MarkStageCalled sets the denormalized stage flag and timestamp. This
	// copy is a read optimization only; the call log stays authoritative.
	MarkStageCalled(ctx context.Context, cartID uint, stage model.CallStage, at time.Time) error
}

type abandonedCartRepoImpl struct {
	db *gorm.DB
}

func NewAbandonedCartRepository(db *gorm.DB) AbandonedCartRepository {
	return &abandonedCartRepoImpl{
		db: db,
	}
}

func (r *abandonedCartRepoImpl) Upsert(ctx context.Context, cart *model.AbandonedCart) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"checkout_id",
			"customer_phone",
			"customer_email",
			"customer_name",
			"total_price",
			"currency",
			"line_items",
			"abandoned_checkout_url",
			"updated_at",
		}),
	}).Create(cart).Error
}

func (r *abandonedCartRepoImpl) Insert(ctx context.Context, cart *model.AbandonedCart) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoNothing: true,
	}).Create(cart).Error
}

func (r *abandonedCartRepoImpl) ExistsByToken(ctx context.Context, token string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AbandonedCart{}).
		Where("token = ?", token).
		Count(&count).Error

	return count > 0, err
}

func (r *abandonedCartRepoImpl) FindIncompleteWithPhone(ctx context.Context) ([]*model.AbandonedCart, error) {
	var carts []*model.AbandonedCart
	err := r.db.WithContext(ctx).
		Where("is_completed = ? AND customer_phone <> ''", false).
		Find(&carts).Error

	if err != nil {
		return nil, err
	}

	return carts, nil
}

func (r *abandonedCartRepoImpl) FindAll(ctx context.Context, day *time.Time) ([]*model.AbandonedCart, error) {
	var carts []*model.AbandonedCart
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if day != nil {
		query = query.Where("created_at >= ? AND created_at < ?", *day, day.Add(24*time.Hour))
	}

	err := query.Find(&carts).Error
	if err != nil {
		return nil, err
	}

	return carts, nil
}

func (r *abandonedCartRepoImpl) MarkCompleted(ctx context.Context, token string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.AbandonedCart{}).
		Where("token = ? AND is_completed = ?", token, false).
		Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": at,
		})

	return result.RowsAffected, result.Error
}

func (r *abandonedCartRepoImpl) MarkStageCalled(ctx context.Context, cartID uint, stage model.CallStage, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.AbandonedCart{}).
		Where("id = ?", cartID).
		Updates(map[string]interface{}{
			stage.Column():     true,
			stage.TimeColumn(): at,
		}).Error
}
