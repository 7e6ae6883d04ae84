package repository

import (
	"context"
	"time"

	"cart-recovery-service/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CallLogRepository interface {
	FindByCartID(ctx context.Context, cartID uint) (*model.CallLog, error)

	// CreateIfAbsent inserts a zero-valued log; the unique index on
	// abandoned_cart_id makes the creation idempotent under concurrent
	// scheduler passes.
	CreateIfAbsent(ctx context.Context, callLog *model.CallLog) error

	// MarkStageSent flips the stage counter only if it is still unset and
	// stores the raw provider response. sent is false when a concurrent
	// pass already recorded the stage.
	MarkStageSent(ctx context.Context, logID uint, stage model.CallStage, response datatypes.JSON, success bool) (sent bool, err error)

	FindAll(ctx context.Context, day *time.Time) ([]*model.CallLog, error)
}

type callLogRepoImpl struct {
	db *gorm.DB
}

func NewCallLogRepository(db *gorm.DB) CallLogRepository {
	return &callLogRepoImpl{
		db: db,
	}
}

func (r *callLogRepoImpl) FindByCartID(ctx context.Context, cartID uint) (*model.CallLog, error) {
	var callLog model.CallLog
	err := r.db.WithContext(ctx).
		Where("abandoned_cart_id = ?", cartID).
		First(&callLog).Error

	if err != nil {
		return nil, err
	}

	return &callLog, nil
}

func (r *callLogRepoImpl) CreateIfAbsent(ctx context.Context, callLog *model.CallLog) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "abandoned_cart_id"}},
		DoNothing: true,
	}).Create(callLog).Error
}

func (r *callLogRepoImpl) MarkStageSent(ctx context.Context, logID uint, stage model.CallStage, response datatypes.JSON, success bool) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.CallLog{}).
		Where("id = ? AND "+stage.Column()+" = 0", logID).
		Updates(map[string]interface{}{
			stage.Column():  1,
			"vapi_response": response,
			"success":       success,
			"updated_at":    time.Now(),
		})

	return result.RowsAffected > 0, result.Error
}

func (r *callLogRepoImpl) FindAll(ctx context.Context, day *time.Time) ([]*model.CallLog, error) {
	var callLogs []*model.CallLog
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if day != nil {
		query = query.Where("created_at >= ? AND created_at < ?", *day, day.Add(24*time.Hour))
	}

	err := query.Find(&callLogs).Error
	if err != nil {
		return nil, err
	}

	return callLogs, nil
}
