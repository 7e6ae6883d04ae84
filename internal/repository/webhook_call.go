package repository

import (
	"context"

	"cart-recovery-service/internal/model"

	"gorm.io/gorm"
)

// WebhookCallRepository is the append-only audit log of raw inbound
// webhooks. Writes are best effort; callers swallow and log failures.
type WebhookCallRepository interface {
	Create(ctx context.Context, call *model.WebhookCall) error
	FindByTopics(ctx context.Context, topics []string) ([]*model.WebhookCall, error)
}

type webhookCallRepoImpl struct {
	db *gorm.DB
}

func NewWebhookCallRepository(db *gorm.DB) WebhookCallRepository {
	return &webhookCallRepoImpl{
		db: db,
	}
}

func (r *webhookCallRepoImpl) Create(ctx context.Context, call *model.WebhookCall) error {
	return r.db.WithContext(ctx).Create(call).Error
}

func (r *webhookCallRepoImpl) FindByTopics(ctx context.Context, topics []string) ([]*model.WebhookCall, error) {
	var calls []*model.WebhookCall
	err := r.db.WithContext(ctx).
		Where("topic IN ?", topics).
		Find(&calls).Error

	if err != nil {
		return nil, err
	}

	return calls, nil
}
