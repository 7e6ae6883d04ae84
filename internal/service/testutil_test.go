package service

import (
	"context"
	"errors"
	"testing"

	"cart-recovery-service/internal/client"
	"cart-recovery-service/internal/model"
	"cart-recovery-service/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.AbandonedCart{},
		&model.CallLog{},
		&model.Order{},
		&model.Product{},
		&model.WebhookCall{},
	))
	return db
}

// fakeVapiClient records every placement request and answers with a
// configurable result.
type fakeVapiClient struct {
	result *client.CallResult
	calls  []*client.CallRequest
}

func (f *fakeVapiClient) MakeCall(ctx context.Context, req *client.CallRequest) *client.CallResult {
	f.calls = append(f.calls, req)
	if f.result != nil {
		return f.result
	}
	return &client.CallResult{Success: true, CallID: "call-1"}
}

// failingWebhookCallRepo simulates an unavailable audit store.
type failingWebhookCallRepo struct{}

func (f *failingWebhookCallRepo) Create(ctx context.Context, call *model.WebhookCall) error {
	return errors.New("audit store down")
}

func (f *failingWebhookCallRepo) FindByTopics(ctx context.Context, topics []string) ([]*model.WebhookCall, error) {
	return nil, errors.New("audit store down")
}

type fixture struct {
	db              *gorm.DB
	cartRepo        repository.AbandonedCartRepository
	callLogRepo     repository.CallLogRepository
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	webhookCallRepo repository.WebhookCallRepository
	vapi            *fakeVapiClient
	recovery        RecoveryService
	scheduler       SchedulerService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	f := &fixture{
		db:              db,
		cartRepo:        repository.NewAbandonedCartRepository(db),
		callLogRepo:     repository.NewCallLogRepository(db),
		orderRepo:       repository.NewOrderRepository(db),
		productRepo:     repository.NewProductRepository(db),
		webhookCallRepo: repository.NewWebhookCallRepository(db),
		vapi:            &fakeVapiClient{},
	}
	f.recovery = NewRecoveryService(f.cartRepo, f.callLogRepo, f.orderRepo, f.productRepo, f.webhookCallRepo)
	f.scheduler = NewSchedulerService(f.cartRepo, f.callLogRepo, f.productRepo, f.vapi, nil)
	return f
}

func (f *fixture) cartByToken(t *testing.T, token string) *model.AbandonedCart {
	t.Helper()

	var cart model.AbandonedCart
	require.NoError(t, f.db.Where("token = ?", token).First(&cart).Error)
	return &cart
}

func (f *fixture) callLogForCart(t *testing.T, cartID uint) *model.CallLog {
	t.Helper()

	var callLog model.CallLog
	require.NoError(t, f.db.Where("abandoned_cart_id = ?", cartID).First(&callLog).Error)
	return &callLog
}
