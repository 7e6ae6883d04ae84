package service

import (
	"context"
	"testing"
	"time"

	"cart-recovery-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCheckoutWebhook_CreatesCart(t *testing.T) {
	f := newFixture(t)

	payload := &model.WebhookPayload{
		ID:        1,
		Token:     "abc",
		Phone:     "+15551234567",
		LineItems: []model.LineItem{{Title: "Shoes"}},
	}

	require.NoError(t, f.recovery.ProcessCheckoutWebhook(context.Background(), payload))

	cart := f.cartByToken(t, "abc")
	assert.Equal(t, int64(1), cart.CheckoutID)
	assert.Equal(t, "+15551234567", cart.CustomerPhone)
	assert.Equal(t, "Customer", cart.CustomerName)
	assert.Equal(t, "USD", cart.Currency)
	assert.False(t, cart.IsCompleted)
}

func TestProcessCheckoutWebhook_NoPhoneIsNoOp(t *testing.T) {
	f := newFixture(t)

	payload := &model.WebhookPayload{ID: 1, Token: "abc"}

	require.NoError(t, f.recovery.ProcessCheckoutWebhook(context.Background(), payload))

	var count int64
	require.NoError(t, f.db.Model(&model.AbandonedCart{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProcessCheckoutWebhook_RepeatedIngestIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := &model.WebhookPayload{ID: 1, Token: "abc", Phone: "+15551234567", TotalPrice: "10.00"}
	update := &model.WebhookPayload{ID: 1, Token: "abc", Phone: "+15551234567", TotalPrice: "25.50"}

	require.NoError(t, f.recovery.ProcessCheckoutWebhook(ctx, first))
	require.NoError(t, f.recovery.ProcessCheckoutWebhook(ctx, update))

	var count int64
	require.NoError(t, f.db.Model(&model.AbandonedCart{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	cart := f.cartByToken(t, "abc")
	assert.Equal(t, 25.50, cart.TotalPrice)
}

func TestProcessOrderWebhook_SavesOrderAndCompletesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checkout := &model.WebhookPayload{ID: 1, Token: "abc", Phone: "+15551234567"}
	require.NoError(t, f.recovery.ProcessCheckoutWebhook(ctx, checkout))

	order := &model.WebhookPayload{ID: 99, CheckoutToken: "abc"}
	raw := []byte(`{"id":99,"checkout_token":"abc"}`)
	require.NoError(t, f.recovery.ProcessOrderWebhook(ctx, order, raw))

	saved, err := f.orderRepo.FindByOrderID(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, "abc", saved.CheckoutToken)

	cart := f.cartByToken(t, "abc")
	assert.True(t, cart.IsCompleted)
	require.NotNil(t, cart.CompletedAt)
	completedAt := *cart.CompletedAt

	// replaying the same order webhook neither errors nor moves the
	// completion timestamp
	require.NoError(t, f.recovery.ProcessOrderWebhook(ctx, order, raw))

	cart = f.cartByToken(t, "abc")
	assert.True(t, cart.IsCompleted)
	assert.Equal(t, completedAt, *cart.CompletedAt)
}

func TestProcessOrderWebhook_NoCheckoutToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := &model.WebhookPayload{ID: 99}
	require.NoError(t, f.recovery.ProcessOrderWebhook(ctx, order, []byte(`{"id":99}`)))

	saved, err := f.orderRepo.FindByOrderID(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(99), saved.OrderID)
}

func TestProcessOrderWebhook_UnknownTokenTolerated(t *testing.T) {
	f := newFixture(t)

	order := &model.WebhookPayload{ID: 99, CheckoutToken: "never-seen"}

	require.NoError(t, f.recovery.ProcessOrderWebhook(context.Background(), order, []byte(`{"id":99,"checkout_token":"never-seen"}`)))
}

func TestProcessProductWebhook_UpsertAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payload := &model.ProductPayload{
		ID:       5,
		Title:    "Shoes",
		Status:   "active",
		Variants: []model.ProductVariant{{ID: 1, Price: "49.99"}},
	}
	require.NoError(t, f.recovery.ProcessProductWebhook(ctx, "products/create", payload))

	titles, err := f.productRepo.ListActiveTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shoes"}, titles)

	var product model.Product
	require.NoError(t, f.db.Where("product_id = ?", 5).First(&product).Error)
	assert.Equal(t, "49.99", product.Price)

	require.NoError(t, f.recovery.ProcessProductWebhook(ctx, "products/delete", &model.ProductPayload{ID: 5}))

	titles, err = f.productRepo.ListActiveTitles(ctx)
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestProcessAllWebhookCalls_BackfillsMissingCarts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// cart the live path already materialized
	require.NoError(t, f.recovery.ProcessCheckoutWebhook(ctx, &model.WebhookPayload{ID: 1, Token: "known", Phone: "+1551"}))

	seedAudit := func(topic, payload string) {
		require.NoError(t, f.webhookCallRepo.Create(ctx, &model.WebhookCall{Topic: topic, Payload: []byte(payload)}))
	}
	seedAudit("checkouts/create", `{"id":1,"token":"known","phone":"+1551"}`)
	seedAudit("checkouts/create", `{"id":2,"token":"missed","phone":"+1552"}`)
	seedAudit("checkouts/update", `{"id":3,"token":"no-phone"}`)
	seedAudit("checkouts/update", `{"id":4,"phone":"+1554"}`)
	seedAudit("orders/create", `{"id":99,"checkout_token":"known"}`)

	require.NoError(t, f.recovery.ProcessAllWebhookCalls(ctx))

	var count int64
	require.NoError(t, f.db.Model(&model.AbandonedCart{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	cart := f.cartByToken(t, "missed")
	assert.Equal(t, "+1552", cart.CustomerPhone)

	// the pass is idempotent
	require.NoError(t, f.recovery.ProcessAllWebhookCalls(ctx))
	require.NoError(t, f.db.Model(&model.AbandonedCart{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestProcessAllWebhookCalls_SkipsMalformedPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.webhookCallRepo.Create(ctx, &model.WebhookCall{Topic: "checkouts/create", Payload: []byte(`{`)}))
	require.NoError(t, f.webhookCallRepo.Create(ctx, &model.WebhookCall{Topic: "checkouts/create", Payload: []byte(`{"id":2,"token":"good","phone":"+1552"}`)}))

	require.NoError(t, f.recovery.ProcessAllWebhookCalls(ctx))

	var count int64
	require.NoError(t, f.db.Model(&model.AbandonedCart{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetDailyStats_Counts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.recovery.ProcessCheckoutWebhook(ctx, &model.WebhookPayload{ID: 1, Token: "a", Phone: "+1551"}))
	require.NoError(t, f.recovery.ProcessCheckoutWebhook(ctx, &model.WebhookPayload{ID: 2, Token: "b", Phone: "+1552"}))
	require.NoError(t, f.recovery.ProcessOrderWebhook(ctx, &model.WebhookPayload{ID: 99, CheckoutToken: "a"}, []byte(`{"id":99,"checkout_token":"a"}`)))

	require.NoError(t, f.scheduler.ProcessScheduledCalls(ctx))

	stats, err := f.recovery.GetDailyStats(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalAbandoned)
	assert.Equal(t, 1, stats.TotalCompleted)
	assert.Equal(t, 1, stats.TotalCalls)
	assert.Equal(t, 1, stats.SuccessfulCalls)
	assert.Len(t, stats.Carts, 2)
	assert.Len(t, stats.Calls, 1)
}

func TestGetDailyStats_DateFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := &model.AbandonedCart{Token: "old", CustomerPhone: "+1551", CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)}
	recent := &model.AbandonedCart{Token: "recent", CustomerPhone: "+1552", CreatedAt: time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, f.cartRepo.Insert(ctx, old))
	require.NoError(t, f.cartRepo.Insert(ctx, recent))

	stats, err := f.recovery.GetDailyStats(ctx, "2026-08-29")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalAbandoned)
	require.Len(t, stats.Carts, 1)
	assert.Equal(t, "recent", stats.Carts[0].Token)
}

func TestGetDailyStats_InvalidDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.recovery.GetDailyStats(context.Background(), "29-08-2026")

	assert.ErrorIs(t, err, ErrInvalidDate)
}
