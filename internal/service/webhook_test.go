package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"cart-recovery-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "shhh"

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newWebhookService(f *fixture) WebhookService {
	return NewWebhookService(testSecret, f.recovery, f.webhookCallRepo)
}

func TestWebhook_ValidSignatureProcessesCheckout(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)

	body := []byte(`{"id":1,"token":"abc","phone":"+15551234567","line_items":[{"title":"Shoes"}]}`)

	err := svc.Handle(context.Background(), "checkouts/create", sign(testSecret, body), body)

	require.NoError(t, err)
	cart := f.cartByToken(t, "abc")
	assert.Equal(t, "+15551234567", cart.CustomerPhone)

	// the raw delivery is audited too
	var audits []model.WebhookCall
	require.NoError(t, f.db.Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, "checkouts/create", audits[0].Topic)
}

func TestWebhook_InvalidSignatureRejected(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)

	body := []byte(`{"id":1,"token":"abc","phone":"+15551234567"}`)

	err := svc.Handle(context.Background(), "checkouts/create", "bogus", body)

	assert.ErrorIs(t, err, ErrInvalidSignature)

	var count int64
	require.NoError(t, f.db.Model(&model.AbandonedCart{}).Count(&count).Error)
	assert.Zero(t, count)

	// rejected deliveries still land in the audit log
	require.NoError(t, f.db.Model(&model.WebhookCall{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWebhook_MissingSignatureRejected(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)

	err := svc.Handle(context.Background(), "checkouts/create", "", []byte(`{}`))

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWebhook_OrderTopicRequiresSignature(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)

	body := []byte(`{"id":99,"checkout_token":"abc"}`)

	err := svc.Handle(context.Background(), "orders/create", "bogus", body)

	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWebhook_OrderTopicDispatches(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)
	ctx := context.Background()

	checkout := []byte(`{"id":1,"token":"abc","phone":"+15551234567"}`)
	require.NoError(t, svc.Handle(ctx, "checkouts/create", sign(testSecret, checkout), checkout))

	order := []byte(`{"id":99,"checkout_token":"abc"}`)
	require.NoError(t, svc.Handle(ctx, "orders/paid", sign(testSecret, order), order))

	cart := f.cartByToken(t, "abc")
	assert.True(t, cart.IsCompleted)
}

func TestWebhook_UnknownTopicRejected(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)

	body := []byte(`{}`)

	err := svc.Handle(context.Background(), "refunds/create", sign(testSecret, body), body)

	assert.ErrorIs(t, err, ErrUnknownTopic)
}

func TestWebhook_MalformedPayloadRejected(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)

	body := []byte(`{"id":`)

	err := svc.Handle(context.Background(), "checkouts/create", sign(testSecret, body), body)

	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestWebhook_LegacyCartTopicAuditedOnly(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)

	body := []byte(`{"id":1,"token":"abc"}`)

	require.NoError(t, svc.Handle(context.Background(), "carts/update", sign(testSecret, body), body))

	var count int64
	require.NoError(t, f.db.Model(&model.AbandonedCart{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&model.WebhookCall{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWebhook_AuditFailureDoesNotBlockIngestion(t *testing.T) {
	f := newFixture(t)
	svc := NewWebhookService(testSecret, f.recovery, &failingWebhookCallRepo{})

	body := []byte(`{"id":1,"token":"abc","phone":"+15551234567"}`)

	err := svc.Handle(context.Background(), "checkouts/create", sign(testSecret, body), body)

	require.NoError(t, err)
	cart := f.cartByToken(t, "abc")
	assert.Equal(t, "abc", cart.Token)
}

func TestWebhook_ProductTopicsDispatch(t *testing.T) {
	f := newFixture(t)
	svc := newWebhookService(f)
	ctx := context.Background()

	create := []byte(`{"id":5,"title":"Shoes","status":"active","variants":[{"id":1,"price":"49.99"}]}`)
	require.NoError(t, svc.Handle(ctx, "products/create", sign(testSecret, create), create))

	titles, err := f.productRepo.ListActiveTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shoes"}, titles)

	del := []byte(`{"id":5}`)
	require.NoError(t, svc.Handle(ctx, "products/delete", sign(testSecret, del), del))

	titles, err = f.productRepo.ListActiveTitles(ctx)
	require.NoError(t, err)
	assert.Empty(t, titles)
}
