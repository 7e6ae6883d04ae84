package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"cart-recovery-service/internal/model"
	"cart-recovery-service/internal/repository"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnknownTopic     = errors.New("unknown webhook topic")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// WebhookService audits, verifies and dispatches inbound platform
// webhooks. Every topic goes through signature verification; the audit
// write happens first and its failure never blocks processing.
type WebhookService interface {
	Handle(ctx context.Context, topic, signature string, body []byte) error
}

type webhookServiceImpl struct {
	webhookSecret   string
	recoveryService RecoveryService
	webhookCallRepo repository.WebhookCallRepository
}

func NewWebhookService(
	webhookSecret string,
	recoveryService RecoveryService,
	webhookCallRepo repository.WebhookCallRepository,
) WebhookService {
	return &webhookServiceImpl{
		webhookSecret:   webhookSecret,
		recoveryService: recoveryService,
		webhookCallRepo: webhookCallRepo,
	}
}

func (s *webhookServiceImpl) Handle(ctx context.Context, topic, signature string, body []byte) error {
	s.auditWebhook(ctx, topic, signature, body)

	if !s.verifySignature(body, signature) {
		return ErrInvalidSignature
	}

	switch topic {
	case "checkouts/create", "checkouts/update":
		var payload model.WebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("%w: decode checkout: %v", ErrMalformedPayload, err)
		}
		return s.recoveryService.ProcessCheckoutWebhook(ctx, &payload)

	case "orders/create", "orders/paid":
		var payload model.WebhookPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("%w: decode order: %v", ErrMalformedPayload, err)
		}
		return s.recoveryService.ProcessOrderWebhook(ctx, &payload, body)

	case "products/create", "products/update", "products/delete":
		var payload model.ProductPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("%w: decode product: %v", ErrMalformedPayload, err)
		}
		return s.recoveryService.ProcessProductWebhook(ctx, topic, &payload)

	case "carts/create", "carts/update":
		// legacy topics, audited only
		log.Printf("cart webhook %s recorded, no lifecycle action", topic)
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownTopic, topic)
}

// verifySignature recomputes base64(HMAC-SHA256(body)) with the shared
// secret and compares it to the header value in constant time.
func (s *webhookServiceImpl) verifySignature(body []byte, signature string) bool {
	if s.webhookSecret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// auditWebhook is fire and forget: a failed or unserializable audit write
// is logged and ingestion continues.
func (s *webhookServiceImpl) auditWebhook(ctx context.Context, topic, signature string, body []byte) {
	if topic == "" {
		topic = "unknown"
	}
	if !json.Valid(body) {
		log.Printf("skipping audit for %s webhook: body is not valid json", topic)
		return
	}

	headers, err := json.Marshal(map[string]string{
		"signature": signature,
		"topic":     topic,
	})
	if err != nil {
		headers = nil
	}

	err = s.webhookCallRepo.Create(ctx, &model.WebhookCall{
		Topic:   topic,
		Payload: body,
		Headers: headers,
	})
	if err != nil {
		log.Printf("failed to log webhook call: %v", err)
	}
}
