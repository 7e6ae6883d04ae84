package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"cart-recovery-service/internal/dto"
	"cart-recovery-service/internal/extract"
	"cart-recovery-service/internal/model"
	"cart-recovery-service/internal/repository"

	"gorm.io/datatypes"
)

// ErrInvalidDate marks a stats request whose date filter is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date filter")

var checkoutTopics = []string{"checkouts/create", "checkouts/update"}

// RecoveryService tracks the cart lifecycle: it materializes abandoned
// carts from checkout webhooks, completes them from order webhooks,
// mirrors the catalog, backfills carts from the audit log and rolls up
// campaign stats.
type RecoveryService interface {
	ProcessCheckoutWebhook(ctx context.Context, payload *model.WebhookPayload) error
	ProcessOrderWebhook(ctx context.Context, payload *model.WebhookPayload, raw []byte) error
	ProcessProductWebhook(ctx context.Context, topic string, payload *model.ProductPayload) error
	ProcessAllWebhookCalls(ctx context.Context) error
	GetDailyStats(ctx context.Context, date string) (*dto.StatsResponse, error)
}

type recoveryServiceImpl struct {
	cartRepo        repository.AbandonedCartRepository
	callLogRepo     repository.CallLogRepository
	orderRepo       repository.OrderRepository
	productRepo     repository.ProductRepository
	webhookCallRepo repository.WebhookCallRepository
}

func NewRecoveryService(
	cartRepo repository.AbandonedCartRepository,
	callLogRepo repository.CallLogRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	webhookCallRepo repository.WebhookCallRepository,
) RecoveryService {
	return &recoveryServiceImpl{
		cartRepo:        cartRepo,
		callLogRepo:     callLogRepo,
		orderRepo:       orderRepo,
		productRepo:     productRepo,
		webhookCallRepo: webhookCallRepo,
	}
}

// ProcessCheckoutWebhook upserts an abandoned cart keyed by checkout token.
// Checkouts without a resolvable phone number are unreachable and skipped.
func (s *recoveryServiceImpl) ProcessCheckoutWebhook(ctx context.Context, payload *model.WebhookPayload) error {
	phone, ok := extract.PhoneNumber(payload)
	if !ok {
		log.Println("no phone number found in checkout, skipping cart recovery")
		return nil
	}
	if payload.Token == "" {
		log.Println("no token in checkout payload, skipping cart recovery")
		return nil
	}

	cart := cartFromPayload(payload, phone)
	if err := s.cartRepo.Upsert(ctx, cart); err != nil {
		return fmt.Errorf("upsert abandoned cart %s: %w", payload.Token, err)
	}

	log.Printf("saved abandoned cart %s with phone %s", payload.Token, phone)
	return nil
}

// ProcessOrderWebhook always saves the order, and independently marks the
// matching cart completed when the order carries a checkout token. The two
// writes are best effort against each other: one failing never rolls back
// the other.
func (s *recoveryServiceImpl) ProcessOrderWebhook(ctx context.Context, payload *model.WebhookPayload, raw []byte) error {
	phone, _ := extract.PhoneNumber(payload)
	order := &model.Order{
		OrderID:       payload.ID,
		CheckoutToken: payload.CheckoutToken,
		CustomerEmail: extract.Email(payload),
		CustomerPhone: phone,
		TotalPrice:    parsePrice(payload.TotalPrice),
		Currency:      currencyOrDefault(payload.Currency),
		Payload:       datatypes.JSON(raw),
		CreatedAt:     parseTimestamp(payload.CreatedAt),
	}

	var orderErr error
	if err := s.orderRepo.Upsert(ctx, order); err != nil {
		orderErr = fmt.Errorf("save order %d: %w", payload.ID, err)
		log.Printf("error saving order %d: %v", payload.ID, err)
	} else {
		log.Printf("saved order %d", payload.ID)
	}

	if payload.CheckoutToken == "" {
		log.Println("no checkout token in order, order saved but cart not marked as completed")
		return orderErr
	}

	affected, err := s.cartRepo.MarkCompleted(ctx, payload.CheckoutToken, time.Now())
	if err != nil {
		log.Printf("error marking cart %s as completed: %v", payload.CheckoutToken, err)
		if orderErr == nil {
			orderErr = fmt.Errorf("mark cart %s completed: %w", payload.CheckoutToken, err)
		}
		return orderErr
	}

	if affected == 0 {
		log.Printf("no incomplete cart found for token %s", payload.CheckoutToken)
	} else {
		log.Printf("marked cart %s as completed", payload.CheckoutToken)
	}
	return orderErr
}

// ProcessProductWebhook mirrors the catalog: upsert on create/update,
// hard delete on delete.
func (s *recoveryServiceImpl) ProcessProductWebhook(ctx context.Context, topic string, payload *model.ProductPayload) error {
	if topic == "products/delete" {
		if err := s.productRepo.Delete(ctx, payload.ID); err != nil {
			return fmt.Errorf("delete product %d: %w", payload.ID, err)
		}
		log.Printf("deleted product %d", payload.ID)
		return nil
	}

	product := productFromPayload(payload)
	if err := s.productRepo.Upsert(ctx, product); err != nil {
		return fmt.Errorf("save product %d: %w", payload.ID, err)
	}

	log.Printf("saved product %q", payload.Title)
	return nil
}

// ProcessAllWebhookCalls replays the raw checkout audit records and
// materializes any cart the live path missed. Existing carts are never
// touched, so the pass is safe to repeat and to run alongside live
// ingestion; a duplicate-insert race resolves on the unique token index.
func (s *recoveryServiceImpl) ProcessAllWebhookCalls(ctx context.Context) error {
	webhooks, err := s.webhookCallRepo.FindByTopics(ctx, checkoutTopics)
	if err != nil {
		return fmt.Errorf("load checkout webhooks: %w", err)
	}

	processed := 0
	for _, webhook := range webhooks {
		var payload model.WebhookPayload
		if err := json.Unmarshal(webhook.Payload, &payload); err != nil {
			log.Printf("skipping malformed webhook payload %d: %v", webhook.ID, err)
			continue
		}

		phone, ok := extract.PhoneNumber(&payload)
		if !ok || payload.Token == "" {
			continue
		}

		exists, err := s.cartRepo.ExistsByToken(ctx, payload.Token)
		if err != nil {
			return fmt.Errorf("check cart %s: %w", payload.Token, err)
		}
		if exists {
			continue
		}

		cart := cartFromPayload(&payload, phone)
		if cart.CreatedAt.IsZero() {
			cart.CreatedAt = webhook.CreatedAt
		}
		if err := s.cartRepo.Insert(ctx, cart); err != nil {
			return fmt.Errorf("insert cart %s: %w", payload.Token, err)
		}

		log.Printf("processed existing webhook for cart %s", payload.Token)
		processed++
	}

	log.Printf("backfill finished, %d carts created from %d webhooks", processed, len(webhooks))
	return nil
}

// GetDailyStats loads carts and call logs, optionally restricted to one
// creation day, and counts totals in memory.
func (s *recoveryServiceImpl) GetDailyStats(ctx context.Context, date string) (*dto.StatsResponse, error) {
	var day *time.Time
	if date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
		day = &parsed
	}

	carts, err := s.cartRepo.FindAll(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load abandoned carts: %w", err)
	}
	callLogs, err := s.callLogRepo.FindAll(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load call logs: %w", err)
	}

	stats := &dto.StatsResponse{
		TotalAbandoned: len(carts),
		TotalCalls:     len(callLogs),
		Carts:          carts,
		Calls:          callLogs,
	}
	for _, cart := range carts {
		if cart.IsCompleted {
			stats.TotalCompleted++
		}
	}
	for _, callLog := range callLogs {
		if callLog.Success {
			stats.SuccessfulCalls++
		}
	}

	return stats, nil
}

func cartFromPayload(payload *model.WebhookPayload, phone string) *model.AbandonedCart {
	lineItems, err := json.Marshal(payload.LineItems)
	if err != nil {
		lineItems = []byte("[]")
	}

	return &model.AbandonedCart{
		CheckoutID:           payload.ID,
		Token:                payload.Token,
		CustomerPhone:        phone,
		CustomerEmail:        extract.Email(payload),
		CustomerName:         extract.CustomerName(payload),
		TotalPrice:           parsePrice(payload.TotalPrice),
		Currency:             currencyOrDefault(payload.Currency),
		LineItems:            lineItems,
		AbandonedCheckoutURL: payload.AbandonedCheckoutURL,
		CreatedAt:            parseTimestamp(payload.CreatedAt),
	}
}

func productFromPayload(payload *model.ProductPayload) *model.Product {
	images, err := json.Marshal(payload.Images)
	if err != nil {
		images = []byte("[]")
	}
	variants, err := json.Marshal(payload.Variants)
	if err != nil {
		variants = []byte("[]")
	}

	price := "0"
	if len(payload.Variants) > 0 && payload.Variants[0].Price != "" {
		price = payload.Variants[0].Price
	}

	return &model.Product{
		ProductID:   payload.ID,
		Title:       payload.Title,
		Handle:      payload.Handle,
		Description: payload.BodyHTML,
		Vendor:      payload.Vendor,
		ProductType: payload.ProductType,
		Tags:        payload.Tags,
		Status:      payload.Status,
		Price:       price,
		Images:      images,
		Variants:    variants,
		CreatedAt:   parseTimestamp(payload.CreatedAt),
	}
}

func parsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return price
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "USD"
	}
	return currency
}

// parseTimestamp returns the zero time on failure; gorm then fills
// created_at with the insert time.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
