package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cart-recovery-service/internal/client"
	"cart-recovery-service/internal/extract"
	"cart-recovery-service/internal/model"
	"cart-recovery-service/internal/repository"
	"cart-recovery-service/pkg/redislock"

	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const passLockTTL = 5 * time.Minute

// SchedulerService drives the multi-stage recovery-call campaign. Each
// invocation is one pass: for every incomplete cart with a phone number it
// attempts the first unsent stage and records the outcome. Stage state is
// read exclusively from the call log, never from the cart's denormalized
// flags.
type SchedulerService interface {
	ProcessScheduledCalls(ctx context.Context) error
}

type schedulerServiceImpl struct {
	cartRepo    repository.AbandonedCartRepository
	callLogRepo repository.CallLogRepository
	productRepo repository.ProductRepository
	vapiClient  client.VapiClient
	rdb         *rd.Client // nil disables the pass lock
}

func NewSchedulerService(
	cartRepo repository.AbandonedCartRepository,
	callLogRepo repository.CallLogRepository,
	productRepo repository.ProductRepository,
	vapiClient client.VapiClient,
	rdb *rd.Client,
) SchedulerService {
	return &schedulerServiceImpl{
		cartRepo:    cartRepo,
		callLogRepo: callLogRepo,
		productRepo: productRepo,
		vapiClient:  vapiClient,
		rdb:         rdb,
	}
}

func (s *schedulerServiceImpl) ProcessScheduledCalls(ctx context.Context) error {
	if s.rdb != nil {
		token := uuid.NewString()
		acquired, err := redislock.Acquire(ctx, s.rdb, redislock.SchedulerPassKey, token, passLockTTL)
		if err != nil {
			// lock is advisory; the conditional stage update still guards
			log.Printf("scheduler pass lock unavailable: %v", err)
		} else if !acquired {
			log.Println("another scheduler pass is already running, skipping")
			return nil
		} else {
			defer func() {
				if err := redislock.Release(context.WithoutCancel(ctx), s.rdb, redislock.SchedulerPassKey, token); err != nil {
					log.Printf("release scheduler pass lock: %v", err)
				}
			}()
		}
	}

	carts, err := s.cartRepo.FindIncompleteWithPhone(ctx)
	if err != nil {
		return fmt.Errorf("fetch abandoned carts: %w", err)
	}

	log.Printf("found %d abandoned carts to process", len(carts))

	for _, cart := range carts {
		if err := s.processCart(ctx, cart); err != nil {
			log.Printf("process cart %s: %v", cart.Token, err)
		}
	}

	return nil
}

func (s *schedulerServiceImpl) processCart(ctx context.Context, cart *model.AbandonedCart) error {
	callLog, err := s.callLogRepo.FindByCartID(ctx, cart.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("creating call log for cart %s", cart.Token)
		if err := s.callLogRepo.CreateIfAbsent(ctx, &model.CallLog{
			AbandonedCartID: cart.ID,
			PhoneNumber:     cart.CustomerPhone,
		}); err != nil {
			return fmt.Errorf("create call log: %w", err)
		}
		callLog, err = s.callLogRepo.FindByCartID(ctx, cart.ID)
	}
	if err != nil {
		return fmt.Errorf("load call log: %w", err)
	}

	stage, ok := callLog.NextStage()
	if !ok {
		log.Printf("no calls needed for cart %s", cart.Token)
		return nil
	}

	return s.makeRecoveryCall(ctx, cart, callLog, stage)
}

// makeRecoveryCall places one call and records the attempt. The call log
// write comes first and is conditional on the stage still being unset; the
// cart's denormalized flag follows best effort and may lag after a crash.
func (s *schedulerServiceImpl) makeRecoveryCall(ctx context.Context, cart *model.AbandonedCart, callLog *model.CallLog, stage model.CallStage) error {
	log.Printf("making %s call to %s for cart %s", stage, cart.CustomerPhone, cart.Token)

	result := s.vapiClient.MakeCall(ctx, &client.CallRequest{
		PhoneNumber:   cart.CustomerPhone,
		CustomerName:  customerNameOrDefault(cart.CustomerName),
		CustomerEmail: cart.CustomerEmail,
		ProductNames:  extract.ProductNames(cart.DecodeLineItems()),
		CheckoutURL:   cart.AbandonedCheckoutURL,
		AllProducts:   s.catalogSummary(ctx),
	})

	response, err := json.Marshal(result)
	if err != nil {
		response = nil
	}

	sent, err := s.callLogRepo.MarkStageSent(ctx, callLog.ID, stage, response, result.Success)
	if err != nil {
		return fmt.Errorf("record %s call: %w", stage, err)
	}
	if !sent {
		log.Printf("%s call for cart %s already recorded by a concurrent pass", stage, cart.Token)
		return nil
	}

	if err := s.cartRepo.MarkStageCalled(ctx, cart.ID, stage, time.Now()); err != nil {
		// denormalized copy lags; the call log stays authoritative
		log.Printf("update cart %s stage flag: %v", cart.Token, err)
	}

	if result.Success {
		log.Printf("%s call successful for cart %s", stage, cart.Token)
	} else {
		log.Printf("%s call failed for cart %s: %s", stage, cart.Token, result.Error)
	}
	return nil
}

func (s *schedulerServiceImpl) catalogSummary(ctx context.Context) string {
	titles, err := s.productRepo.ListActiveTitles(ctx)
	if err != nil {
		log.Printf("load active product titles: %v", err)
		return "No products available"
	}
	if len(titles) == 0 {
		return "No products available"
	}
	return strings.Join(titles, ", ")
}

func customerNameOrDefault(name string) string {
	if name == "" {
		return "Customer"
	}
	return name
}
