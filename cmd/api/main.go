package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cart-recovery-service/internal/client"
	"cart-recovery-service/internal/config"
	"cart-recovery-service/internal/repository"
	"cart-recovery-service/internal/server"
	"cart-recovery-service/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitMysqlClient(cfg.DatabaseURL)
	rdb := client.InitRedisClient(&cfg.Redis)
	vapiClient := client.NewVapiClient(&cfg.Vapi)

	cartRepo := repository.NewAbandonedCartRepository(db)
	callLogRepo := repository.NewCallLogRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	webhookCallRepo := repository.NewWebhookCallRepository(db)

	recoveryService := service.NewRecoveryService(
		cartRepo,
		callLogRepo,
		orderRepo,
		productRepo,
		webhookCallRepo,
	)
	schedulerService := service.NewSchedulerService(
		cartRepo,
		callLogRepo,
		productRepo,
		vapiClient,
		rdb,
	)
	webhookService := service.NewWebhookService(
		cfg.Shopify.WebhookSecret,
		recoveryService,
		webhookCallRepo,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(webhookService, recoveryService, schedulerService)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
