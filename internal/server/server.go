package server

import (
	"cart-recovery-service/internal/handler"
	"cart-recovery-service/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo            *echo.Echo
	webhookHandler  *handler.WebhookHandler
	recoveryHandler *handler.RecoveryHandler
}

func NewServer(webhookService service.WebhookService, recoveryService service.RecoveryService, schedulerService service.SchedulerService) *Server {
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	webhookHandler := handler.NewWebhookHandler(webhookService)
	recoveryHandler := handler.NewRecoveryHandler(recoveryService, schedulerService)

	s := &Server{
		echo:            e,
		webhookHandler:  webhookHandler,
		recoveryHandler: recoveryHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- platform webhooks --------
	// Dedicated order/product routes exist as registration targets for the
	// platform; all three share the same verified pipeline.
	webhooks := api.Group("/webhooks")
	webhooks.POST("/shopify", s.webhookHandler.HandleShopifyWebhook)
	webhooks.POST("/orders", s.webhookHandler.HandleShopifyWebhook)
	webhooks.POST("/products", s.webhookHandler.HandleShopifyWebhook)

	// -------- recovery campaign --------
	api.POST("/recovery", s.recoveryHandler.ProcessCalls)
	api.GET("/recovery", s.recoveryHandler.GetStats)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
