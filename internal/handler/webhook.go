package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"cart-recovery-service/internal/service"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// HandleShopifyWebhook serves every webhook route. A processing failure
// after the body parses surfaces as a 500 so the platform reissues the
// delivery per its own retry policy.
func (h *WebhookHandler) HandleShopifyWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	topic := c.Request().Header.Get("X-Shopify-Topic")
	signature := c.Request().Header.Get("X-Shopify-Hmac-Sha256")

	err = h.webhookService.Handle(ctx, topic, signature, body)
	switch {
	case errors.Is(err, service.ErrInvalidSignature):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrUnknownTopic):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook topic")
	case errors.Is(err, service.ErrMalformedPayload):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
	case err != nil:
		return fmt.Errorf("handle %s webhook: %w", topic, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
