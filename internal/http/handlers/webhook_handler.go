// Webhook HTTP handlers.
//
//   - POST /webhooks/hotmart  (Hotmart postback)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-bookclub-guard/internal/http/middleware"
	"github.com/tbourn/go-bookclub-guard/internal/services"
)

// HeaderHotmartHottok carries the shared Hotmart token.
const HeaderHotmartHottok = "X-HOTMART-HOTTOK"

// WebhookResponse reports what happened to a delivery.
type WebhookResponse struct {
	Status string `json:"status" example:"applied" enums:"applied,duplicate,ignored"`
}

// HotmartWebhook godoc
// @ID          hotmartWebhook
// @Summary     Receive a Hotmart postback
// @Description Verifies the shared token, then applies the event at most once per event id. Redeliveries answer 200 with status=duplicate.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
// @Param       X-HOTMART-HOTTOK  header  string                  true  "Shared Hotmart token"
// @Param       body              body    services.HotmartEvent   true  "Hotmart event"
// @Success     200  {object}  handlers.WebhookResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid event"
// @Failure     401  {object}  handlers.ErrorResponse "Invalid token"
// @Failure     500  {object}  handlers.ErrorResponse "Processing failed"
// @Router      /webhooks/hotmart [post]
func (h *Handlers) HotmartWebhook(c *gin.Context) {
	if err := h.webhookSvc.Verify(c.GetHeader(HeaderHotmartHottok)); err != nil {
		middleware.LoggerFrom(c).Warn().Str("client_ip", c.ClientIP()).Msg("hotmart webhook rejected")
		failErr(c, err)
		return
	}

	var ev services.HotmartEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidEvent, "invalid JSON body")
		return
	}

	outcome, err := h.webhookSvc.Process(c.Request.Context(), ev)
	if err != nil && !errors.Is(err, services.ErrDuplicateEvent) {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, WebhookResponse{Status: outcome})
}
