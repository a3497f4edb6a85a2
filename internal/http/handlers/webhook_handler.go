// Webhook HTTP handler.
//
// This file exposes the Telegram webhook endpoint:
//   - POST /webhook/{secret}
//
// The handler is transport-thin: it authenticates the delivery, decodes
// the update, flattens it to a domain event, and hands it to the intake
// service. Telegram redelivers updates that are not acknowledged with a
// 200, so most failures are acked anyway and surfaced through logs.
package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetops/repair-intake/internal/domain"
	"github.com/fleetops/repair-intake/internal/http/middleware"
	"github.com/fleetops/repair-intake/internal/telegram"
)

// headerSecretToken is the header Telegram echoes back when the webhook
// was registered with a secret_token.
const headerSecretToken = "X-Telegram-Bot-Api-Secret-Token"

// IntakeService defines the event-processing operation consumed by the
// webhook handler.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type IntakeService interface {
	// HandleEvent processes one inbound chat event end to end.
	HandleEvent(ctx context.Context, ev domain.Event) error
}

// WebhookHandler receives Telegram update deliveries.
type WebhookHandler struct {
	svc    IntakeService
	secret string
}

// NewWebhook constructs a WebhookHandler bound to the given service and
// shared webhook secret.
func NewWebhook(svc IntakeService, secret string) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret}
}

// Receive handles POST /webhook/:secret.
//
// Authentication requires both the path segment and the
// X-Telegram-Bot-Api-Secret-Token header to match the configured secret;
// a mismatch in either returns 403 without touching the body. Malformed
// bodies are acknowledged with 200 so Telegram stops redelivering them.
func (h *WebhookHandler) Receive(c *gin.Context) {
	if !h.authentic(c) {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "invalid webhook credentials")
		return
	}

	var upd telegram.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("undecodable webhook body")
		ok(c, http.StatusOK, gin.H{"ok": true})
		return
	}

	ev, valid := upd.ToEvent()
	if !valid {
		// Update kinds the bot does not subscribe to; ack and move on.
		ok(c, http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := h.svc.HandleEvent(c.Request.Context(), ev); err != nil {
		// The user was already told; acking prevents a redelivery storm
		// against a store that is still down.
		middleware.LoggerFrom(c).Error().
			Err(err).
			Int64("chat_id", ev.ChatID).
			Int64("update_id", ev.UpdateID).
			Msg("event processing failed")
	}
	ok(c, http.StatusOK, gin.H{"ok": true})
}

// authentic verifies both webhook credentials in constant time.
func (h *WebhookHandler) authentic(c *gin.Context) bool {
	pathOK := subtle.ConstantTimeCompare([]byte(c.Param("secret")), []byte(h.secret)) == 1
	headerOK := subtle.ConstantTimeCompare([]byte(c.GetHeader(headerSecretToken)), []byte(h.secret)) == 1
	return pathOK && headerOK
}
