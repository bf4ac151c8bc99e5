package httpapi

import (
	"net/http"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/payments"
	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	Plan string `json:"plan" binding:"required"`
}

func (a *API) handleGetSubscription(c *gin.Context) {
	v, err := a.Subscriptions.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (a *API) handleListPayments(c *gin.Context) {
	list, err := a.Subscriptions.Payments(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) handleCheckout(c *gin.Context) {
	var payload checkoutRequest
	if !bindJSON(c, &payload) {
		return
	}
	link, err := a.Subscriptions.CreateCheckout(c.Request.Context(), currentUser(c), payload.Plan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// handlePaymentsWebhook verifies and applies a provider delivery. Anything
// that fails verification is rejected without touching state; everything
// else is acknowledged so the provider stops retrying.
func (a *API) handlePaymentsWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	body, err := readBody(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := a.Webhooks.Verify(c.Request.Header, body); err != nil {
		a.log.Warn(ctx, "webhook rejected", "webhook_id", c.GetHeader(payments.HeaderID), "error", err)
		respondError(c, err)
		return
	}
	event, err := payments.ParseEvent(body)
	if err != nil {
		a.log.Warn(ctx, "webhook rejected", "webhook_id", c.GetHeader(payments.HeaderID), "error", err)
		respondError(c, err)
		return
	}

	if err := a.Subscriptions.ApplyEvent(ctx, event); err != nil {
		a.log.Error(ctx, "webhook processing failed", "event", event.Type, "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
