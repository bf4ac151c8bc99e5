// Package subscriptions keeps the billing state mirrored from payment webhooks.
package subscriptions

import (
	"context"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

type Repository interface {
	// Upsert returns common.ErrorNotFound when sub.UserID names no user.
	Upsert(ctx context.Context, sub *models.Subscription) error
	Get(ctx context.Context, userID string) (*models.Subscription, error)
	// RecordPayment is idempotent per (payment id, status).
	RecordPayment(ctx context.Context, p *models.Payment) error
	ListPayments(ctx context.Context, userID string) ([]*models.Payment, error)
}
