// Package users provides persistence for Talkflo accounts.
package users

import (
	"context"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Exists(ctx context.Context, userID string) (bool, error)
}
