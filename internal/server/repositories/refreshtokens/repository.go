// Package refreshtokens keeps the refresh tokens a user can trade for a new
// access token. Only a SHA-256 digest of each token is stored.
package refreshtokens

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

type Repository interface {
	// Issue records token for userID until expires.
	Issue(ctx context.Context, userID, token string, expires time.Time) error

	// Consume removes token and returns what it was issued for, so a token
	// can be redeemed once. Unknown tokens are common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke removes token if present.
	Revoke(ctx context.Context, token string) error

	// DeleteExpired prunes tokens of userID that expired before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, userID string, now time.Time) (int64, error)
}

func digest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}
