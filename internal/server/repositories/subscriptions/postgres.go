package subscriptions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/dbx"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (user_id, subscription_id, status, ends_on, updated_at)
		SELECT $1, $2, $3, $4, now()
		WHERE EXISTS (SELECT 1 FROM users WHERE id = $1)
		ON CONFLICT (user_id) DO UPDATE SET
			subscription_id = EXCLUDED.subscription_id,
			status = EXCLUDED.status,
			ends_on = EXCLUDED.ends_on,
			updated_at = now()
	`
	res, err := r.db.ExecContext(ctx, query, sub.UserID, sub.SubscriptionID, sub.Status, sub.EndsOn)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Subscription, error) {
	query := `
		SELECT user_id, subscription_id, status, ends_on, updated_at
		FROM subscriptions WHERE user_id = $1
	`
	s := &models.Subscription{}
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&s.UserID, &s.SubscriptionID, &s.Status, &s.EndsOn, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) RecordPayment(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (payment_id, user_id, amount, status)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (SELECT 1 FROM users WHERE id = $2)
		ON CONFLICT (payment_id, status) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, p.PaymentID, p.UserID, p.Amount, p.Status); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListPayments(ctx context.Context, userID string) ([]*models.Payment, error) {
	query := `
		SELECT payment_id, user_id, amount, status, created_at
		FROM payments WHERE user_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select payments: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.PaymentID, &p.UserID, &p.Amount, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
