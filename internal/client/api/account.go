package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Chris-Obeng/talkflo-app1/internal/client/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/common"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", credentials{email, password}, nil, false)
}

// Login stores the issued token pair for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var pair models.TokenPair
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{email, password}, &pair, false); err != nil {
		return err
	}
	return c.tokens.Save(pair)
}

// Logout revokes the refresh token and forgets the local session even if
// the server could not be reached.
func (c *Client) Logout(ctx context.Context) error {
	pair, err := c.tokens.Load()
	if errors.Is(err, common.ErrorNotAuthenticated) {
		return nil
	}
	if err != nil {
		return err
	}
	rerr := c.do(ctx, http.MethodPost, "/api/auth/logout", map[string]string{"refreshToken": pair.RefreshToken}, nil, false)
	if errors.Is(rerr, common.ErrorNotAuthenticated) {
		rerr = nil
	}
	return errors.Join(rerr, c.tokens.Clear())
}

func (c *Client) GetSettings(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &s, true); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSettings sends only the non-nil fields.
func (c *Client) UpdateSettings(ctx context.Context, in models.Settings) (*models.Settings, error) {
	var s models.Settings
	if err := c.do(ctx, http.MethodPut, "/api/settings", in, &s, true); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetSubscription(ctx context.Context) (*models.SubscriptionView, error) {
	var v models.SubscriptionView
	if err := c.do(ctx, http.MethodGet, "/api/subscription", nil, &v, true); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var list []models.Payment
	if err := c.do(ctx, http.MethodGet, "/api/subscription/payments", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Checkout(ctx context.Context, plan string) (*models.CheckoutLink, error) {
	var link models.CheckoutLink
	if err := c.do(ctx, http.MethodPost, "/api/subscription/checkout", map[string]string{"plan": plan}, &link, true); err != nil {
		return nil, err
	}
	return &link, nil
}
