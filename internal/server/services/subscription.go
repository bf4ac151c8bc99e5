package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/logging"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/config"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/payments"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/repositories/repomanager"
)

const (
	planMonthly = "monthly"
	planAnnual  = "annual"

	day         = 24 * time.Hour
	monthlyTerm = 30 * day
	annualTerm  = 365 * day
	onHoldGrace = 7 * day
)

// CheckoutCreator opens a hosted checkout with the billing provider.
type CheckoutCreator interface {
	CreateSubscription(ctx context.Context, in payments.CheckoutRequest) (*payments.Checkout, error)
}

// CheckoutLink is returned to the client, which redirects the user to it.
type CheckoutLink struct {
	PaymentLink    string `json:"paymentLink"`
	SubscriptionID string `json:"subscriptionId"`
}

// SubscriptionView is the caller's billing state.
type SubscriptionView struct {
	Subscription *models.Subscription `json:"subscription"`
	Active       bool                 `json:"active"`
}

type SubscriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	checkout    CheckoutCreator
	plans       map[string]string // product id -> plan type
	returnURL   string
	log         logging.Logger
	now         func() time.Time
}

func NewSubscriptionService(db *sql.DB, m repomanager.RepositoryManager, checkout CheckoutCreator,
	cfg *config.Config, log logging.Logger) *SubscriptionService {
	plans := make(map[string]string, 2)
	if cfg.MonthlyPlanID != "" {
		plans[cfg.MonthlyPlanID] = planMonthly
	}
	if cfg.AnnualPlanID != "" {
		plans[cfg.AnnualPlanID] = planAnnual
	}
	return &SubscriptionService{
		db:          db,
		repomanager: m,
		checkout:    checkout,
		plans:       plans,
		returnURL:   cfg.PaymentsReturnURL,
		log:         log,
		now:         time.Now,
	}
}

// Get returns the caller's subscription; a user who never subscribed gets a
// nil subscription and Active false.
func (s *SubscriptionService) Get(ctx context.Context, userID string) (*SubscriptionView, error) {
	sub, err := s.repomanager.Subscriptions(s.db).Get(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error loading subscription: %w", err)
	}
	return &SubscriptionView{Subscription: sub, Active: sub.ActiveAt(s.now())}, nil
}

// HasActive reports whether the caller currently has paid access.
func (s *SubscriptionService) HasActive(ctx context.Context, userID string) (bool, error) {
	v, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return v.Active, nil
}

// Payments lists the caller's payment history, newest first.
func (s *SubscriptionService) Payments(ctx context.Context, userID string) ([]*models.Payment, error) {
	return s.repomanager.Subscriptions(s.db).ListPayments(ctx, userID)
}

// CreateCheckout starts a subscription for planID and returns the hosted
// payment link.
func (s *SubscriptionService) CreateCheckout(ctx context.Context, userID, planID string) (*CheckoutLink, error) {
	planType, ok := s.plans[planID]
	if !ok {
		return nil, fmt.Errorf("%w: unknown plan %q", common.ErrInvalidArgument, planID)
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotAuthenticated
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	name, _, _ := strings.Cut(user.Email, "@")
	out, err := s.checkout.CreateSubscription(ctx, payments.CheckoutRequest{
		ProductID:   planID,
		Quantity:    1,
		Customer:    payments.Customer{Email: user.Email, Name: name},
		Billing:     payments.DefaultBilling,
		PaymentLink: true,
		ReturnURL:   s.returnURL,
		Metadata:    payments.Metadata{UserID: user.ID, UserEmail: user.Email, PlanType: planType},
	})
	if err != nil {
		s.log.Error(ctx, "create checkout", "plan", planID, "error", err)
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	s.log.Info(ctx, "checkout created", "subscription_id", out.SubscriptionID)
	return &CheckoutLink{PaymentLink: out.PaymentLink, SubscriptionID: out.SubscriptionID}, nil
}

// ApplyEvent mirrors one verified webhook event into the billing tables.
// Events that cannot be attributed to a known user are acknowledged and
// dropped, so only storage failures are returned.
func (s *SubscriptionService) ApplyEvent(ctx context.Context, e *payments.Event) error {
	userID := e.Data.Metadata.UserID
	log := s.log.With("event", e.Type, "user_id", userID)
	if userID == "" {
		log.Warn(ctx, "webhook event without user id ignored")
		return nil
	}
	if checkID(userID) != nil {
		log.Warn(ctx, "webhook event for malformed user id ignored")
		return nil
	}

	now := s.now().UTC()
	var err error
	switch e.Type {
	case payments.EventSubscriptionActive, payments.EventSubscriptionRenewed:
		term := annualTerm
		if e.Data.Metadata.PlanType == planMonthly {
			term = monthlyTerm
		}
		err = s.upsert(ctx, userID, e.Data.SubscriptionID, models.SubscriptionActive, now.Add(term))
	case payments.EventSubscriptionCancelled:
		err = s.upsert(ctx, userID, e.Data.SubscriptionID, models.SubscriptionCancelled, now)
	case payments.EventSubscriptionFailed:
		err = s.upsert(ctx, userID, e.Data.SubscriptionID, models.SubscriptionExpired, now)
	case payments.EventSubscriptionOnHold:
		err = s.upsert(ctx, userID, e.Data.SubscriptionID, models.SubscriptionExpired, now.Add(onHoldGrace))
	case payments.EventPaymentSucceeded, payments.EventPaymentFailed:
		status := strings.TrimPrefix(e.Type, "payment.")
		err = s.repomanager.Subscriptions(s.db).RecordPayment(ctx, &models.Payment{
			PaymentID: e.Data.PaymentID,
			UserID:    userID,
			Amount:    e.Data.TotalAmount,
			Status:    status,
		})
	default:
		log.Info(ctx, "unhandled webhook event type")
		return nil
	}

	if errors.Is(err, common.ErrorNotFound) {
		log.Warn(ctx, "webhook event for unknown user ignored")
		return nil
	}
	if err != nil {
		return fmt.Errorf("apply %s: %w", e.Type, err)
	}
	log.Info(ctx, "webhook event applied")
	return nil
}

func (s *SubscriptionService) upsert(ctx context.Context, userID, subID string, status models.SubscriptionStatus, endsOn time.Time) error {
	return s.repomanager.Subscriptions(s.db).Upsert(ctx, &models.Subscription{
		UserID:         userID,
		SubscriptionID: subID,
		Status:         status,
		EndsOn:         endsOn,
	})
}
