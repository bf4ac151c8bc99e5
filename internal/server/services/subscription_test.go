package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Chris-Obeng/talkflo-app1/internal/common"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/config"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"github.com/Chris-Obeng/talkflo-app1/internal/server/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newSubscriptionService(t *testing.T, checkout *fakeCheckout) (*SubscriptionService, *memRepos) {
	t.Helper()
	db, _ := newMockDB(t)
	repos := newMemRepos()
	cfg := &config.Config{
		MonthlyPlanID:     "pdt_month",
		AnnualPlanID:      "pdt_year",
		PaymentsReturnURL: "http://localhost:8080/success",
	}
	s := NewSubscriptionService(db, repos, checkout, cfg, nopLog())
	s.now = func() time.Time { return fixedNow }
	return s, repos
}

func subEvent(typ, userID, plan string) *payments.Event {
	return &payments.Event{Type: typ, Data: payments.EventData{
		SubscriptionID: "sub_1",
		Metadata:       payments.Metadata{UserID: userID, PlanType: plan},
	}}
}

func TestApplyEvent_SubscriptionLifecycle(t *testing.T) {
	s, repos := newSubscriptionService(t, nil)
	ctx := context.Background()

	tests := []struct {
		event      *payments.Event
		wantStatus models.SubscriptionStatus
		wantEnds   time.Time
		active     bool
	}{
		{subEvent(payments.EventSubscriptionActive, alice, "monthly"), models.SubscriptionActive, fixedNow.Add(30 * day), true},
		{subEvent(payments.EventSubscriptionRenewed, alice, "annual"), models.SubscriptionActive, fixedNow.Add(365 * day), true},
		{subEvent(payments.EventSubscriptionOnHold, alice, ""), models.SubscriptionExpired, fixedNow.Add(7 * day), false},
		{subEvent(payments.EventSubscriptionCancelled, alice, ""), models.SubscriptionCancelled, fixedNow, false},
		{subEvent(payments.EventSubscriptionFailed, alice, ""), models.SubscriptionExpired, fixedNow, false},
	}
	for _, tt := range tests {
		t.Run(tt.event.Type, func(t *testing.T) {
			require.NoError(t, s.ApplyEvent(ctx, tt.event))
			sub := repos.subs.byUser[alice]
			require.NotNil(t, sub)
			assert.Equal(t, tt.wantStatus, sub.Status)
			assert.True(t, tt.wantEnds.Equal(sub.EndsOn), "ends %v, want %v", sub.EndsOn, tt.wantEnds)
			assert.Equal(t, "sub_1", sub.SubscriptionID)

			active, err := s.HasActive(ctx, alice)
			require.NoError(t, err)
			assert.Equal(t, tt.active, active)
		})
	}
}

func TestApplyEvent_Payments(t *testing.T) {
	s, repos := newSubscriptionService(t, nil)
	ctx := context.Background()

	ok := &payments.Event{Type: payments.EventPaymentSucceeded, Data: payments.EventData{
		PaymentID: "pay_1", TotalAmount: 900, Metadata: payments.Metadata{UserID: alice},
	}}
	require.NoError(t, s.ApplyEvent(ctx, ok))
	require.NoError(t, s.ApplyEvent(ctx, ok), "redelivery is harmless")

	failed := *ok
	failed.Type = payments.EventPaymentFailed
	require.NoError(t, s.ApplyEvent(ctx, &failed))

	list, err := s.Payments(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "succeeded", list[0].Status)
	assert.Equal(t, int64(900), list[0].Amount)
	assert.Equal(t, "failed", list[1].Status)
	assert.Empty(t, repos.subs.byUser, "payments do not touch the subscription")
}

func TestApplyEvent_IgnoredEvents(t *testing.T) {
	s, repos := newSubscriptionService(t, nil)
	repos.subs.known = map[string]bool{alice: true}
	ctx := context.Background()

	assert.NoError(t, s.ApplyEvent(ctx, subEvent(payments.EventSubscriptionActive, "", "monthly")))
	assert.NoError(t, s.ApplyEvent(ctx, subEvent(payments.EventSubscriptionActive, "not-a-uuid", "monthly")))
	assert.NoError(t, s.ApplyEvent(ctx, subEvent(payments.EventSubscriptionActive, bob, "monthly")), "unknown user")
	assert.NoError(t, s.ApplyEvent(ctx, subEvent("customer.created", alice, "")))
	assert.Empty(t, repos.subs.byUser)
}

func TestGet_NoSubscription(t *testing.T) {
	s, _ := newSubscriptionService(t, nil)
	v, err := s.Get(context.Background(), alice)
	require.NoError(t, err)
	assert.Nil(t, v.Subscription)
	assert.False(t, v.Active)
}

func TestCreateCheckout(t *testing.T) {
	checkout := &fakeCheckout{out: &payments.Checkout{SubscriptionID: "sub_9", PaymentLink: "https://pay.example/sub_9"}}
	s, repos := newSubscriptionService(t, checkout)
	ctx := context.Background()
	repos.users.byID[alice] = &models.User{ID: alice, Email: "ada@example.com"}

	link, err := s.CreateCheckout(ctx, alice, "pdt_month")
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/sub_9", link.PaymentLink)
	assert.Equal(t, "sub_9", link.SubscriptionID)

	require.NotNil(t, checkout.got)
	assert.Equal(t, "pdt_month", checkout.got.ProductID)
	assert.True(t, checkout.got.PaymentLink)
	assert.Equal(t, "http://localhost:8080/success", checkout.got.ReturnURL)
	assert.Equal(t, payments.Metadata{UserID: alice, UserEmail: "ada@example.com", PlanType: "monthly"}, checkout.got.Metadata)
	assert.Equal(t, "ada", checkout.got.Customer.Name)

	_, err = s.CreateCheckout(ctx, alice, "pdt_free")
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = s.CreateCheckout(ctx, bob, "pdt_year")
	assert.ErrorIs(t, err, common.ErrorNotAuthenticated)

	checkout.err = errors.New("provider down")
	_, err = s.CreateCheckout(ctx, alice, "pdt_year")
	assert.ErrorContains(t, err, "provider down")
	assert.Equal(t, "annual", checkout.got.Metadata.PlanType)
}
