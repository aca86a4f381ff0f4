package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/gatepasshq/gatepass-backend/internal/users"
	"github.com/gatepasshq/gatepass-backend/pkg/config"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
)

type fakePaidMarker struct {
	result users.MarkPaidResult
	err    error
	calls  []markPaidCall
}

type markPaidCall struct {
	customerID string
	email      string
}

func (f *fakePaidMarker) MarkPaid(_ context.Context, customerID, email string) (users.MarkPaidResult, error) {
	f.calls = append(f.calls, markPaidCall{customerID: customerID, email: email})
	if f.err != nil {
		return users.MarkPaidResult{}, f.err
	}
	return f.result, nil
}

type fakeSender struct {
	templates []templateSend
	err       error
}

type templateSend struct {
	to       string
	template string
	vars     map[string]string
}

func (f *fakeSender) Send(_ context.Context, _, _, _, _ string) error {
	return f.err
}

func (f *fakeSender) SendTemplate(_ context.Context, to, templateName string, vars map[string]string) error {
	f.templates = append(f.templates, templateSend{to: to, template: templateName, vars: vars})
	return f.err
}

func paidUser(token string) *models.User {
	return &models.User{Paid: true, AuthToken: &token}
}

func completedEvent(t *testing.T, customerID, email string) *stripe.Event {
	t.Helper()

	sess := map[string]any{
		"payment_status":   "paid",
		"customer":         map[string]any{"id": customerID},
		"customer_details": map[string]any{"email": email},
	}
	payload, err := json.Marshal(map[string]any{
		"id":          "evt_test",
		"type":        string(stripe.EventTypeCheckoutSessionCompleted),
		"object":      "event",
		"api_version": stripe.APIVersion,
		"data":        map[string]any{"object": sess},
	})
	require.NoError(t, err)

	var event stripe.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	return &event
}

func newTestService(t *testing.T, repo *fakePaidMarker, sender *fakeSender) *Service {
	t.Helper()

	svc, err := NewService(ServiceParams{UserRepo: repo, Sender: sender})
	require.NoError(t, err)
	return svc
}

func TestHandleEvent_NilEvent(t *testing.T) {
	svc := newTestService(t, &fakePaidMarker{}, &fakeSender{})

	err := svc.HandleEvent(context.Background(), nil)
	require.Error(t, err)
}

func TestHandleEvent_UnrelatedEventIsAcknowledged(t *testing.T) {
	repo := &fakePaidMarker{}
	svc := newTestService(t, repo, &fakeSender{})

	event := completedEvent(t, "cus_x", "buyer@example.com")
	event.Type = stripe.EventTypeCustomerCreated

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, repo.calls)
}

func TestHandleEvent_PaidTransitionSendsToken(t *testing.T) {
	repo := &fakePaidMarker{result: users.MarkPaidResult{
		Outcome: users.MarkPaidUpdated,
		User:    paidUser("tok-abc"),
	}}
	sender := &fakeSender{}
	svc := newTestService(t, repo, sender)

	err := svc.HandleEvent(context.Background(), completedEvent(t, "cus_pay", "buyer@example.com"))
	require.NoError(t, err)

	require.Len(t, repo.calls, 1)
	assert.Equal(t, "cus_pay", repo.calls[0].customerID)
	assert.Equal(t, "buyer@example.com", repo.calls[0].email)

	require.Len(t, sender.templates, 1)
	sent := sender.templates[0]
	assert.Equal(t, "buyer@example.com", sent.to)
	assert.Equal(t, config.TemplateNewAuthToken, sent.template)
	assert.Equal(t, "tok-abc", sent.vars["AUTH_TOKEN"])
}

func TestHandleEvent_RedeliveryDoesNotResend(t *testing.T) {
	repo := &fakePaidMarker{result: users.MarkPaidResult{
		Outcome: users.MarkPaidAlreadyPaid,
		User:    paidUser("tok-original"),
	}}
	sender := &fakeSender{}
	svc := newTestService(t, repo, sender)

	err := svc.HandleEvent(context.Background(), completedEvent(t, "cus_retry", "buyer@example.com"))
	require.NoError(t, err)
	assert.Empty(t, sender.templates)
}

func TestHandleEvent_UnknownCustomerIsAcknowledged(t *testing.T) {
	repo := &fakePaidMarker{result: users.MarkPaidResult{Outcome: users.MarkPaidNotFound}}
	sender := &fakeSender{}
	svc := newTestService(t, repo, sender)

	err := svc.HandleEvent(context.Background(), completedEvent(t, "cus_ghost", "buyer@example.com"))
	require.NoError(t, err)
	assert.Empty(t, sender.templates)
}

func TestHandleEvent_StoreFailureSurfaces(t *testing.T) {
	repo := &fakePaidMarker{err: errors.New("db down")}
	svc := newTestService(t, repo, &fakeSender{})

	err := svc.HandleEvent(context.Background(), completedEvent(t, "cus_pay", "buyer@example.com"))
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeDependency, appErr.Code())
}

func TestHandleEvent_EmailFailureStillAcknowledges(t *testing.T) {
	repo := &fakePaidMarker{result: users.MarkPaidResult{
		Outcome: users.MarkPaidUpdated,
		User:    paidUser("tok-abc"),
	}}
	sender := &fakeSender{err: errors.New("sendgrid down")}
	svc := newTestService(t, repo, sender)

	err := svc.HandleEvent(context.Background(), completedEvent(t, "cus_pay", "buyer@example.com"))
	require.NoError(t, err)
}
