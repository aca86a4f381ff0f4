package stripewebhook

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	"github.com/gatepasshq/gatepass-backend/internal/notifications"
	"github.com/gatepasshq/gatepass-backend/internal/users"
	"github.com/gatepasshq/gatepass-backend/pkg/config"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
	pkgstripe "github.com/gatepasshq/gatepass-backend/pkg/stripe"
)

type paidMarker interface {
	MarkPaid(ctx context.Context, customerID, email string) (users.MarkPaidResult, error)
}

type ServiceParams struct {
	UserRepo paidMarker
	Sender   notifications.Sender
	Logger   *logger.Logger
}

// Service is the only path by which a user moves from unpaid to paid.
type Service struct {
	userRepo paidMarker
	sender   notifications.Sender
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification sender required")
	}
	return &Service{
		userRepo: params.UserRepo,
		sender:   params.Sender,
		logg:     params.Logger,
	}, nil
}

// HandleEvent processes a signature-verified provider event. Every return
// path except a store failure acknowledges the event: the provider retries
// anything answered with an error status, and only signature failures (handled
// before this point) deserve that.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event required")
	}

	completion := pkgstripe.CheckoutCompletionFromEvent(event)
	if completion == nil {
		// Unrelated event type or incomplete payment: acknowledge and move on.
		return nil
	}

	ctx = s.withFields(ctx, completion.PaymentCustomerID, string(event.Type))

	result, err := s.userRepo.MarkPaid(ctx, completion.PaymentCustomerID, completion.Email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark user paid")
	}

	switch result.Outcome {
	case users.MarkPaidNotFound:
		// Checkout start should have created this row. Surface the anomaly to
		// operators but never bounce the event back to the provider.
		if s.logg != nil {
			s.logg.Error(ctx, "payment confirmed for unknown customer", nil)
		}
		return nil

	case users.MarkPaidAlreadyPaid:
		if s.logg != nil {
			s.logg.Warn(ctx, "duplicate payment confirmation ignored")
		}
		return nil
	}

	if result.User == nil || result.User.AuthToken == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "paid transition produced no token")
	}

	// The payment is recorded; a failed email is an operator concern, not a
	// reason to make the provider redeliver.
	err = s.sender.SendTemplate(ctx, completion.Email, config.TemplateNewAuthToken, map[string]string{
		"AUTH_TOKEN": *result.User.AuthToken,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "auth token email failed", err)
	}

	if s.logg != nil {
		s.logg.Info(ctx, "payment confirmed, auth token issued")
	}
	return nil
}

func (s *Service) withFields(ctx context.Context, customerID, eventType string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithFields(ctx, map[string]any{
		"payment_customer_id": customerID,
		"event_type":          eventType,
	})
}
