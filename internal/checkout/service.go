package checkout

import (
	"context"

	"github.com/gatepasshq/gatepass-backend/internal/users"
	"github.com/gatepasshq/gatepass-backend/pkg/db"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

// Gateway is the slice of the payment provider used at checkout start.
type Gateway interface {
	CreateCustomer(ctx context.Context) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID string) (string, error)
}

type userCreator interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// Service starts hosted checkouts.
type Service interface {
	StartCheckout(ctx context.Context) (string, error)
}

type ServiceParams struct {
	Gateway  Gateway
	UserRepo userCreator
	Logger   *logger.Logger
}

type service struct {
	gateway Gateway
	users   userCreator
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment gateway required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	return &service{
		gateway: params.Gateway,
		users:   params.UserRepo,
		logg:    params.Logger,
	}, nil
}

// StartCheckout provisions a provider customer, persists the unpaid user, and
// opens the hosted checkout. The user row is committed before the checkout URL
// exists, so any later webhook for this customer always has a row to match.
func (s *service) StartCheckout(ctx context.Context) (string, error) {
	customerID, err := s.gateway.CreateCustomer(ctx)
	if err != nil {
		return "", err
	}

	if _, err := s.users.Create(ctx, users.CreateUserDTO{PaymentCustomerID: customerID}); err != nil {
		if db.IsUniqueViolation(err, "") {
			// Provider customer ids are unique per CreateCustomer call, so a
			// collision here means a replayed request, not a user mistake.
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "checkout already started for this customer")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist user")
	}

	checkoutURL, err := s.gateway.CreateCheckoutSession(ctx, customerID)
	if err != nil {
		return "", err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithCustomerID(ctx, customerID), "checkout session started")
	}
	return checkoutURL, nil
}
