package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatepasshq/gatepass-backend/internal/users"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
)

type fakeGateway struct {
	customerID  string
	customerErr error

	checkoutURL  string
	checkoutErr  error
	checkoutFor  []string
	customerRuns int
}

func (f *fakeGateway) CreateCustomer(_ context.Context) (string, error) {
	f.customerRuns++
	if f.customerErr != nil {
		return "", f.customerErr
	}
	return f.customerID, nil
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, customerID string) (string, error) {
	f.checkoutFor = append(f.checkoutFor, customerID)
	if f.checkoutErr != nil {
		return "", f.checkoutErr
	}
	return f.checkoutURL, nil
}

type fakeUserCreator struct {
	created []users.CreateUserDTO
	err     error
}

func (f *fakeUserCreator) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, dto)
	return dto.ToModel(), nil
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(ServiceParams{UserRepo: &fakeUserCreator{}})
	require.Error(t, err)

	_, err = NewService(ServiceParams{Gateway: &fakeGateway{}})
	require.Error(t, err)
}

func TestStartCheckout(t *testing.T) {
	gateway := &fakeGateway{customerID: "cus_new", checkoutURL: "https://checkout.stripe.com/pay/cs_123"}
	repo := &fakeUserCreator{}

	svc, err := NewService(ServiceParams{Gateway: gateway, UserRepo: repo})
	require.NoError(t, err)

	url, err := svc.StartCheckout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_123", url)

	// The unpaid user row is tied to the provider customer before the
	// hosted checkout exists.
	require.Len(t, repo.created, 1)
	assert.Equal(t, "cus_new", repo.created[0].PaymentCustomerID)
	assert.Equal(t, []string{"cus_new"}, gateway.checkoutFor)
}

func TestStartCheckout_CustomerFailureCreatesNothing(t *testing.T) {
	gateway := &fakeGateway{customerErr: errors.New("provider down")}
	repo := &fakeUserCreator{}

	svc, err := NewService(ServiceParams{Gateway: gateway, UserRepo: repo})
	require.NoError(t, err)

	_, err = svc.StartCheckout(context.Background())
	require.Error(t, err)
	assert.Empty(t, repo.created)
	assert.Empty(t, gateway.checkoutFor)
}

func TestStartCheckout_PersistFailureSkipsCheckout(t *testing.T) {
	gateway := &fakeGateway{customerID: "cus_new", checkoutURL: "https://example.com"}
	repo := &fakeUserCreator{err: errors.New("db down")}

	svc, err := NewService(ServiceParams{Gateway: gateway, UserRepo: repo})
	require.NoError(t, err)

	_, err = svc.StartCheckout(context.Background())
	require.Error(t, err)
	assert.Empty(t, gateway.checkoutFor)
}

func TestStartCheckout_DuplicateCustomer(t *testing.T) {
	gateway := &fakeGateway{customerID: "cus_replay", checkoutURL: "https://example.com"}
	repo := &fakeUserCreator{err: errors.New(`duplicate key value violates unique constraint "idx_users_payment_customer_id"`)}

	svc, err := NewService(ServiceParams{Gateway: gateway, UserRepo: repo})
	require.NoError(t, err)

	_, err = svc.StartCheckout(context.Background())
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestStartCheckout_SessionFailureAfterPersist(t *testing.T) {
	gateway := &fakeGateway{customerID: "cus_new", checkoutErr: errors.New("provider down")}
	repo := &fakeUserCreator{}

	svc, err := NewService(ServiceParams{Gateway: gateway, UserRepo: repo})
	require.NoError(t, err)

	_, err = svc.StartCheckout(context.Background())
	require.Error(t, err)

	// The row stays: a later webhook for this customer still has a match.
	assert.Len(t, repo.created, 1)
}
