package users

import "github.com/gatepasshq/gatepass-backend/pkg/db/models"

// CreateUserDTO captures the only fact known at checkout start: the
// provider-issued customer id. New users are always unpaid and tokenless.
type CreateUserDTO struct {
	PaymentCustomerID string
}

func (dto CreateUserDTO) ToModel() *models.User {
	return &models.User{
		PaymentCustomerID: dto.PaymentCustomerID,
		Paid:              false,
	}
}
