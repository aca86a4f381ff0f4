package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
)

// MarkPaidOutcome describes what the paid-transition update did.
type MarkPaidOutcome int

const (
	// MarkPaidUpdated: the user transitioned to paid and a token was minted.
	MarkPaidUpdated MarkPaidOutcome = iota
	// MarkPaidAlreadyPaid: a redelivered event hit a user that already paid;
	// the existing token is left untouched.
	MarkPaidAlreadyPaid
	// MarkPaidNotFound: no user carries this payment customer id.
	MarkPaidNotFound
)

// MarkPaidResult carries the outcome plus the user row where one exists.
type MarkPaidResult struct {
	Outcome MarkPaidOutcome
	User    *models.User
}

// Repository exposes user persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new unpaid user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByAuthToken retrieves the user holding the given bearer token.
func (r *Repository) FindByAuthToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("auth_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) findByCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("payment_customer_id = ?", customerID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// MarkPaid performs the paid transition as a single conditional update: the
// email is recorded and a fresh token minted only for a user that has not paid
// yet. Concurrent or redelivered confirmations for the same customer therefore
// collapse to one transition; the token is never rotated afterwards.
func (r *Repository) MarkPaid(ctx context.Context, customerID, email string) (MarkPaidResult, error) {
	token := uuid.NewString()

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("payment_customer_id = ? AND paid = ?", customerID, false).
		Updates(map[string]any{
			"paid":       true,
			"email":      email,
			"auth_token": token,
		})
	if res.Error != nil {
		return MarkPaidResult{}, res.Error
	}

	if res.RowsAffected > 0 {
		user, err := r.findByCustomerID(ctx, customerID)
		if err != nil {
			return MarkPaidResult{}, err
		}
		return MarkPaidResult{Outcome: MarkPaidUpdated, User: user}, nil
	}

	user, err := r.findByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MarkPaidResult{Outcome: MarkPaidNotFound}, nil
		}
		return MarkPaidResult{}, err
	}
	return MarkPaidResult{Outcome: MarkPaidAlreadyPaid, User: user}, nil
}
