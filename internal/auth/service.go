package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepasshq/gatepass-backend/pkg/auth/session"
	"github.com/gatepasshq/gatepass-backend/pkg/db/models"
	pkgerrors "github.com/gatepasshq/gatepass-backend/pkg/errors"
	"github.com/gatepasshq/gatepass-backend/pkg/logger"
)

type sessionManager interface {
	Create(ctx context.Context, userID string) (string, error)
	Lookup(ctx context.Context, sessionID string) (string, error)
	Destroy(ctx context.Context, sessionID string) error
}

type userFinder interface {
	FindByAuthToken(ctx context.Context, token string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exchanges bearer tokens for sessions and answers session queries.
type Service interface {
	Authenticate(ctx context.Context, token string) (string, error)
	Deauthenticate(ctx context.Context, sessionID string) error
	IsAuthenticated(ctx context.Context, sessionID string) (bool, error)
	ResolveUser(ctx context.Context, sessionID string) (string, error)
}

type ServiceParams struct {
	UserRepo userFinder
	Sessions sessionManager
	Logger   *logger.Logger
}

type service struct {
	users    userFinder
	sessions sessionManager
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repo required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	return &service{
		users:    params.UserRepo,
		sessions: params.Sessions,
		logg:     params.Logger,
	}, nil
}

// Authenticate redeems a bearer token for a new session and returns the
// session id. The token stays valid; redeeming it only creates a session.
func (s *service) Authenticate(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "no token provided")
	}

	user, err := s.users.FindByAuthToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up token")
	}

	sessionID, err := s.sessions.Create(ctx, user.ID.String())
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "session established")
	}
	return sessionID, nil
}

// Deauthenticate destroys the session unconditionally; a missing or already
// cleared session is a success.
func (s *service) Deauthenticate(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "destroy session")
	}
	return nil
}

// IsAuthenticated reports whether the session resolves to an existing user.
// It has no side effects.
func (s *service) IsAuthenticated(ctx context.Context, sessionID string) (bool, error) {
	userID, err := s.resolveUser(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return userID != "", nil
}

func (s *service) resolveUser(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", nil
	}

	userID, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up session")
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return "", nil
	}

	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}
	return userID, nil
}

// ResolveUser maps a session id to its user id, returning "" when the session
// is absent or the user row no longer exists. Used by the route guard; note it
// deliberately does not check `paid` — tokens are only minted by the paid
// transition, so a session can only descend from a paid user.
func (s *service) ResolveUser(ctx context.Context, sessionID string) (string, error) {
	return s.resolveUser(ctx, sessionID)
}
