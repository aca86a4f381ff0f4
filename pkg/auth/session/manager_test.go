package session

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatepasshq/gatepass-backend/pkg/config"
	redisclient "github.com/gatepasshq/gatepass-backend/pkg/redis"
)

func setupManager(t *testing.T) (*Manager, redismock.ClientMock) {
	t.Helper()

	raw, mock := redismock.NewClientMock()
	manager, err := NewManager(redisclient.NewFromRedis(raw), config.SessionConfig{
		Secret:     "test-secret",
		CookieName: "gatepass_session",
		TTL:        time.Hour,
	})
	require.NoError(t, err)
	return manager, mock
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(nil, config.SessionConfig{TTL: time.Hour})
	require.Error(t, err)

	raw, _ := redismock.NewClientMock()
	_, err = NewManager(redisclient.NewFromRedis(raw), config.SessionConfig{})
	require.Error(t, err)
}

func TestCreate_StoresUserIDUnderSessionKey(t *testing.T) {
	manager, mock := setupManager(t)

	mock.Regexp().ExpectSet(`gp:session:.+`, "user-1", time.Hour).SetVal("OK")

	sessionID, err := manager.Create(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RequiresUserID(t *testing.T) {
	manager, _ := setupManager(t)

	_, err := manager.Create(context.Background(), "  ")
	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	manager, mock := setupManager(t)
	ctx := context.Background()

	mock.ExpectGet("gp:session:known").SetVal("user-42")
	userID, err := manager.Lookup(ctx, "known")
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)

	mock.ExpectGet("gp:session:gone").RedisNil()
	_, err = manager.Lookup(ctx, "gone")
	require.ErrorIs(t, err, ErrNoSession)

	// An empty id never reaches the store.
	_, err = manager.Lookup(ctx, "")
	require.ErrorIs(t, err, ErrNoSession)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDestroy(t *testing.T) {
	manager, mock := setupManager(t)
	ctx := context.Background()

	mock.ExpectDel("gp:session:ending").SetVal(1)
	require.NoError(t, manager.Destroy(ctx, "ending"))

	// Destroying an absent session is fine too.
	mock.ExpectDel("gp:session:already-gone").SetVal(0)
	require.NoError(t, manager.Destroy(ctx, "already-gone"))

	// An empty id is a no-op.
	require.NoError(t, manager.Destroy(ctx, ""))

	assert.NoError(t, mock.ExpectationsWereMet())
}
