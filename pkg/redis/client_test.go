package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) (*Client, redismock.ClientMock) {
	t.Helper()
	raw, mock := redismock.NewClientMock()
	return NewFromRedis(raw), mock
}

func TestKeyBuilders(t *testing.T) {
	client, _ := setupClient(t)

	assert.Equal(t, "gp:session:abc", client.SessionKey("abc"))
	assert.Equal(t, "gp:rate_limit:rl:ip:public:1.2.3.4", client.RateLimitKey("rl:ip:public:1.2.3.4"))
}

func TestIncrWithTTL_SetsExpiryOnFirstHit(t *testing.T) {
	client, mock := setupClient(t)
	ctx := context.Background()

	mock.ExpectIncr("counter").SetVal(1)
	mock.ExpectExpire("counter", time.Minute).SetVal(true)

	count, err := client.IncrWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Later hits must not reset the window.
	mock.ExpectIncr("counter").SetVal(2)
	count, err = client.IncrWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFixedWindowAllow(t *testing.T) {
	client, mock := setupClient(t)
	ctx := context.Background()

	mock.ExpectIncr("gp:rate_limit:scope").SetVal(1)
	mock.ExpectExpire("gp:rate_limit:scope", time.Minute).SetVal(true)
	allowed, count, err := client.FixedWindowAllow(ctx, "scope", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, int64(1), count)

	mock.ExpectIncr("gp:rate_limit:scope").SetVal(3)
	allowed, count, err = client.FixedWindowAllow(ctx, "scope", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, int64(3), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
