package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmemorial/internal/config"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "dedup:booking_created:42", Key("booking_created", 42))
}

func TestAcquireOnce_NilAllows(t *testing.T) {
	var d *Deduper
	assert.True(t, d.AcquireOnce(context.Background(), "x", 1))
	assert.True(t, New(nil, time.Minute, nil).AcquireOnce(context.Background(), "x", 1))
}

func TestAcquireOnce_UnreachableRedisAllows(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	d := New(rdb, time.Minute, nil)
	assert.True(t, d.AcquireOnce(context.Background(), "booking_created", 7))
}

func TestNewClient_EmptyAddr(t *testing.T) {
	assert.Nil(t, NewClient(config.RedisConfig{}))
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestAcquireOnce_SuppressesRepeatWithinTTL(t *testing.T) {
	mr, rdb := newMiniredis(t)
	d := New(rdb, 10*time.Minute, nil)
	ctx := context.Background()

	assert.True(t, d.AcquireOnce(ctx, "booking_email:booking_confirmed", 42))
	assert.False(t, d.AcquireOnce(ctx, "booking_email:booking_confirmed", 42))

	// Other kinds and other bookings are independent.
	assert.True(t, d.AcquireOnce(ctx, "booking_email:booking_cancelled", 42))
	assert.True(t, d.AcquireOnce(ctx, "booking_email:booking_confirmed", 43))

	ttl := mr.TTL(Key("booking_email:booking_confirmed", 42))
	require.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, 10*time.Minute)
}

func TestAcquireOnce_AllowsAgainAfterTTL(t *testing.T) {
	mr, rdb := newMiniredis(t)
	d := New(rdb, time.Minute, nil)
	ctx := context.Background()

	require.True(t, d.AcquireOnce(ctx, "payment_sms:payment_confirmed", 42))
	mr.FastForward(2 * time.Minute)

	assert.True(t, d.AcquireOnce(ctx, "payment_sms:payment_confirmed", 42))
}
