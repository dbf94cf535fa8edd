package scheduler

import (
	"context"
	"errors"
	"testing"

	"leadtracker_backend/internal/leads/service"
	"leadtracker_backend/platform/config"
	"leadtracker_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueRescoreAllIsDeduplicated(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr(), AsynqQueueName: "leads"}

	client, err := NewClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	require.NoError(t, client.EnqueueRescoreAll(ctx, false))
	require.NoError(t, client.EnqueueRescoreAll(ctx, false), "a pending pass absorbs the second request")

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	pending, err := rdb.LLen(ctx, "asynq:{leads}:pending").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(&config.Config{})
	assert.Error(t, err)
}

func TestNilClientIsNoop(t *testing.T) {
	var client *Client
	assert.NoError(t, client.EnqueueRescoreAll(context.Background(), true))
	assert.NoError(t, client.Close())
}

type fakeRescorer struct {
	got service.RescoreOptions
	err error
}

func (f *fakeRescorer) RescoreAll(_ context.Context, opts service.RescoreOptions) (service.RescoreSummary, error) {
	f.got = opts
	return service.RescoreSummary{Processed: 3}, f.err
}

func TestHandleRescoreAll(t *testing.T) {
	rescorer := &fakeRescorer{}
	w := &Worker{rescorer: rescorer, log: logger.Discard()}

	task, err := NewRescoreAllTask(RescoreAllPayload{IncludeInactive: true})
	require.NoError(t, err)
	require.NoError(t, w.handleRescoreAll(context.Background(), task))
	assert.True(t, rescorer.got.IncludeInactive)
	assert.Equal(t, "scheduled", rescorer.got.Trigger)

	rescorer.err = errors.New("db gone")
	assert.Error(t, w.handleRescoreAll(context.Background(), task))
}

func TestHandleRescoreAllRejectsCorruptPayload(t *testing.T) {
	w := &Worker{rescorer: &fakeRescorer{}, log: logger.Discard()}

	err := w.handleRescoreAll(context.Background(), asynq.NewTask(TaskRescoreAll, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRedisClientOptHonoursTLSInsecure(t *testing.T) {
	opt, err := redisClientOpt("rediss://user:pw@cache:6380/2", true)
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}
