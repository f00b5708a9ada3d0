package jobs

import (
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"animehost/internal/config"
)

// Constructing a redis client does not dial; it only matters here that the
// scheduler sees a non-nil queue.
func testQueue() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
}

func TestSchedulerStartRegistersSweep(t *testing.T) {
	s := NewScheduler(testQueue(), config.JanitorConfig{Stream: "janitor:tasks"}, t.TempDir(), zerolog.Nop())

	require.NoError(t, s.Start())
	require.Len(t, s.cron.Entries(), 1)

	s.Stop()()
}

func TestSchedulerStartSkipsWithoutSweepDir(t *testing.T) {
	s := NewScheduler(testQueue(), config.JanitorConfig{Stream: "janitor:tasks"}, "", zerolog.Nop())

	require.NoError(t, s.Start())
	require.Empty(t, s.cron.Entries())

	s.Stop()()
}
