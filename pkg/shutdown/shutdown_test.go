package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/marcodd23/go-txscope/pkg/logx/logxtest"
)

func TestCleanupRunsOnSignal(t *testing.T) {
	recorder := logxtest.Install(t)

	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGTERM

	cleaned := false
	waitAndCleanUp(context.Background(), signals, time.Second, func(context.Context) {
		cleaned = true
	})

	assert.True(t, cleaned)
	assert.Equal(t, 1, recorder.Count(logxtest.LevelInfo, "All resources cleaned up"))
}

func TestCleanupRunsWhenRootContextIsCancelled(t *testing.T) {
	logxtest.Install(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var cleanupErr error
	waitAndCleanUp(ctx, make(chan os.Signal), time.Second, func(timeoutCtx context.Context) {
		cleanupErr = timeoutCtx.Err()
	})

	assert.NoError(t, cleanupErr, "cleanup context outlives the cancelled root")
}

func TestCleanupDeadlineExceeded(t *testing.T) {
	recorder := logxtest.Install(t)

	release := make(chan struct{})
	defer close(release)

	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGINT

	waitAndCleanUp(context.Background(), signals, 10*time.Millisecond, func(context.Context) {
		<-release
	})

	assert.Equal(t, 1, recorder.Count(logxtest.LevelError, "Deadline exceeded"))
}
