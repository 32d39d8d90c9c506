package app

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/registry-console/internal/status"
)

// syncBuffer is a bytes.Buffer safe for the render loop and notification listeners
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCmd(t *testing.T) {
	t.Parallel()

	fake, endpoint := newFakeRegistry(t)
	statusFile := filepath.Join(t.TempDir(), "status.json")

	var stdout, stderr syncBuffer
	root := NewRootCmd()
	root.SetArgs([]string{"watch", "--endpoint", endpoint, "--interval", "50ms", "--status-file", statusFile})
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		out := stdout.String()
		return strings.Contains(out, "Auto refresh enabled") && strings.Contains(out, "10.0.0.3:9090")
	}, 5*time.Second, 10*time.Millisecond)

	// The scheduler keeps polling in the background
	require.Eventually(t, func() bool {
		return len(fake.Calls()) >= 3
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}

	assert.Contains(t, stdout.String(), "Service status refreshed successfully")
	assert.Contains(t, stdout.String(), "Auto refresh: running (every 50ms)")

	saved, err := status.NewFileStatusPersistence(statusFile).LoadStatus(context.Background())
	require.NoError(t, err)
	// A refresh cancelled by the shutdown does not count as a failure
	assert.Equal(t, status.SyncPhaseComplete, saved.Phase)
	require.NotNil(t, saved.LastSyncTime)
	assert.Equal(t, 3, saved.InstanceCount)

	// No polling once the command returned
	calls := len(fake.Calls())
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, calls, len(fake.Calls()))
}

func TestServeMetrics_ListenError(t *testing.T) {
	t.Parallel()

	err := serveMetrics(context.Background(), "127.0.0.1:-1", http.NotFoundHandler())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics server failed")
}

func TestIsTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, isTerminal(&bytes.Buffer{}))
}
