package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitUntil polls cond until it returns true or the deadline passes.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestEngineStartRunsAndExitsOnItsOwn(t *testing.T) {
	e, err := Start(Options{Argv: []string{"sh", "-c", "sleep 0.2"}})
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(e.DebugLogPath()))
	defer e.Shutdown()

	assert.True(t, e.IsRunning())

	ok := waitUntil(t, 2*time.Second, func() bool { return !e.IsRunning() })
	assert.True(t, ok, "engine should stop being reported as running once its process exits")

	_, statErr := os.Stat(e.DebugLogPath())
	assert.NoError(t, statErr)
}

func TestEngineShutdownKillsAStillRunningProcess(t *testing.T) {
	e, err := Start(Options{Argv: []string{"sh", "-c", "sleep 5"}})
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(e.DebugLogPath()))

	assert.True(t, e.IsRunning())

	done := make(chan struct{})
	go func() {
		e.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(4 * time.Second):
		t.Fatal("Shutdown did not return in time; the still-sleeping process was not killed")
	}

	assert.False(t, e.IsRunning())

	_, statErr := os.Stat(e.DebugLogPath())
	assert.NoError(t, statErr, "the debug log should survive Shutdown for post-mortem inspection")
}

func TestEngineStartRejectsEmptyArgv(t *testing.T) {
	_, err := Start(Options{Argv: nil})
	assert.Error(t, err)
}

func TestEngineRecordsNonZeroProcessExitCode(t *testing.T) {
	e, err := Start(Options{Argv: []string{"sh", "-c", "exit 7"}})
	require.NoError(t, err)
	defer os.RemoveAll(filepath.Dir(e.DebugLogPath()))
	defer e.Shutdown()

	ok := waitUntil(t, 2*time.Second, func() bool { return !e.IsRunning() })
	require.True(t, ok)

	assert.Equal(t, 7, e.ProcessExitCode())
}
