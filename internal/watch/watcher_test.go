package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, path string) (*FileWatcher, context.CancelFunc, <-chan error) {
	t.Helper()

	w := NewFileWatcher(path, WithDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx) }()

	// wait until the watch is registered
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.watcher != nil && len(w.watcher.WatchList()) > 0
	}, time.Second, 5*time.Millisecond)

	return w, cancel, errCh
}

func TestFileWatcher_ReportsWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "SoundbanksInfo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	w, cancel, errCh := startWatcher(t, path)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"soundBanks": []}`), 0o600))
	}

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	// the burst is reported once
	select {
	case <-w.Changes():
		t.Fatal("burst reported twice")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	assert.NoError(t, <-errCh)
}

func TestFileWatcher_AtomicReplace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "SoundbanksInfo.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	w, cancel, errCh := startWatcher(t, path)
	defer func() {
		cancel()
		<-errCh
	}()

	tmp := filepath.Join(dir, "SoundbanksInfo.json.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(`{"media": []}`), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-w.Changes():
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestFileWatcher_Errors(t *testing.T) {
	t.Parallel()

	w := NewFileWatcher(filepath.Join(t.TempDir(), "missing.json"))
	err := w.Watch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch file")

	// a failed watch can be retried
	assert.Error(t, w.Watch(context.Background()))
}
