package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndReleaseLock(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "status.json")

	lock, err := AcquireLock(statusPath, time.Minute)
	require.NoError(t, err)

	_, err = os.Stat(statusPath + ".lock")
	require.NoError(t, err)

	require.NoError(t, lock.Release())
	_, err = os.Stat(statusPath + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireLockConflict(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "status.json")

	lock, err := AcquireLock(statusPath, time.Minute)
	require.NoError(t, err)
	defer lock.Release()

	// Same live process, unexpired lease: a second acquisition must fail.
	_, err = AcquireLock(statusPath, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked by pid")
}

func TestAcquireLockBreaksExpiredLock(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "status.json")

	stale := LockInfo{
		ProcessID:  os.Getpid(),
		AcquiredAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(statusPath+".lock", data, 0644))

	lock, err := AcquireLock(statusPath, time.Minute)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestAcquireLockBreaksDeadHolder(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "status.json")

	// Pids wrap well below this value on Linux, so the holder cannot exist.
	stale := LockInfo{
		ProcessID:  1 << 30,
		AcquiredAt: time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(statusPath+".lock", data, 0644))

	lock, err := AcquireLock(statusPath, time.Minute)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestAcquireLockBreaksUnreadableLockFile(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, os.WriteFile(statusPath+".lock", []byte("garbage"), 0644))

	lock, err := AcquireLock(statusPath, time.Minute)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
}

func TestReleaseIsIdempotent(t *testing.T) {
	statusPath := filepath.Join(t.TempDir(), "status.json")

	lock, err := AcquireLock(statusPath, time.Minute)
	require.NoError(t, err)
	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())
}
