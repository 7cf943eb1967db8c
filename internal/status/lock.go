package status

import (
	"encoding/json"
	"fmt"
	"os"
	"syscall"
	"time"
)

// LockInfo is the payload of an advisory lock file, enough to decide whether
// the holder is still alive.
type LockInfo struct {
	ProcessID  int       `json:"process_id"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Lock is an advisory file lock guarding a status location against
// overlapping invocations. It is opt-in: without it, two overlapping runs
// racing to read-then-write is an accepted limitation.
type Lock struct {
	path string
}

// AcquireLock attempts to take the advisory lock next to the status file.
// A lock held by a live, unexpired process is a conflict; stale locks (dead
// holder or past their expiry) are broken and re-acquired.
func AcquireLock(statusPath string, ttl time.Duration) (*Lock, error) {
	lockPath := statusPath + ".lock"

	info := LockInfo{
		ProcessID:  os.Getpid(),
		AcquiredAt: time.Now(),
		ExpiresAt:  time.Now().Add(ttl),
	}

	if err := tryCreateLock(lockPath, info); err == nil {
		return &Lock{path: lockPath}, nil
	}

	existing, err := readLockInfo(lockPath)
	if err != nil {
		// Unreadable lock file counts as stale.
		existing = LockInfo{}
	}
	if !isStale(existing) {
		return nil, fmt.Errorf("status file is locked by pid %d since %s", existing.ProcessID, existing.AcquiredAt.Format(time.RFC3339))
	}

	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale lock file: %v", err)
	}
	if err := tryCreateLock(lockPath, info); err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %v", err)
	}
	return &Lock{path: lockPath}, nil
}

// Release removes the lock file. Safe to call on an already-released lock.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %v", err)
	}
	return nil
}

// tryCreateLock atomically creates the lock file; failure means the file
// already exists (or the directory is unwritable).
func tryCreateLock(lockPath string, info LockInfo) error {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(info)
}

func readLockInfo(lockPath string) (LockInfo, error) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return LockInfo{}, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return LockInfo{}, err
	}
	return info, nil
}

// isStale reports whether the lock's holder can be ignored: missing pid,
// expired lease, or a process that no longer exists.
func isStale(info LockInfo) bool {
	if info.ProcessID == 0 {
		return true
	}
	if !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		return true
	}
	return !processAlive(info.ProcessID)
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 performs the existence check without delivering anything.
	return proc.Signal(syscall.Signal(0)) == nil
}
