// Package status persists the outcome of the last executed test run across
// invocations.
package status

import (
	"encoding/json"
	"fmt"
	"os"
)

// recordVersion tags the on-disk layout so fields can be added later without
// breaking old records.
const recordVersion = "1"

// Status is the single persisted record per monitored repository. It always
// reflects the last test run actually executed, never a skipped run.
type Status struct {
	Version      string `json:"version"`
	LastCommitID string `json:"last_commit_id,omitempty"`
	TestSuccess  bool   `json:"test_success"`
}

// Default is the first-run status: no known commit, tests not succeeding.
func Default() Status {
	return Status{Version: recordVersion}
}

// FileStore reads and writes a Status record at a fixed path.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Read loads the persisted status. An absent or unreadable file is the
// expected first-run condition and yields the default status, not an error.
func (s *FileStore) Read() Status {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Default()
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return Default()
	}
	if st.Version == "" {
		return Default()
	}
	return st
}

// Write persists the status atomically: the record is written to a temporary
// file and renamed into place, so a concurrent reader never observes a
// half-written record.
func (s *FileStore) Write(st Status) error {
	st.Version = recordVersion

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %v", err)
	}

	tempFile := s.Path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp status file: %v", err)
	}

	if err := os.Rename(tempFile, s.Path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp status file: %v", err)
	}

	return nil
}
