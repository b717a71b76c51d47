package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// ErrInvalidTerminal is returned for terminal IDs that cannot name a
// snapshot file.
var ErrInvalidTerminal = errors.New("invalid terminal ID")

var terminalPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Snapshots is the device-local order cache: one JSON snapshot per terminal,
// written after every mutation, read once at session start, cleared on
// reset. Writes are synchronous and idempotent.
type Snapshots struct {
	dir string
}

// NewSnapshots opens (creating if needed) the snapshot directory.
func NewSnapshots(dir string) (*Snapshots, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Snapshots{dir: dir}, nil
}

// Save persists the snapshot blob for a terminal.
func (s *Snapshots) Save(terminal string, blob []byte) error {
	path, err := s.path(terminal)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted snapshot for a terminal, or nil when none
// exists.
func (s *Snapshots) Load(terminal string) ([]byte, error) {
	path, err := s.path(terminal)
	if err != nil {
		return nil, err
	}
	blob, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return blob, nil
}

// Clear removes the persisted snapshot for a terminal. Clearing an absent
// snapshot is not an error.
func (s *Snapshots) Clear(terminal string) error {
	path, err := s.path(terminal)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

func (s *Snapshots) path(terminal string) (string, error) {
	if !terminalPattern.MatchString(terminal) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTerminal, terminal)
	}
	return filepath.Join(s.dir, "acaiOrder-"+terminal+".json"), nil
}
