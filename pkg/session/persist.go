package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"givelife/pkg/domain"
)

// Snapshot is what survives a restart: the bearer token and the user record.
type Snapshot struct {
	Token string
	User  domain.User
}

// Persister stores at most one Snapshot. Load reports false when nothing is
// stored.
type Persister interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// MemoryPersister keeps the snapshot in process memory.
type MemoryPersister struct {
	mu   sync.Mutex
	snap *Snapshot
}

func (m *MemoryPersister) Load(context.Context) (Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return Snapshot{}, false, nil
	}
	return *m.snap, true, nil
}

func (m *MemoryPersister) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &snap
	return nil
}

func (m *MemoryPersister) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

// fileRecord mirrors the browser storage layout: the user is kept as a JSON
// string next to the token.
type fileRecord struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

// FilePersister stores the snapshot as a JSON file readable only by the owner.
type FilePersister struct {
	Path string
}

// DefaultSessionPath resolves $XDG_CONFIG_HOME/givelife/session.json.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "givelife", "session.json"), nil
}

func (p FilePersister) Load(context.Context) (Snapshot, bool, error) {
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read session file: %w", err)
	}
	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode session file: %w", err)
	}
	if rec.Token == "" || rec.User == "" {
		return Snapshot{}, false, nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(rec.User), &user); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode stored user: %w", err)
	}
	return Snapshot{Token: rec.Token, User: user}, true, nil
}

func (p FilePersister) Save(_ context.Context, snap Snapshot) error {
	user, err := json.Marshal(snap.User)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fileRecord{Token: snap.Token, User: string(user)})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p.Path), ".session-*")
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p.Path)
}

func (p FilePersister) Clear(context.Context) error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
