package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/metcalfc/trustfall/internal/faction"
)

const (
	stateFileName = "state.json"

	// KeySelectedFaction holds the faction chosen on the selection screen.
	KeySelectedFaction = "selectedFaction"
	// KeyStoryCompleted is set to "true" once the story has been seen.
	KeyStoryCompleted = "storyCompleted"
)

// Store is client-local key/value state with no expiry
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// FileStore persists state as JSON, guarded by a lock file. Writes re-read
// the file under the lock, so players sharing a state directory keep each
// other's keys.
type FileStore struct {
	path string
	lock *flock.Flock
	data map[string]string
	mu   sync.RWMutex
}

// NewFileStore creates or loads state from XDG_STATE_HOME/trustfall/
func NewFileStore() (*FileStore, error) {
	return OpenFileStore(getStateDir())
}

// OpenFileStore creates or loads the state file in dir.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	path := filepath.Join(dir, stateFileName)
	store := &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
		data: make(map[string]string),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = make(map[string]string)
	}
	return store, nil
}

// getStateDir returns XDG_STATE_HOME/trustfall or ~/.local/state/trustfall
func getStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "trustfall")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "trustfall")
}

// Path returns the state file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	return s.update(func(data map[string]string) { data[key] = value })
}

func (s *FileStore) Remove(key string) error {
	return s.update(func(data map[string]string) { delete(data, key) })
}

func (s *FileStore) load() error {
	if err := s.lock.RLock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	data, err := readState(s.path)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}

// update applies change to the state on disk under the exclusive lock, so
// keys written by another player since load are kept. The in-memory copy is
// replaced only once the write succeeds.
func (s *FileStore) update(change func(map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock state: %w", err)
	}
	defer s.lock.Unlock()

	data, err := readState(s.path)
	if err != nil {
		// Unreadable state is replaced, as at load.
		data = make(map[string]string)
	}
	change(data)

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write state: %w", err)
	}
	s.data = data
	return nil
}

func readState(path string) (map[string]string, error) {
	data := make(map[string]string)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// Memory is a Store that lives only as long as the process.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// SelectedFaction returns the stored faction, or "" when none is stored or
// the stored value is not a known faction.
func SelectedFaction(s Store) faction.Faction {
	v, ok := s.Get(KeySelectedFaction)
	if !ok {
		return ""
	}
	f, err := faction.Parse(v)
	if err != nil {
		return ""
	}
	return f
}

// SetFaction stores the selected faction.
func SetFaction(s Store, f faction.Faction) error {
	return s.Set(KeySelectedFaction, f.String())
}

// ClearFaction forgets the selected faction.
func ClearFaction(s Store) error {
	return s.Remove(KeySelectedFaction)
}

// StoryCompleted reports whether the story has been seen to the end.
func StoryCompleted(s Store) bool {
	v, _ := s.Get(KeyStoryCompleted)
	return v == "true"
}

// MarkStoryCompleted records that the story has been seen to the end.
func MarkStoryCompleted(s Store) error {
	return s.Set(KeyStoryCompleted, "true")
}
