package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu         sync.RWMutex
	encounters map[string]*encounter.State
	seen       map[string]map[string]bool
	saves      map[string]int
	gates      map[string]chan struct{}
	pingError  error
	saveError  error
	loadError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		encounters: make(map[string]*encounter.State),
		seen:       make(map[string]map[string]bool),
		saves:      make(map[string]int),
		gates:      make(map[string]chan struct{}),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStorage) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError makes every SaveEncounter call fail with err (nil clears it)
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// SetLoadError makes every LoadEncounter call fail with err (nil clears it)
func (m *MockStorage) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadError = err
}

// BlockLoad holds LoadEncounter calls for id until the returned func is called.
func (m *MockStorage) BlockLoad(id string) (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gates[id] = gate
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.gates, id)
			m.mu.Unlock()
			close(gate)
		})
	}
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.pingError != nil {
		return m.pingError
	}
	return nil
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	// Mock close doesn't need to do anything
	return nil
}

// SaveEncounter mocks saving an encounter
func (m *MockStorage) SaveEncounter(ctx context.Context, id string, s *encounter.State) error {
	if s == nil {
		return errors.New("encounter cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[id]++
	if m.saveError != nil {
		return m.saveError
	}
	m.encounters[id] = s
	return nil
}

// LoadEncounter mocks loading an encounter
func (m *MockStorage) LoadEncounter(ctx context.Context, id string) (*encounter.State, error) {
	m.mu.RLock()
	gate := m.gates[id]
	m.mu.RUnlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.loadError != nil {
		return nil, m.loadError
	}
	s, exists := m.encounters[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return s, nil
}

// DeleteEncounter mocks deleting an encounter
func (m *MockStorage) DeleteEncounter(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.encounters, id)
	delete(m.seen, id)
	return nil
}

// SeenDeaths mocks reading a showcase seen-set
func (m *MockStorage) SeenDeaths(ctx context.Context, encounterID string) (map[string]bool, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, exists := m.seen[encounterID]
	out := make(map[string]bool, len(set))
	for id := range set {
		out[id] = true
	}
	return out, exists, nil
}

// MarkDeathsSeen mocks adding entries to a showcase seen-set
func (m *MockStorage) MarkDeathsSeen(ctx context.Context, encounterID string, entryIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, exists := m.seen[encounterID]
	if !exists {
		set = make(map[string]bool)
		m.seen[encounterID] = set
	}
	for _, id := range entryIDs {
		set[id] = true
	}
	return nil
}

// PutEncounter stores an encounter directly (for testing)
func (m *MockStorage) PutEncounter(id string, s *encounter.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encounters[id] = s
}

// Encounter returns what was last saved for id (for testing)
func (m *MockStorage) Encounter(id string) *encounter.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.encounters[id]
}

// SaveCount reports how many SaveEncounter calls were made for id (for testing)
func (m *MockStorage) SaveCount(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves[id]
}
