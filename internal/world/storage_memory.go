package world

import (
	"fmt"
	"sort"
	"sync"
)

// MemoryMapStore keeps maps in process memory. Grids are copied on the way in
// and out so callers cannot mutate stored maps.
type MemoryMapStore struct {
	mu   sync.RWMutex
	maps map[string]*Grid
}

func NewMemoryMapStore() *MemoryMapStore {
	return &MemoryMapStore{maps: make(map[string]*Grid)}
}

func (m *MemoryMapStore) LoadMap(name string) (*Grid, error) {
	if err := validateMapName(name); err != nil {
		return nil, err
	}
	m.mu.RLock()
	grid, ok := m.maps[name]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("load map %q: %w", name, ErrMapNotFound)
	}
	return grid.Clone(), nil
}

func (m *MemoryMapStore) SaveMap(name string, grid *Grid) error {
	if err := validateMapName(name); err != nil {
		return err
	}
	m.mu.Lock()
	m.maps[name] = grid.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryMapStore) DeleteMap(name string) error {
	if err := validateMapName(name); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.maps, name)
	m.mu.Unlock()
	return nil
}

func (m *MemoryMapStore) Names() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.maps))
	for name := range m.maps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryMapStore) Close() error {
	return nil
}
