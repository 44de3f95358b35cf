package world

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const mapFileExt = ".json"

// DiskMapStore reads and writes authored map files beneath a directory, one
// <name>.json file per map.
type DiskMapStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewDiskMapStore creates a store rooted at basePath, creating the directory if needed.
func NewDiskMapStore(basePath string) (*DiskMapStore, error) {
	if basePath == "" {
		return nil, errors.New("map directory is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create map directory: %w", err)
	}
	return &DiskMapStore{basePath: basePath}, nil
}

func (s *DiskMapStore) mapPath(name string) (string, error) {
	if err := validateMapName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, name+mapFileExt), nil
}

func (s *DiskMapStore) LoadMap(name string) (*Grid, error) {
	path, err := s.mapPath(name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	f, err := os.Open(path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load map %q: %w", name, ErrMapNotFound)
		}
		return nil, fmt.Errorf("open map file: %w", err)
	}
	defer f.Close()

	grid, err := DecodeMap(f)
	if err != nil {
		return nil, fmt.Errorf("load map %q: %w", name, err)
	}
	return grid, nil
}

// SaveMap writes the map to a temporary file and renames it into place.
func (s *DiskMapStore) SaveMap(name string, grid *Grid) error {
	path, err := s.mapPath(name)
	if err != nil {
		return err
	}
	data, err := MarshalMap(grid)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.basePath, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create map file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write map file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync map file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close map file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename map file: %w", err)
	}
	return nil
}

func (s *DiskMapStore) DeleteMap(name string) error {
	path, err := s.mapPath(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete map file: %w", err)
	}
	return nil
}

func (s *DiskMapStore) Names() ([]string, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.basePath)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list map directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), mapFileExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), mapFileExt)
		if err := validateMapName(name); err != nil {
			log.Printf("disk map store skipping %s: %v", entry.Name(), err)
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *DiskMapStore) Close() error {
	return nil
}
