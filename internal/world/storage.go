package world

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMapNotFound is returned by a MapStore that holds no map of the requested name.
var ErrMapNotFound = errors.New("map not found")

// MapStore provides hand-authored and saved maps by name.
type MapStore interface {
	LoadMap(name string) (*Grid, error)
	SaveMap(name string, grid *Grid) error
	DeleteMap(name string) error
	Names() ([]string, error)
	Close() error
}

func validateMapName(name string) error {
	if name == "" {
		return errors.New("map name is empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Errorf("map name %q contains %q", name, r)
		}
	}
	return nil
}

// OpenMapStore picks a backend from a location string: an empty location
// keeps maps in memory, a postgres:// URL selects PostgreSQL and anything
// else is treated as a directory of map files.
func OpenMapStore(location string) (MapStore, error) {
	switch {
	case location == "":
		return NewMemoryMapStore(), nil
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		store, err := NewPostgresMapStore(location)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		store, err := NewDiskMapStore(location)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
