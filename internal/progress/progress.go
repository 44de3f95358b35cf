// Package progress holds the read-only progression snapshot the level
// pipeline consults: which characters the player has met and how many floors
// of each kind they have cleared.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zyedidia/generic/mapset"
	"gopkg.in/yaml.v3"
)

// Floor counter keys.
const (
	FloorNormal   = "normal"
	FloorGrass    = "grass"
	FloorStone    = "stone"
	FloorSpooky   = "spooky"
	FloorRubiks   = "rubiks"
	FloorAussie   = "aussie"
	FloorSpace    = "space"
	FloorInfinite = "infinite"
)

// State is a snapshot of the player's progression.
type State struct {
	Met      mapset.Set[string]
	Floors   map[string]int
	Infinite bool
}

func New() *State {
	return &State{
		Met:    mapset.New[string](),
		Floors: make(map[string]int),
	}
}

// HasMet reports whether the named character has been met.
func (s *State) HasMet(name string) bool {
	return s.Met.Has(name)
}

// Floor returns the counter for a floor kind, zero when unset.
func (s *State) Floor(kind string) int {
	return s.Floors[kind]
}

// MetNames lists the met characters in sorted order.
func (s *State) MetNames() []string {
	names := make([]string, 0, s.Met.Size())
	s.Met.Each(func(name string) {
		names = append(names, name)
	})
	sort.Strings(names)
	return names
}

// Clone returns a copy that shares nothing with s.
func (s *State) Clone() *State {
	dup := New()
	s.Met.Each(func(name string) {
		dup.Met.Put(name)
	})
	for kind, n := range s.Floors {
		dup.Floors[kind] = n
	}
	dup.Infinite = s.Infinite
	return dup
}

// Snapshot is the serialised form of State.
type Snapshot struct {
	Met      []string       `json:"met" yaml:"met"`
	Floors   map[string]int `json:"floors" yaml:"floors"`
	Infinite bool           `json:"infinite" yaml:"infinite"`
}

func (s *State) Snapshot() Snapshot {
	floors := make(map[string]int, len(s.Floors))
	for kind, n := range s.Floors {
		floors[kind] = n
	}
	return Snapshot{Met: s.MetNames(), Floors: floors, Infinite: s.Infinite}
}

// FromSnapshot builds a State, rejecting negative floor counters.
func FromSnapshot(snap Snapshot) (*State, error) {
	state := New()
	for _, name := range snap.Met {
		state.Met.Put(name)
	}
	for kind, n := range snap.Floors {
		if n < 0 {
			return nil, fmt.Errorf("floors.%s cannot be negative", kind)
		}
		state.Floors[kind] = n
	}
	state.Infinite = snap.Infinite
	return state, nil
}

// Load reads a snapshot from a .yaml/.yml or JSON file. An empty path returns
// a fresh State.
func Load(path string) (*State, error) {
	if path == "" {
		return New(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	var snap Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parse progress yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("parse progress json: %w", err)
		}
	}
	return FromSnapshot(snap)
}
