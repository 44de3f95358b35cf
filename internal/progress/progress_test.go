package progress

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadYAMLSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.yml")
	doc := "met:\n  - Noether\n  - Curie\nfloors:\n  normal: 12\n  infinite: 3\ninfinite: true\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write progress: %v", err)
	}

	state, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !state.HasMet("Noether") || state.HasMet("Planck") {
		t.Fatalf("unexpected met set %v", state.MetNames())
	}
	if state.Floor(FloorNormal) != 12 || state.Floor(FloorSpooky) != 0 {
		t.Fatalf("unexpected floors %v", state.Floors)
	}
	if !state.Infinite {
		t.Fatalf("expected infinite mode")
	}
}

func TestLoadJSONSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "progress.json")
	if err := os.WriteFile(path, []byte(`{"met":["Rubik"],"floors":{"rubiks":2}}`), 0o600); err != nil {
		t.Fatalf("write progress: %v", err)
	}
	state, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(state.MetNames(), []string{"Rubik"}) {
		t.Fatalf("unexpected met %v", state.MetNames())
	}
}

func TestFromSnapshotRejectsNegativeCounters(t *testing.T) {
	_, err := FromSnapshot(Snapshot{Floors: map[string]int{"normal": -1}})
	if err == nil || err.Error() != "floors.normal cannot be negative" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	state := New()
	state.Met.Put("Cantor")
	state.Floors[FloorInfinite] = 4

	dup := state.Clone()
	dup.Met.Put("Lorenz")
	dup.Floors[FloorInfinite] = 9

	if state.HasMet("Lorenz") || state.Floor(FloorInfinite) != 4 {
		t.Fatalf("clone mutated original")
	}
	if !reflect.DeepEqual(dup.Snapshot().Met, []string{"Cantor", "Lorenz"}) {
		t.Fatalf("unexpected snapshot %v", dup.Snapshot())
	}
}
