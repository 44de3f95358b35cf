package world

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func sampleGrid() *Grid {
	grid := NewGrid(16, 40)
	grid.Set(Cell{X: 18, Y: 18}, TileCell{Kind: KindNormal, Variant: 9, Cell: Cell{X: 18, Y: 18}})
	grid.Set(Cell{X: 18, Y: 17}, TileCell{Kind: KindSpawners, Variant: 0, Cell: Cell{X: 18, Y: 17}})
	grid.AddOffgrid(OffGridItem{Kind: KindPotplants, Variant: 1, Pos: Point{X: 290, Y: 272}})
	return grid
}

func TestDiskMapStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskMapStore(filepath.Join(dir, "maps"))
	if err != nil {
		t.Fatalf("NewDiskMapStore: %v", err)
	}
	defer store.Close()

	grid := sampleGrid()
	if err := store.SaveMap("lobby", grid); err != nil {
		t.Fatalf("SaveMap: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "maps", "lobby.json")); err != nil {
		t.Fatalf("expected map file: %v", err)
	}

	loaded, err := store.LoadMap("lobby")
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if !reflect.DeepEqual(loaded.Cells(), grid.Cells()) {
		t.Fatalf("tiles mismatch:\nwant %+v\n got %+v", grid.Cells(), loaded.Cells())
	}
	if !reflect.DeepEqual(loaded.Offgrid, grid.Offgrid) {
		t.Fatalf("offgrid mismatch")
	}

	names, err := store.Names()
	if err != nil {
		t.Fatalf("Names: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"lobby"}) {
		t.Fatalf("unexpected names %v", names)
	}

	if err := store.DeleteMap("lobby"); err != nil {
		t.Fatalf("DeleteMap: %v", err)
	}
	if _, err := store.LoadMap("lobby"); !errors.Is(err, ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound after delete, got %v", err)
	}
}

func TestDiskMapStoreRejectsBadNamesAndFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskMapStore(dir)
	if err != nil {
		t.Fatalf("NewDiskMapStore: %v", err)
	}
	if err := store.SaveMap("../escape", sampleGrid()); err == nil {
		t.Fatalf("expected path traversal name to be rejected")
	}

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"tilemap": 3}`), 0o600); err != nil {
		t.Fatalf("write broken map: %v", err)
	}
	_, err = store.LoadMap("broken")
	var parseErr *MapParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected MapParseError, got %v", err)
	}
}

func TestMapStoresRejectBadNames(t *testing.T) {
	disk, err := NewDiskMapStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskMapStore: %v", err)
	}
	stores := map[string]MapStore{
		"disk":     disk,
		"memory":   NewMemoryMapStore(),
		"postgres": &PostgresMapStore{},
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			for _, bad := range []string{"", "../escape", "floor one"} {
				if _, err := store.LoadMap(bad); err == nil || errors.Is(err, ErrMapNotFound) {
					t.Fatalf("LoadMap(%q) = %v, want a name error", bad, err)
				}
				if err := store.DeleteMap(bad); err == nil {
					t.Fatalf("DeleteMap(%q) accepted", bad)
				}
				if err := store.SaveMap(bad, sampleGrid()); err == nil {
					t.Fatalf("SaveMap(%q) accepted", bad)
				}
			}
		})
	}
}

func TestMemoryMapStoreCopiesGrids(t *testing.T) {
	store := NewMemoryMapStore()
	grid := sampleGrid()
	if err := store.SaveMap("boss", grid); err != nil {
		t.Fatalf("SaveMap: %v", err)
	}
	grid.Remove(Cell{X: 18, Y: 18})

	loaded, err := store.LoadMap("boss")
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if _, ok := loaded.Get(Cell{X: 18, Y: 18}); !ok {
		t.Fatalf("stored map changed with the caller's grid")
	}
	if _, err := store.LoadMap("missing"); !errors.Is(err, ErrMapNotFound) {
		t.Fatalf("expected ErrMapNotFound, got %v", err)
	}
}

func TestOpenMapStoreSelectsBackend(t *testing.T) {
	store, err := OpenMapStore("")
	if err != nil {
		t.Fatalf("OpenMapStore memory: %v", err)
	}
	if _, ok := store.(*MemoryMapStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
	store, err = OpenMapStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenMapStore disk: %v", err)
	}
	if _, ok := store.(*DiskMapStore); !ok {
		t.Fatalf("expected disk store, got %T", store)
	}
}
