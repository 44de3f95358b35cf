package world

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const sampleMap = `{
  "tilemap": {
    "3;4": {"type": "normal", "variant": 5, "pos": [3, 4]},
    "-1;0": {"type": "spawners", "variant": 0, "pos": [-1, 0]}
  },
  "tile_size": 16,
  "offgrid": [
    {"type": "decor", "variant": 2, "pos": [12.5, 40]}
  ]
}`

func TestDecodeMap(t *testing.T) {
	grid, err := DecodeMap(strings.NewReader(sampleMap))
	if err != nil {
		t.Fatalf("DecodeMap: %v", err)
	}
	if grid.TileSize != 16 {
		t.Fatalf("unexpected tile size %d", grid.TileSize)
	}
	tile, ok := grid.Get(Cell{X: 3, Y: 4})
	if !ok || tile.Kind != KindNormal || tile.Variant != 5 {
		t.Fatalf("unexpected tile at 3;4: %+v (ok=%v)", tile, ok)
	}
	if _, ok := grid.Get(Cell{X: -1, Y: 0}); !ok {
		t.Fatalf("expected negative coordinate tile")
	}
	if len(grid.Offgrid) != 1 || grid.Offgrid[0].Pos != (Point{X: 12.5, Y: 40}) {
		t.Fatalf("unexpected offgrid items %+v", grid.Offgrid)
	}
	if grid.MapSize != 5 {
		t.Fatalf("expected derived map size 5, got %d", grid.MapSize)
	}
}

func TestDecodeMapRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `{"tilemap":`},
		{name: "missing tilemap", doc: `{"tile_size": 16, "offgrid": []}`},
		{name: "bad tile size", doc: `{"tilemap": {}, "tile_size": 0}`},
		{name: "bad key", doc: `{"tilemap": {"3,4": {"type": "normal", "variant": 0, "pos": [3, 4]}}, "tile_size": 16}`},
		{name: "pos mismatch", doc: `{"tilemap": {"3;4": {"type": "normal", "variant": 0, "pos": [4, 3]}}, "tile_size": 16}`},
		{name: "unknown type", doc: `{"tilemap": {"3;4": {"type": "lava", "variant": 0, "pos": [3, 4]}}, "tile_size": 16}`},
		{name: "missing variant", doc: `{"tilemap": {"3;4": {"type": "normal", "pos": [3, 4]}}, "tile_size": 16}`},
		{name: "variant overflow", doc: `{"tilemap": {"3;4": {"type": "normal", "variant": 300, "pos": [3, 4]}}, "tile_size": 16}`},
		{name: "offgrid pos", doc: `{"tilemap": {}, "tile_size": 16, "offgrid": [{"type": "decor", "variant": 1, "pos": [1]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMap(strings.NewReader(tt.doc))
			var parseErr *MapParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected MapParseError, got %v", err)
			}
		})
	}
}

func TestEncodeMapRoundTrip(t *testing.T) {
	grid := NewGrid(16, 46)
	grid.Set(Cell{X: 20, Y: 21}, TileCell{Kind: KindSpooky, Variant: 13, Cell: Cell{X: 20, Y: 21}})
	grid.Set(Cell{X: 19, Y: 21}, TileCell{Kind: KindSpawnersPortal, Variant: 5, Cell: Cell{X: 19, Y: 21}})
	grid.AddOffgrid(OffGridItem{Kind: KindSpawners, Variant: 24, Pos: Point{X: 320, Y: 336}})

	var buf bytes.Buffer
	if err := EncodeMap(&buf, grid); err != nil {
		t.Fatalf("EncodeMap: %v", err)
	}
	if !strings.Contains(buf.String(), `"20;21"`) {
		t.Fatalf("expected x;y keys in %s", buf.String())
	}

	decoded, err := DecodeMap(&buf)
	if err != nil {
		t.Fatalf("DecodeMap: %v", err)
	}
	if decoded.MapSize != 46 || decoded.Len() != 2 || len(decoded.Offgrid) != 1 {
		t.Fatalf("unexpected decoded grid: size=%d tiles=%d offgrid=%d", decoded.MapSize, decoded.Len(), len(decoded.Offgrid))
	}
	tile, _ := decoded.Get(Cell{X: 20, Y: 21})
	if tile.Kind != KindSpooky || tile.Variant != 13 {
		t.Fatalf("unexpected tile %+v", tile)
	}
}
