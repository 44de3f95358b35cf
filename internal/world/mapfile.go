package world

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MapParseError reports an authored map that does not follow the map schema.
type MapParseError struct {
	Reason string
}

func (e *MapParseError) Error() string {
	return "map parse: " + e.Reason
}

type mapFile struct {
	Tilemap  map[string]mapTile `json:"tilemap"`
	TileSize int                `json:"tile_size"`
	Offgrid  []mapItem          `json:"offgrid"`
	MapSize  int                `json:"map_size,omitempty"`
}

type mapTile struct {
	Type    string `json:"type"`
	Variant *int   `json:"variant"`
	Pos     []int  `json:"pos"`
}

type mapItem struct {
	Type    string    `json:"type"`
	Variant *int      `json:"variant"`
	Pos     []float64 `json:"pos"`
}

// DecodeMap parses an authored map document.
func DecodeMap(r io.Reader) (*Grid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	return UnmarshalMap(data)
}

// UnmarshalMap parses an authored map document held in memory.
func UnmarshalMap(data []byte) (*Grid, error) {
	var doc mapFile
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, &MapParseError{Reason: err.Error()}
	}
	if doc.Tilemap == nil {
		return nil, &MapParseError{Reason: "missing tilemap"}
	}
	if doc.TileSize <= 0 {
		return nil, &MapParseError{Reason: fmt.Sprintf("tile_size must be positive, got %d", doc.TileSize)}
	}

	grid := NewGrid(doc.TileSize, doc.MapSize)
	for key, raw := range doc.Tilemap {
		cell, err := parseCellKey(key)
		if err != nil {
			return nil, err
		}
		kind, variant, err := decodeKindVariant(key, raw.Type, raw.Variant)
		if err != nil {
			return nil, err
		}
		if len(raw.Pos) != 2 {
			return nil, &MapParseError{Reason: fmt.Sprintf("tile %q: pos must hold two coordinates", key)}
		}
		if raw.Pos[0] != cell.X || raw.Pos[1] != cell.Y {
			return nil, &MapParseError{Reason: fmt.Sprintf("tile %q: pos %v does not match key", key, raw.Pos)}
		}
		grid.Set(cell, TileCell{Kind: kind, Variant: variant, Cell: cell})
	}

	for i, raw := range doc.Offgrid {
		label := "offgrid[" + strconv.Itoa(i) + "]"
		kind, variant, err := decodeKindVariant(label, raw.Type, raw.Variant)
		if err != nil {
			return nil, err
		}
		if len(raw.Pos) != 2 {
			return nil, &MapParseError{Reason: label + ": pos must hold two coordinates"}
		}
		grid.AddOffgrid(OffGridItem{Kind: kind, Variant: variant, Pos: Point{X: raw.Pos[0], Y: raw.Pos[1]}})
	}

	if grid.MapSize == 0 {
		if _, hi, ok := grid.Bounds(); ok {
			grid.MapSize = max(hi.X, hi.Y) + 1
		}
	}
	return grid, nil
}

// EncodeMap writes the grid in the authored map format.
func EncodeMap(w io.Writer, grid *Grid) error {
	data, err := MarshalMap(grid)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// MarshalMap renders the grid in the authored map format.
func MarshalMap(grid *Grid) ([]byte, error) {
	doc := mapFile{
		Tilemap:  make(map[string]mapTile, grid.Len()),
		TileSize: grid.TileSize,
		Offgrid:  make([]mapItem, 0, len(grid.Offgrid)),
		MapSize:  grid.MapSize,
	}
	for _, tile := range grid.cells {
		variant := int(tile.Variant)
		doc.Tilemap[tile.Cell.String()] = mapTile{
			Type:    string(tile.Kind),
			Variant: &variant,
			Pos:     []int{tile.Cell.X, tile.Cell.Y},
		}
	}
	for _, item := range grid.Offgrid {
		variant := int(item.Variant)
		doc.Offgrid = append(doc.Offgrid, mapItem{
			Type:    string(item.Kind),
			Variant: &variant,
			Pos:     []float64{item.Pos.X, item.Pos.Y},
		})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode map: %w", err)
	}
	return data, nil
}

func parseCellKey(key string) (Cell, error) {
	xs, ys, ok := strings.Cut(key, ";")
	if !ok {
		return Cell{}, &MapParseError{Reason: fmt.Sprintf("tile key %q is not x;y", key)}
	}
	x, err := strconv.Atoi(xs)
	if err != nil {
		return Cell{}, &MapParseError{Reason: fmt.Sprintf("tile key %q: bad x", key)}
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return Cell{}, &MapParseError{Reason: fmt.Sprintf("tile key %q: bad y", key)}
	}
	return Cell{X: x, Y: y}, nil
}

func decodeKindVariant(label, name string, variant *int) (TileKind, uint8, error) {
	kind := TileKind(name)
	if !kind.Valid() {
		return "", 0, &MapParseError{Reason: fmt.Sprintf("%s: unknown type %q", label, name)}
	}
	if variant == nil {
		return "", 0, &MapParseError{Reason: label + ": missing variant"}
	}
	if *variant < 0 || *variant > 255 {
		return "", 0, &MapParseError{Reason: fmt.Sprintf("%s: variant %d out of range", label, *variant)}
	}
	return kind, uint8(*variant), nil
}
