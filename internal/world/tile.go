package world

import "fmt"

// TileKind enumerates the tile and marker categories a floor can hold.
type TileKind string

const (
	KindGrass          TileKind = "grass"
	KindStone          TileKind = "stone"
	KindNormal         TileKind = "normal"
	KindSpooky         TileKind = "spooky"
	KindRubiks         TileKind = "rubiks"
	KindAussie         TileKind = "aussie"
	KindSpace          TileKind = "space"
	KindCracked        TileKind = "cracked"
	KindDecor          TileKind = "decor"
	KindPotplants      TileKind = "potplants"
	KindLargeDecor     TileKind = "large_decor"
	KindSpawners       TileKind = "spawners"
	KindSpawnersPortal TileKind = "spawnersPortal"
)

// AllKinds lists every known kind in declaration order.
var AllKinds = []TileKind{
	KindGrass, KindStone, KindNormal, KindSpooky, KindRubiks, KindAussie, KindSpace, KindCracked,
	KindDecor, KindPotplants, KindLargeDecor, KindSpawners, KindSpawnersPortal,
}

// AutoTileKinds are the kinds whose variant is derived from their neighbourhood.
// They are also the only kinds a floor can be carved from.
var AutoTileKinds = []TileKind{
	KindGrass, KindStone, KindNormal, KindSpooky, KindRubiks, KindAussie, KindSpace,
}

// IsPhysics reports whether tiles of this kind participate in collision.
func (k TileKind) IsPhysics() bool {
	switch k {
	case KindGrass, KindStone, KindNormal, KindSpooky, KindRubiks, KindAussie, KindSpace, KindCracked:
		return true
	}
	return false
}

// IsAutoTile reports whether the kind is resolved by the auto-tiling pass.
func (k TileKind) IsAutoTile() bool {
	return k != KindCracked && k.IsPhysics()
}

// Valid reports whether k is one of the known kinds.
func (k TileKind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseTileKind resolves a kind by name.
func ParseTileKind(name string) (TileKind, error) {
	kind := TileKind(name)
	if !kind.Valid() {
		return "", &UnknownFloorKindError{Name: name}
	}
	return kind, nil
}

// UnknownFloorKindError is returned when a kind outside the closed set is requested.
type UnknownFloorKindError struct {
	Name string
}

func (e *UnknownFloorKindError) Error() string {
	return fmt.Sprintf("unknown floor kind %q", e.Name)
}

// Cell is an integer position in the tile grid.
type Cell struct {
	X int
	Y int
}

// Add offsets the cell.
func (c Cell) Add(o Cell) Cell {
	return Cell{X: c.X + o.X, Y: c.Y + o.Y}
}

func (c Cell) String() string {
	return fmt.Sprintf("%d;%d", c.X, c.Y)
}

// Point is a pixel position.
type Point struct {
	X float64
	Y float64
}

// TileCell is a grid-snapped tile.
type TileCell struct {
	Kind    TileKind
	Variant uint8
	Cell    Cell
}

// OffGridItem is rendered at a pixel position and never collides.
type OffGridItem struct {
	Kind    TileKind
	Variant uint8
	Pos     Point
}

// Mode selects how a predicate combines its offset cells.
type Mode int

const (
	ModeAny Mode = iota
	ModeAll
)

func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "any"
}

// ParseMode accepts "any" or "all".
func ParseMode(value string) (Mode, error) {
	switch value {
	case "any", "":
		return ModeAny, nil
	case "all":
		return ModeAll, nil
	}
	return ModeAny, fmt.Errorf("unknown predicate mode %q", value)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
