package world

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	previewCellPixels   = 4
	previewAmbientLight = 0.2
)

// DefaultKindColors gives each kind a flat preview colour.
var DefaultKindColors = map[TileKind]string{
	KindGrass:          "#4f9d3a",
	KindStone:          "#7d7d85",
	KindNormal:         "#b48a5a",
	KindSpooky:         "#5b3f7a",
	KindRubiks:         "#d94141",
	KindAussie:         "#c8742c",
	KindSpace:          "#2a3a6e",
	KindCracked:        "#8c6d4f",
	KindDecor:          "#e0c060",
	KindPotplants:      "#3fb06a",
	KindLargeDecor:     "#c0a040",
	KindSpawners:       "#f0f0f0",
	KindSpawnersPortal: "#40e0f0",
}

// RenderPreview draws a top-down overview of the grid, one block of pixels per
// cell. Variants shade their kind colour so auto-tiling stays visible, and
// off-grid items are drawn as single-cell markers.
func RenderPreview(grid *Grid) (*image.NRGBA, error) {
	if grid == nil {
		return nil, fmt.Errorf("grid is nil")
	}
	lo, hi, ok := grid.Bounds()
	if grid.MapSize > 0 {
		lo = Cell{}
		hi = Cell{X: max(hi.X, grid.MapSize-1), Y: max(hi.Y, grid.MapSize-1)}
		ok = true
	}
	if !ok {
		return image.NewNRGBA(image.Rect(0, 0, previewCellPixels, previewCellPixels)), nil
	}

	width := (hi.X - lo.X + 1) * previewCellPixels
	height := (hi.Y - lo.Y + 1) * previewCellPixels
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	background := color.NRGBA{R: 10, G: 10, B: 18, A: 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{background}, image.Point{}, draw.Src)

	for _, tile := range grid.Cells() {
		shade := previewAmbientLight + 0.8 - 0.04*float64(tile.Variant%10)
		col := applyLighting(resolveKindColor(tile.Kind), shade)
		fillCell(img, (tile.Cell.X-lo.X)*previewCellPixels, (tile.Cell.Y-lo.Y)*previewCellPixels, previewCellPixels, col)
	}

	scale := float64(previewCellPixels) / float64(grid.TileSize)
	for _, item := range grid.Offgrid {
		col := resolveKindColor(item.Kind)
		x := int(math.Floor(item.Pos.X*scale)) - lo.X*previewCellPixels
		y := int(math.Floor(item.Pos.Y*scale)) - lo.Y*previewCellPixels
		fillCell(img, x, y, previewCellPixels/2, col)
	}
	return img, nil
}

// WritePreview encodes the grid preview as PNG.
func WritePreview(w io.Writer, grid *Grid) error {
	img, err := RenderPreview(grid)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

// SavePreview writes <outputDir>/<name>.png and returns its path.
func SavePreview(grid *Grid, outputDir, name string) (string, error) {
	if err := ensurePreviewDir(outputDir); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, name+".png")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer file.Close()
	if err := WritePreview(file, grid); err != nil {
		return "", err
	}
	return path, nil
}

func fillCell(img *image.NRGBA, x0, y0, size int, col color.NRGBA) {
	rect := image.Rect(x0, y0, x0+size, y0+size).Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, col)
		}
	}
}

func resolveKindColor(kind TileKind) color.NRGBA {
	if hex, ok := DefaultKindColors[kind]; ok {
		if col, ok := parseHexColor(hex); ok {
			return col
		}
	}
	return color.NRGBA{R: 128, G: 128, B: 128, A: 255}
}

func parseHexColor(value string) (color.NRGBA, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return color.NRGBA{}, false
	}
	trimmed = strings.TrimPrefix(trimmed, "#")
	if len(trimmed) != 6 {
		return color.NRGBA{}, false
	}
	r, ok := parseHexByte(trimmed[0:2])
	if !ok {
		return color.NRGBA{}, false
	}
	g, ok := parseHexByte(trimmed[2:4])
	if !ok {
		return color.NRGBA{}, false
	}
	b, ok := parseHexByte(trimmed[4:6])
	if !ok {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}, true
}

func parseHexByte(value string) (uint8, bool) {
	if len(value) != 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(value, 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(v), true
}

func applyLighting(base color.NRGBA, factor float64) color.NRGBA {
	factor = clamp(factor, 0, 1)
	r := uint8(math.Round(float64(base.R) * factor))
	g := uint8(math.Round(float64(base.G) * factor))
	b := uint8(math.Round(float64(base.B) * factor))
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func ensurePreviewDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("output directory is empty")
	}
	return os.MkdirAll(dir, 0o755)
}
