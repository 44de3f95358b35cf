package main

import (
	"fmt"
	"image"

	"github.com/gdamore/tcell/v2"

	"hilberthotel/internal/world"
)

// viewer draws one character per tile and scrolls over the floor.
type viewer struct {
	screen tcell.Screen
	grid   *world.Grid
	title  string
	camX   int
	camY   int
	styles map[world.TileKind]tcell.Style
}

func newViewer(screen tcell.Screen, grid *world.Grid, title string) *viewer {
	styles := make(map[world.TileKind]tcell.Style, len(world.DefaultKindColors))
	for kind, hex := range world.DefaultKindColors {
		styles[kind] = tcell.StyleDefault.Foreground(tcell.GetColor(hex))
	}
	v := &viewer{screen: screen, grid: grid, title: title, styles: styles}
	v.centre()
	return v
}

func glyph(tile world.TileCell) rune {
	switch {
	case tile.Kind == world.KindSpawners && tile.Variant == 0:
		return '@'
	case tile.Kind == world.KindSpawnersPortal:
		return 'O'
	case tile.Kind == world.KindSpawners:
		return 'e'
	case tile.Kind == world.KindCracked:
		return '▒'
	case tile.Kind.IsPhysics():
		return '█'
	default:
		return '?'
	}
}

// centre points the camera at the player spawn, or the middle of the map.
func (v *viewer) centre() {
	w, h := v.screen.Size()
	target := world.Cell{X: v.grid.MapSize / 2, Y: v.grid.MapSize / 2}
	for _, tile := range v.grid.Cells() {
		if tile.Kind == world.KindSpawners && tile.Variant == 0 {
			target = tile.Cell
			break
		}
	}
	v.camX = target.X - w/2
	v.camY = target.Y - (h-1)/2
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	rows := h - 1
	ts := v.grid.TileSize

	view := image.Rect(v.camX*ts, v.camY*ts, (v.camX+w)*ts, (v.camY+rows)*ts)
	v.grid.ForEachVisible(view, func(tile world.TileCell) bool {
		v.screen.SetContent(tile.Cell.X-v.camX, tile.Cell.Y-v.camY, glyph(tile), nil, v.styles[tile.Kind])
		return true
	})
	for _, item := range v.grid.Offgrid {
		c := v.grid.CellAt(item.Pos)
		x, y := c.X-v.camX, c.Y-v.camY
		if x < 0 || y < 0 || x >= w || y >= rows {
			continue
		}
		if _, occupied := v.grid.Get(c); occupied {
			continue
		}
		v.screen.SetContent(x, y, '·', nil, v.styles[item.Kind])
	}

	status := fmt.Sprintf(" %s  %dx%d  camera %d,%d  arrows/hjkl scroll, c centre, q quit", v.title, v.grid.MapSize, v.grid.MapSize, v.camX, v.camY)
	statusStyle := tcell.StyleDefault.Reverse(true)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len([]rune(status)) {
			r = []rune(status)[x]
		}
		v.screen.SetContent(x, h-1, r, nil, statusStyle)
	}
	v.screen.Show()
}

// handle applies an event and reports whether the viewer keeps running.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if !v.key(ev.Key(), ev.Rune()) {
			return false
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	v.draw()
	return true
}

func (v *viewer) key(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.camX--
	case tcell.KeyRight:
		v.camX++
	case tcell.KeyUp:
		v.camY--
	case tcell.KeyDown:
		v.camY++
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case 'h':
			v.camX -= 8
		case 'l':
			v.camX += 8
		case 'k':
			v.camY -= 8
		case 'j':
			v.camY += 8
		case 'c':
			v.centre()
		}
	}
	return true
}

func (v *viewer) run() {
	v.draw()
	for {
		ev := v.screen.PollEvent()
		if ev == nil || !v.handle(ev) {
			return
		}
	}
}
