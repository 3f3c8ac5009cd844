package debug

import (
	"image"
	"image/color"

	"github.com/Faultbox/untitled-sandbox/internal/engine/terrain"
)

// HeightmapImage stitches every generated tile of grid into one grayscale
// image, darkest at the lowest sample. Shared border samples are written once.
func HeightmapImage(grid *terrain.Grid) *image.Gray16 {
	n := grid.NumTiles()
	size := grid.Config().TileSize
	side := n*(size-1) + 1

	lo, hi := heightRange(grid)
	span := hi - lo

	img := image.NewGray16(image.Rect(0, 0, side, side))
	for _, t := range grid.Tiles() {
		field := t.Field()
		if field == nil {
			continue
		}
		ox, oy := t.Col*(size-1), t.Row*(size-1)
		for y := range size {
			for x := range size {
				var v uint16
				if span > 0 {
					v = uint16((field.At(x, y) - lo) / span * 65535)
				}
				img.SetGray16(ox+x, oy+y, color.Gray16{Y: v})
			}
		}
	}
	return img
}

func heightRange(grid *terrain.Grid) (lo, hi float32) {
	first := true
	for _, t := range grid.Tiles() {
		field := t.Field()
		if field == nil {
			continue
		}
		l, h := field.MinMax()
		if first || l < lo {
			lo = l
		}
		if first || h > hi {
			hi = h
		}
		first = false
	}
	return lo, hi
}

// Seam describes the largest height difference along one shared tile edge.
type Seam struct {
	Row, Col int
	Side     terrain.Direction // East or South of tile (Row, Col)
	MaxDelta float32
}

// Seams compares every east and south edge with the neighbour across it.
func Seams(grid *terrain.Grid) []Seam {
	var out []Seam
	for _, t := range grid.Tiles() {
		if t.Field() == nil {
			continue
		}
		for _, side := range []terrain.Direction{terrain.East, terrain.South} {
			dr, dc := side.Offset()
			nb, ok := grid.TryFetchTile(t.Row+dr, t.Col+dc)
			if !ok || nb.Field() == nil {
				continue
			}
			a := t.Field().Edge(side)
			b := nb.Field().Edge(side.Opposite())
			var worst float32
			for i := range a {
				d := a[i] - b[i]
				if d < 0 {
					d = -d
				}
				worst = max(worst, d)
			}
			out = append(out, Seam{Row: t.Row, Col: t.Col, Side: side, MaxDelta: worst})
		}
	}
	return out
}
