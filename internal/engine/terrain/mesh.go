package terrain

import (
	"math"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
)

// texRepeat is the number of samples one texture repeat spans.
const texRepeat = 8

// Mesh is the CPU-side geometry of one tile in tile-local space.
type Mesh struct {
	Vertices  []gfx.Vertex
	Indices   []uint32
	MinHeight float32
	MaxHeight float32
}

// TriangleCount returns the number of triangles in the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// BuildMesh creates one vertex per sample and two triangles per quad.
// Local X is the column times spacing, Z the row times spacing, Y the height.
// Triangles wind counter-clockwise seen from above.
func BuildMesh(field *HeightField, spacing float32) *Mesh {
	n := field.Size()
	vertices := make([]gfx.Vertex, 0, n*n)

	for y := range n {
		for x := range n {
			vertices = append(vertices, gfx.Vertex{
				Position: [3]float32{float32(x) * spacing, field.At(x, y), float32(y) * spacing},
				Normal:   sampleNormal(field, x, y, spacing),
				TexCoord: [2]float32{float32(x) / texRepeat, float32(y) / texRepeat},
			})
		}
	}

	quads := (n - 1) * (n - 1)
	indices := make([]uint32, 0, quads*6)
	for y := range n - 1 {
		for x := range n - 1 {
			nw := uint32(y*n + x)
			ne := nw + 1
			sw := nw + uint32(n)
			se := sw + 1
			indices = append(indices,
				nw, sw, ne,
				ne, sw, se,
			)
		}
	}

	lo, hi := field.MinMax()
	return &Mesh{
		Vertices:  vertices,
		Indices:   indices,
		MinHeight: lo,
		MaxHeight: hi,
	}
}

// sampleNormal estimates the surface normal with central differences,
// falling back to one-sided differences on the border.
func sampleNormal(field *HeightField, x, y int, spacing float32) [3]float32 {
	last := field.Size() - 1
	x0, x1 := max(x-1, 0), min(x+1, last)
	y0, y1 := max(y-1, 0), min(y+1, last)

	dx := (field.At(x1, y) - field.At(x0, y)) / (float32(x1-x0) * spacing)
	dz := (field.At(x, y1) - field.At(x, y0)) / (float32(y1-y0) * spacing)
	return normalize([3]float32{-dx, 1, -dz})
}

func normalize(v [3]float32) [3]float32 {
	l := float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
