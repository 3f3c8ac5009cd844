// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

// BoxLineIndices is a line list over the corners returned by math.AABB.Corners:
// front face, back face, then the edges joining them.
var BoxLineIndices = []uint16{
	0, 1, 1, 2, 2, 3, 3, 0, // front
	4, 5, 5, 6, 6, 7, 7, 4, // back
	0, 4, 1, 5, 2, 6, 3, 7, // sides
}

// BoxEdgeCount is the number of line segments in a box wireframe.
const BoxEdgeCount = 12

// BoundsColor is the line color used for tile bounding boxes.
var BoundsColor = [4]float32{1, 0.2, 0.2, 1}

// BoxLines returns the corner points of box for use with BoxLineIndices.
func BoxLines(box math.AABB) []mgl32.Vec3 {
	c := box.Corners()
	return c[:]
}

// BoxBatch merges several boxes into one point list and one index list.
// At most 8192 boxes fit in 16-bit indices.
func BoxBatch(boxes []math.AABB) ([]mgl32.Vec3, []uint16) {
	points := make([]mgl32.Vec3, 0, len(boxes)*8)
	indices := make([]uint16, 0, len(boxes)*len(BoxLineIndices))
	for i, b := range boxes {
		base := uint16(i * 8)
		points = append(points, BoxLines(b)...)
		for _, idx := range BoxLineIndices {
			indices = append(indices, base+idx)
		}
	}
	return points, indices
}
