package terrain

// HeightField is a square grid of elevation samples stored row-major.
// x runs west to east (column), y runs north to south (row).
type HeightField struct {
	size    int
	samples []float32
}

// NewHeightField returns a flat field of size×size zero samples.
func NewHeightField(size int) *HeightField {
	return &HeightField{
		size:    size,
		samples: make([]float32, size*size),
	}
}

// Size returns the number of samples along each edge.
func (h *HeightField) Size() int {
	return h.size
}

// At returns the sample at column x, row y.
func (h *HeightField) At(x, y int) float32 {
	return h.samples[y*h.size+x]
}

func (h *HeightField) set(x, y int, v float32) {
	h.samples[y*h.size+x] = v
}

// Samples returns a copy of all samples in row-major order.
func (h *HeightField) Samples() []float32 {
	out := make([]float32, len(h.samples))
	copy(out, h.samples)
	return out
}

// Row returns a copy of row y, west to east.
func (h *HeightField) Row(y int) []float32 {
	out := make([]float32, h.size)
	copy(out, h.samples[y*h.size:(y+1)*h.size])
	return out
}

// Column returns a copy of column x, north to south.
func (h *HeightField) Column(x int) []float32 {
	out := make([]float32, h.size)
	for y := range h.size {
		out[y] = h.samples[y*h.size+x]
	}
	return out
}

// Edge returns a copy of the samples along side d, oriented as Edges expects.
func (h *HeightField) Edge(d Direction) []float32 {
	last := h.size - 1
	switch d {
	case North:
		return h.Row(0)
	case South:
		return h.Row(last)
	case West:
		return h.Column(0)
	default:
		return h.Column(last)
	}
}

// MinMax returns the lowest and highest sample.
func (h *HeightField) MinMax() (lo, hi float32) {
	if len(h.samples) == 0 {
		return 0, 0
	}
	lo, hi = h.samples[0], h.samples[0]
	for _, v := range h.samples[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// applyEdges copies every bound edge verbatim onto the field, N, E, S, W.
func (h *HeightField) applyEdges(edges Edges) {
	last := h.size - 1
	for _, d := range Directions {
		e := edges[d]
		if e == nil {
			continue
		}
		for i, v := range e {
			switch d {
			case North:
				h.set(i, 0, v)
			case South:
				h.set(i, last, v)
			case West:
				h.set(0, i, v)
			case East:
				h.set(last, i, v)
			}
		}
	}
}

// fixedBy reports whether sample (x, y) lies on a bound edge.
func fixedBy(edges Edges, size, x, y int) bool {
	last := size - 1
	return (y == 0 && edges.Bound(North)) ||
		(y == last && edges.Bound(South)) ||
		(x == 0 && edges.Bound(West)) ||
		(x == last && edges.Bound(East))
}

func checkEdges(edges Edges, size int) error {
	for _, d := range Directions {
		if e := edges[d]; e != nil && len(e) != size {
			return &EdgeError{Side: d, Got: len(e), Want: size}
		}
	}
	return nil
}

// EdgeError reports a boundary edge of the wrong length.
type EdgeError struct {
	Side      Direction
	Got, Want int
}

func (e *EdgeError) Error() string {
	return "terrain: " + e.Side.String() + " edge: " + ErrEdgeLength.Error()
}

// Unwrap lets errors.Is match ErrEdgeLength.
func (e *EdgeError) Unwrap() error {
	return ErrEdgeLength
}
