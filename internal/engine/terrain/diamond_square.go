package terrain

import (
	"math/rand/v2"
)

// DiamondSquare is the fractal midpoint-displacement generator.
//
// Random draws are taken from one PCG stream per tile in a fixed order:
// the four corners (NW, NE, SW, SE), then for each level the diamond pass
// and the square pass, both row-major. Every sample position consumes exactly
// one draw whether or not a bound edge fixes its value, so the stream never
// depends on which neighbours exist.
type DiamondSquare struct{}

// Name implements FieldGenerator.
func (DiamondSquare) Name() string { return "fractal" }

// Generate implements FieldGenerator.
func (DiamondSquare) Generate(req FieldRequest) (*HeightField, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := checkEdges(req.Edges, req.Size); err != nil {
		return nil, err
	}

	size := req.Size
	last := size - 1
	h := NewHeightField(size)
	h.applyEdges(req.Edges)

	rng := newStream(req.Seed)
	scale := req.HeightScale
	offset := func() float32 {
		return float32(rng.Float64()*2-1) * scale
	}
	fixed := func(x, y int) bool {
		return fixedBy(req.Edges, size, x, y)
	}

	for _, c := range [4][2]int{{0, 0}, {last, 0}, {0, last}, {last, last}} {
		v := offset()
		if !fixed(c[0], c[1]) {
			h.set(c[0], c[1], v)
		}
	}

	for step := last; step > 1; step /= 2 {
		half := step / 2

		// Diamond: centre of each square.
		for y := half; y < last; y += step {
			for x := half; x < last; x += step {
				avg := (h.At(x-half, y-half) + h.At(x+half, y-half) +
					h.At(x-half, y+half) + h.At(x+half, y+half)) / 4
				h.set(x, y, avg+offset())
			}
		}

		// Square: edge midpoints of each square.
		for y := 0; y <= last; y += half {
			start := 0
			if (y/half)%2 == 0 {
				start = half
			}
			for x := start; x <= last; x += step {
				d := offset()
				if fixed(x, y) {
					continue
				}
				var avg float32
				switch {
				case y == 0 || y == last:
					avg = (h.At(x-half, y) + h.At(x+half, y)) / 2
				case x == 0 || x == last:
					avg = (h.At(x, y-half) + h.At(x, y+half)) / 2
				default:
					avg = (h.At(x-half, y) + h.At(x+half, y) +
						h.At(x, y-half) + h.At(x, y+half)) / 4
				}
				h.set(x, y, avg+d)
			}
		}

		scale *= req.Roughness
	}

	return h, nil
}

// newStream returns the deterministic per-tile random source.
func newStream(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}
