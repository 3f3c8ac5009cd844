package terrain

import (
	"fmt"
	"math"
)

// Perlin is seeded 2D gradient noise.
type Perlin struct {
	perm [512]uint8
}

// NewPerlin builds a permutation table shuffled from seed.
func NewPerlin(seed int64) *Perlin {
	var base [256]uint8
	for i := range base {
		base[i] = uint8(i)
	}
	rng := newStream(seed)
	rng.Shuffle(len(base), func(i, j int) {
		base[i], base[j] = base[j], base[i]
	})

	p := &Perlin{}
	for i := range 512 {
		p.perm[i] = base[i&255]
	}
	return p
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash uint8, x, y float64) float64 {
	switch hash & 3 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	default:
		return -x - y
	}
}

// Noise2D returns noise at (x, y), roughly in [-1, 1].
func (p *Perlin) Noise2D(x, y float64) float64 {
	fx, fy := math.Floor(x), math.Floor(y)
	xi := int(fx) & 255
	yi := int(fy) & 255
	xf, yf := x-fx, y-fy
	u, v := fade(xf), fade(yf)

	aa := p.perm[int(p.perm[xi])+yi]
	ab := p.perm[int(p.perm[xi])+yi+1]
	ba := p.perm[int(p.perm[xi+1])+yi]
	bb := p.perm[int(p.perm[xi+1])+yi+1]

	x1 := lerp(u, grad(aa, xf, yf), grad(ba, xf-1, yf))
	x2 := lerp(u, grad(ab, xf, yf-1), grad(bb, xf-1, yf-1))
	return lerp(v, x1, x2)
}

// Octave2D sums octaves of Noise2D and normalizes by the total amplitude.
func (p *Perlin) Octave2D(x, y float64, octaves int, lacunarity, persistence float64) float64 {
	var total, norm float64
	freq, amp := 1.0, 1.0
	for range octaves {
		total += p.Noise2D(x*freq, y*freq) * amp
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}

// NoiseParams shape the octave noise of PerlinField.
type NoiseParams struct {
	Octaves     int
	Frequency   float64
	Lacunarity  float64
	Persistence float64
}

// PerlinField generates tiles by sampling one world-wide noise function.
// Adjacent tiles evaluate identical world coordinates along shared edges,
// so seams match without boundary exchange. Bound edges still win.
type PerlinField struct {
	noise  *Perlin
	params NoiseParams
}

// NewPerlinField returns a noise generator for the world seed.
func NewPerlinField(worldSeed int64, params NoiseParams) (*PerlinField, error) {
	if params.Octaves < 1 {
		return nil, fmt.Errorf("terrain: noise octaves must be positive, got %d", params.Octaves)
	}
	if params.Frequency <= 0 {
		return nil, fmt.Errorf("terrain: noise frequency must be positive, got %g", params.Frequency)
	}
	return &PerlinField{noise: NewPerlin(worldSeed), params: params}, nil
}

// Name implements FieldGenerator.
func (*PerlinField) Name() string { return "noise" }

// Generate implements FieldGenerator. The per-tile seed is ignored.
func (g *PerlinField) Generate(req FieldRequest) (*HeightField, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := checkEdges(req.Edges, req.Size); err != nil {
		return nil, err
	}

	size := req.Size
	h := NewHeightField(size)
	ox := req.Col * (size - 1)
	oy := req.Row * (size - 1)
	for y := range size {
		for x := range size {
			wx := float64(ox+x) * g.params.Frequency
			wy := float64(oy+y) * g.params.Frequency
			n := g.noise.Octave2D(wx, wy, g.params.Octaves, g.params.Lacunarity, g.params.Persistence)
			h.set(x, y, float32(n)*req.HeightScale)
		}
	}
	h.applyEdges(req.Edges)
	return h, nil
}
