package terrain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

// WorldParam is the effect parameter that receives each tile's translation.
const WorldParam = "xWorld"

// GridConfig describes a square grid of tiles.
type GridConfig struct {
	TileSize    int     // samples per tile edge, 2^k+1
	NumTiles    int     // tiles per grid edge
	HeightScale float32 // initial displacement magnitude
	Roughness   float32 // displacement decay per level, (0, 1]
	Spacing     float32 // world distance between samples
	Seed        int64   // master seed; per-tile seeds derive from it
	Workers     int     // generation goroutines; <= 1 is sequential
}

// Validate checks the configuration without building anything.
func (c GridConfig) Validate() error {
	if err := ValidateTileSize(c.TileSize); err != nil {
		return err
	}
	if c.NumTiles < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTileCount, c.NumTiles)
	}
	if c.Spacing <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidSpacing, c.Spacing)
	}
	return FieldParams{Size: c.TileSize, HeightScale: c.HeightScale, Roughness: c.Roughness}.Validate()
}

// Grid owns NumTiles×NumTiles tiles. Row grows south (+Z), column grows east (+X).
type Grid struct {
	cfg   GridConfig
	tiles []*Tile

	generated bool
	loaded    bool
}

// NewGrid validates cfg and creates every tile with its derived seed.
// Seeds are drawn row-major from one stream seeded with cfg.Seed.
func NewGrid(cfg GridConfig) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("terrain grid: %w", err)
	}

	rng := newStream(cfg.Seed)
	g := &Grid{
		cfg:   cfg,
		tiles: make([]*Tile, cfg.NumTiles*cfg.NumTiles),
	}
	for row := range cfg.NumTiles {
		for col := range cfg.NumTiles {
			params := FieldParams{
				Size:        cfg.TileSize,
				Seed:        rng.Int64(),
				HeightScale: cfg.HeightScale,
				Roughness:   cfg.Roughness,
			}
			g.tiles[row*cfg.NumTiles+col] = NewTile(row, col, params, cfg.Spacing)
		}
	}
	return g, nil
}

// Config returns the grid configuration.
func (g *Grid) Config() GridConfig {
	return g.cfg
}

// NumTiles returns the number of tiles per edge.
func (g *Grid) NumTiles() int {
	return g.cfg.NumTiles
}

// TryFetchTile returns the tile at (row, col). Coordinates outside the grid
// yield (nil, false): that side simply has no neighbour.
func (g *Grid) TryFetchTile(row, col int) (*Tile, bool) {
	n := g.cfg.NumTiles
	if row < 0 || col < 0 || row >= n || col >= n {
		return nil, false
	}
	return g.tiles[row*n+col], true
}

// Tiles returns all tiles in row-major order.
func (g *Grid) Tiles() []*Tile {
	return g.tiles
}

// TileSeed returns the derived seed of the tile at (row, col).
func (g *Grid) TileSeed(row, col int) (int64, bool) {
	t, ok := g.TryFetchTile(row, col)
	if !ok {
		return 0, false
	}
	return t.Seed(), true
}

// HeightAt returns the terrain height at world (x, z), interpolated over the
// same triangles the mesh uses. It reports false outside the grid or before
// generation.
func (g *Grid) HeightAt(x, z float32) (float32, bool) {
	if !g.generated {
		return 0, false
	}
	last := g.cfg.TileSize - 1
	stride := float32(last) * g.cfg.Spacing
	extent := stride * float32(g.cfg.NumTiles)
	// Written as a positive range test so NaN falls through to false.
	if !(x >= 0 && z >= 0 && x <= extent && z <= extent) {
		return 0, false
	}

	col := min(int(x/stride), g.cfg.NumTiles-1)
	row := min(int(z/stride), g.cfg.NumTiles-1)
	t, ok := g.TryFetchTile(row, col)
	if !ok {
		return 0, false
	}
	f := t.Field()

	lx := (x - float32(col)*stride) / g.cfg.Spacing
	lz := (z - float32(row)*stride) / g.cfg.Spacing
	x0 := min(int(lx), last-1)
	z0 := min(int(lz), last-1)
	fx, fz := lx-float32(x0), lz-float32(z0)

	nw, ne := f.At(x0, z0), f.At(x0+1, z0)
	sw, se := f.At(x0, z0+1), f.At(x0+1, z0+1)
	if fx+fz <= 1 {
		return nw + fx*(ne-nw) + fz*(sw-nw), true
	}
	return se + (1-fx)*(sw-se) + (1-fz)*(ne-se), true
}

// neighbourEdge returns the edge that the neighbour on side d shares with
// (row, col), or nil when that neighbour is missing or not generated yet.
func (g *Grid) neighbourEdge(row, col int, d Direction) []float32 {
	dr, dc := d.Offset()
	n, ok := g.TryFetchTile(row+dr, col+dc)
	if !ok || !n.Generated() {
		return nil
	}
	return n.Field().Edge(d.Opposite())
}

func (g *Grid) generateTile(t *Tile, gen FieldGenerator) error {
	t.SeedMap(
		g.neighbourEdge(t.Row, t.Col, North),
		g.neighbourEdge(t.Row, t.Col, East),
		g.neighbourEdge(t.Row, t.Col, South),
		g.neighbourEdge(t.Row, t.Col, West),
	)
	return t.GenerateMap(gen)
}

// Generate fills every tile's heightfield. Tiles are generated so that the
// north and west neighbours of each tile are finished first; south and east
// neighbours do not exist yet and leave those edges unconstrained.
//
// With Workers > 1, tiles on the same anti-diagonal (row+col constant) are
// generated concurrently. The result is identical to the sequential order.
func (g *Grid) Generate(ctx context.Context, gen FieldGenerator) error {
	if g.generated {
		panic("terrain: grid generated twice")
	}
	log := logger.Named("terrain")
	start := time.Now()

	var err error
	if g.cfg.Workers <= 1 {
		err = g.generateSequential(ctx, gen)
	} else {
		err = g.generateWavefront(ctx, gen)
	}
	if err != nil {
		return err
	}

	g.generated = true
	log.Info("terrain generated",
		zap.String("algorithm", gen.Name()),
		zap.Int("tiles", len(g.tiles)),
		zap.Int("tileSize", g.cfg.TileSize),
		zap.Int("workers", max(g.cfg.Workers, 1)),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (g *Grid) generateSequential(ctx context.Context, gen FieldGenerator) error {
	for _, t := range g.tiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.generateTile(t, gen); err != nil {
			return err
		}
	}
	return nil
}

func (g *Grid) generateWavefront(ctx context.Context, gen FieldGenerator) error {
	n := g.cfg.NumTiles
	for k := 0; k <= 2*(n-1); k++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var diagonal []*Tile
		for row := max(0, k-n+1); row <= min(k, n-1); row++ {
			diagonal = append(diagonal, g.tiles[row*n+k-row])
		}

		work := make(chan *Tile, len(diagonal))
		for _, t := range diagonal {
			work <- t
		}
		close(work)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			firstErr error
		)
		workers := min(g.cfg.Workers, len(diagonal))
		wg.Add(workers)
		for range workers {
			go func() {
				defer wg.Done()
				for t := range work {
					if err := g.generateTile(t, gen); err != nil {
						mu.Lock()
						if firstErr == nil {
							firstErr = err
						}
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		if firstErr != nil {
			return firstErr
		}
	}
	return nil
}

// Generated reports whether Generate has completed.
func (g *Grid) Generated() bool {
	return g.generated
}

// Loaded reports whether LoadVertices has completed.
func (g *Grid) Loaded() bool {
	return g.loaded
}

// LoadVertices builds every tile's mesh. It panics unless Generate has
// completed for the whole grid, since edge samples are final only then.
func (g *Grid) LoadVertices() {
	if !g.generated {
		panic("terrain: LoadVertices before Generate")
	}
	for _, t := range g.tiles {
		t.LoadVertices()
	}
	g.loaded = true
}

// Upload creates GPU buffers for every tile.
func (g *Grid) Upload(dev gfx.Device) error {
	g.mustBeLoaded("Upload")
	for _, t := range g.tiles {
		if err := t.Upload(dev); err != nil {
			return err
		}
	}
	logger.Named("terrain").Debug("terrain uploaded", zap.Int("tiles", len(g.tiles)))
	return nil
}

// Update recomputes visibility of every tile and returns how many are in view.
func (g *Grid) Update(f *math.Frustum) int {
	g.mustBeLoaded("Update")
	visible := 0
	for _, t := range g.tiles {
		t.UpdateVisibility(f)
		if t.InView() {
			visible++
		}
	}
	return visible
}

// Draw binds each visible tile's translation to effect and draws it once per
// pass of the current technique. Returns the number of tiles drawn.
func (g *Grid) Draw(dev gfx.Device, effect gfx.Effect) int {
	g.mustBeLoaded("Draw")
	world := effect.Parameter(WorldParam)
	passes := effect.Passes()
	drawn := 0
	for _, t := range g.tiles {
		if !t.InView() || !t.Uploaded() {
			continue
		}
		world.SetMat4(t.TranslationMatrix())
		for _, p := range passes {
			p.Apply()
			t.Draw(dev)
		}
		drawn++
	}
	return drawn
}

// Bounds returns the union of all tile bounds.
func (g *Grid) Bounds() math.AABB {
	g.mustBeLoaded("Bounds")
	b := g.tiles[0].Bounds()
	for _, t := range g.tiles[1:] {
		b = b.Union(t.Bounds())
	}
	return b
}

// TriangleCount returns the total triangles over all tiles.
func (g *Grid) TriangleCount() int {
	g.mustBeLoaded("TriangleCount")
	total := 0
	for _, t := range g.tiles {
		total += t.TriangleCount()
	}
	return total
}

// Destroy releases all GPU buffers.
func (g *Grid) Destroy(dev gfx.Device) {
	for _, t := range g.tiles {
		t.Destroy(dev)
	}
}

func (g *Grid) mustBeLoaded(op string) {
	if !g.loaded {
		panic("terrain: grid " + op + " before LoadVertices")
	}
}
