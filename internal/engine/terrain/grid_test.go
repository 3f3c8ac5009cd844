package terrain

import (
	"context"
	"errors"
	gomath "math"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

func smallGrid(t *testing.T, numTiles, workers int) *Grid {
	t.Helper()
	g, err := NewGrid(GridConfig{
		TileSize:    5,
		NumTiles:    numTiles,
		HeightScale: 10,
		Roughness:   0.5,
		Spacing:     1,
		Seed:        2024,
		Workers:     workers,
	})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if err := g.Generate(context.Background(), DiamondSquare{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return g
}

func TestNewGridRejectsInvalidConfig(t *testing.T) {
	valid := GridConfig{TileSize: 5, NumTiles: 2, HeightScale: 10, Roughness: 0.5, Spacing: 1}

	tests := []struct {
		name   string
		modify func(*GridConfig)
		want   error
	}{
		{"tile size not 2^k+1", func(c *GridConfig) { c.TileSize = 6 }, ErrInvalidTileSize},
		{"zero tiles", func(c *GridConfig) { c.NumTiles = 0 }, ErrInvalidTileCount},
		{"zero spacing", func(c *GridConfig) { c.Spacing = 0 }, ErrInvalidSpacing},
		{"roughness out of range", func(c *GridConfig) { c.Roughness = 2 }, ErrInvalidRoughness},
		{"negative scale", func(c *GridConfig) { c.HeightScale = -1 }, ErrInvalidScale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.modify(&cfg)
			if _, err := NewGrid(cfg); !errors.Is(err, tt.want) {
				t.Fatalf("NewGrid() = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := NewGrid(valid); err != nil {
		t.Fatalf("NewGrid(valid) = %v", err)
	}
}

func TestTryFetchTileOutOfRange(t *testing.T) {
	g, err := NewGrid(GridConfig{TileSize: 3, NumTiles: 3, HeightScale: 1, Roughness: 0.5, Spacing: 1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {-1, -1}, {3, 3}} {
		tile, ok := g.TryFetchTile(rc[0], rc[1])
		if ok || tile != nil {
			t.Errorf("TryFetchTile(%d,%d) = (%v, %v), want no neighbour", rc[0], rc[1], tile, ok)
		}
	}

	tile, ok := g.TryFetchTile(2, 1)
	if !ok || tile.Row != 2 || tile.Col != 1 {
		t.Errorf("TryFetchTile(2,1) = (%v, %v)", tile, ok)
	}
}

// TestGridTwoByTwo builds the reference 2×2 scene: tile size 5, height scale
// 10, roughness 0.5, seams shared, 32 triangles per tile and four draws under
// a frustum that covers everything.
func TestGridTwoByTwo(t *testing.T) {
	g := smallGrid(t, 2, 1)

	a, _ := g.TryFetchTile(0, 0)
	b, _ := g.TryFetchTile(0, 1)
	if !slices.Equal(b.Field().Edge(West), a.Field().Edge(East)) {
		t.Errorf("tile(0,1) west edge %v != tile(0,0) east edge %v",
			b.Field().Edge(West), a.Field().Edge(East))
	}

	g.LoadVertices()
	for _, tile := range g.Tiles() {
		if got := tile.TriangleCount(); got != 32 {
			t.Errorf("tile(%d,%d) triangles = %d, want 32", tile.Row, tile.Col, got)
		}
	}
	if got := g.TriangleCount(); got != 128 {
		t.Errorf("grid triangles = %d, want 128", got)
	}

	dev := gfxtest.NewDevice()
	if err := g.Upload(dev); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	f := math.FrustumFromMatrix(mgl32.Ortho(-100, 100, -100, 100, -100, 100))
	if visible := g.Update(&f); visible != 4 {
		t.Errorf("visible = %d, want 4", visible)
	}

	effect := gfxtest.NewEffect("terrain", "Textured")
	if err := effect.SetTechnique("Textured"); err != nil {
		t.Fatalf("SetTechnique: %v", err)
	}
	if drawn := g.Draw(dev, effect); drawn != 4 {
		t.Errorf("drawn = %d, want 4", drawn)
	}
	if len(dev.Draws) != 4 {
		t.Errorf("draw calls = %d, want 4", len(dev.Draws))
	}
	if p := effect.Params[WorldParam]; p == nil || p.Sets != 4 {
		t.Errorf("%s set %v times, want 4", WorldParam, p)
	}
	if effect.Techniques["Textured"][0].Applied != 4 {
		t.Errorf("pass applied %d times, want 4", effect.Techniques["Textured"][0].Applied)
	}
}

func TestGridSeamsNorthAndWest(t *testing.T) {
	g := smallGrid(t, 3, 1)

	for _, tile := range g.Tiles() {
		if west, ok := g.TryFetchTile(tile.Row, tile.Col-1); ok {
			if !slices.Equal(tile.Field().Edge(West), west.Field().Edge(East)) {
				t.Errorf("tile(%d,%d) west seam mismatch", tile.Row, tile.Col)
			}
		}
		if north, ok := g.TryFetchTile(tile.Row-1, tile.Col); ok {
			if !slices.Equal(tile.Field().Edge(North), north.Field().Edge(South)) {
				t.Errorf("tile(%d,%d) north seam mismatch", tile.Row, tile.Col)
			}
		}
	}
}

func TestGridCullsTilesBehindCamera(t *testing.T) {
	g := smallGrid(t, 2, 1)
	g.LoadVertices()
	dev := gfxtest.NewDevice()
	if err := g.Upload(dev); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	// Tiles occupy z in [0, 8]; the camera sits at z=-10 looking toward -z.
	view := mgl32.LookAtV(mgl32.Vec3{4, 0, -10}, mgl32.Vec3{4, 0, -20}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.3, 1000)
	f := math.NewFrustum(view, proj)

	if visible := g.Update(&f); visible != 0 {
		t.Errorf("visible = %d, want 0", visible)
	}
	for _, tile := range g.Tiles() {
		if tile.InView() {
			t.Errorf("tile(%d,%d) in view behind camera", tile.Row, tile.Col)
		}
	}
	effect := gfxtest.NewEffect("terrain", "Textured")
	_ = effect.SetTechnique("Textured")
	if drawn := g.Draw(dev, effect); drawn != 0 || len(dev.Draws) != 0 {
		t.Errorf("drawn = %d with %d calls, want none", drawn, len(dev.Draws))
	}
}

func TestGridPartialVisibility(t *testing.T) {
	g := smallGrid(t, 2, 1)
	g.LoadVertices()

	// Only the west column (x in [0, 4]) overlaps x in [-1, 3].
	f := math.FrustumFromMatrix(mgl32.Ortho(-1, 3, -100, 100, -100, 100))
	if visible := g.Update(&f); visible != 2 {
		t.Errorf("visible = %d, want 2", visible)
	}
	for _, tile := range g.Tiles() {
		if want := tile.Col == 0; tile.InView() != want {
			t.Errorf("tile(%d,%d) InView = %v, want %v", tile.Row, tile.Col, tile.InView(), want)
		}
	}
}

func TestGridWavefrontMatchesSequential(t *testing.T) {
	seq := smallGrid(t, 4, 1)
	par := smallGrid(t, 4, 3)

	for i, tile := range seq.Tiles() {
		other := par.Tiles()[i]
		if tile.Seed() != other.Seed() {
			t.Fatalf("tile %d seed differs", i)
		}
		if !slices.Equal(tile.Field().Samples(), other.Field().Samples()) {
			t.Errorf("tile(%d,%d) differs between sequential and parallel generation", tile.Row, tile.Col)
		}
	}
}

func TestGridSeedsAreDistinct(t *testing.T) {
	g, err := NewGrid(GridConfig{TileSize: 3, NumTiles: 4, HeightScale: 1, Roughness: 0.5, Spacing: 1, Seed: 9})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	seen := make(map[int64]bool)
	for _, tile := range g.Tiles() {
		if seen[tile.Seed()] {
			t.Errorf("duplicate seed %d", tile.Seed())
		}
		seen[tile.Seed()] = true
	}
	if _, ok := g.TileSeed(5, 5); ok {
		t.Error("TileSeed out of range reported ok")
	}
}

func TestGridGenerateCancelled(t *testing.T) {
	for _, workers := range []int{1, 4} {
		g, err := NewGrid(GridConfig{TileSize: 3, NumTiles: 3, HeightScale: 1, Roughness: 0.5, Spacing: 1, Workers: workers})
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := g.Generate(ctx, DiamondSquare{}); !errors.Is(err, context.Canceled) {
			t.Errorf("workers=%d: Generate() = %v, want context.Canceled", workers, err)
		}
	}
}

func TestGridGenerateError(t *testing.T) {
	for _, workers := range []int{1, 2} {
		g, err := NewGrid(GridConfig{TileSize: 3, NumTiles: 2, HeightScale: 1, Roughness: 0.5, Spacing: 1, Workers: workers})
		if err != nil {
			t.Fatalf("NewGrid: %v", err)
		}
		if err := g.Generate(context.Background(), failingGen{}); !errors.Is(err, errGenerate) {
			t.Errorf("workers=%d: Generate() = %v, want errGenerate", workers, err)
		}
	}
}

func TestGridOrderingPanics(t *testing.T) {
	g, err := NewGrid(GridConfig{TileSize: 3, NumTiles: 2, HeightScale: 1, Roughness: 0.5, Spacing: 1})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	f := math.FrustumFromMatrix(mgl32.Ident4())

	mustPanic(t, "LoadVertices before Generate", g.LoadVertices)
	mustPanic(t, "Update before LoadVertices", func() { g.Update(&f) })
	mustPanic(t, "Draw before LoadVertices", func() {
		g.Draw(gfxtest.NewDevice(), gfxtest.NewEffect("e", "Textured"))
	})
}

func TestGridBoundsAndDestroy(t *testing.T) {
	g := smallGrid(t, 2, 1)
	g.LoadVertices()

	b := g.Bounds()
	if b.Min.X() != 0 || b.Min.Z() != 0 || b.Max.X() != 8 || b.Max.Z() != 8 {
		t.Errorf("grid bounds = %v, want x,z in [0, 8]", b)
	}

	dev := gfxtest.NewDevice()
	if err := g.Upload(dev); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	g.Destroy(dev)
	for _, m := range dev.Meshes {
		if !m.Deleted {
			t.Errorf("mesh %d not deleted", m.ID)
		}
	}
}

func TestGridHeightAt(t *testing.T) {
	g := smallGrid(t, 2, 1)
	east, _ := g.TryFetchTile(0, 1)
	south, _ := g.TryFetchTile(1, 1)

	// Sample points reproduce the field exactly.
	if h, ok := g.HeightAt(5, 2); !ok || h != east.Field().At(1, 2) {
		t.Errorf("HeightAt(5, 2) = %v, %v; want %v", h, ok, east.Field().At(1, 2))
	}
	// The far corner belongs to the last tile.
	if h, ok := g.HeightAt(8, 8); !ok || h != south.Field().At(4, 4) {
		t.Errorf("HeightAt(8, 8) = %v, %v; want %v", h, ok, south.Field().At(4, 4))
	}

	// The quad diagonal runs from north-east to south-west, like the mesh.
	first, _ := g.TryFetchTile(0, 0)
	f := first.Field()
	want := (f.At(1, 0) + f.At(0, 1)) / 2
	if h, _ := g.HeightAt(0.5, 0.5); mgl32.Abs(h-want) > 1e-5 {
		t.Errorf("HeightAt(0.5, 0.5) = %v, want %v", h, want)
	}

	nan := float32(gomath.NaN())
	inf := float32(gomath.Inf(1))
	for _, p := range [][2]float32{{-0.1, 1}, {1, 8.5}, {9, 9}, {nan, 1}, {1, nan}, {inf, 1}, {1, -inf}} {
		if _, ok := g.HeightAt(p[0], p[1]); ok {
			t.Errorf("HeightAt(%v) should be outside the grid", p)
		}
	}

	fresh, err := NewGrid(g.Config())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fresh.HeightAt(1, 1); ok {
		t.Error("HeightAt before Generate should report false")
	}
}
