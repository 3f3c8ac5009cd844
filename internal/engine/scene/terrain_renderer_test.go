package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/internal/config"
	"github.com/Faultbox/untitled-sandbox/internal/engine/debug"
	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/untitled-sandbox/internal/engine/terrain"
)

var errMissing = errors.New("missing asset")

type fakeContent struct {
	effect       *gfxtest.Effect
	texture      *gfxtest.Texture
	effectLoads  int
	textureLoads int
	failEffect   bool
	failTexture  bool
}

func newFakeContent() *fakeContent {
	return &fakeContent{
		effect:  gfxtest.NewEffect("effects/series4", Technique),
		texture: &gfxtest.Texture{Name: "textures/grass", Width: 64, Height: 64},
	}
}

func (c *fakeContent) LoadEffect(name string) (gfx.Effect, error) {
	c.effectLoads++
	if c.failEffect {
		return nil, errMissing
	}
	return c.effect, nil
}

func (c *fakeContent) LoadTexture(name string) (gfx.Texture, error) {
	c.textureLoads++
	if c.failTexture {
		return nil, errMissing
	}
	return c.texture, nil
}

type fixedCamera struct {
	view, proj mgl32.Mat4
}

func (c fixedCamera) ViewMatrix() mgl32.Mat4       { return c.view }
func (c fixedCamera) ProjectionMatrix() mgl32.Mat4 { return c.proj }

// overview looks straight down on the 2x2 test grid from above.
func overview() fixedCamera {
	return fixedCamera{
		view: mgl32.LookAtV(mgl32.Vec3{4, 200, 4}, mgl32.Vec3{4, 0, 4}, mgl32.Vec3{0, 0, -1}),
		proj: mgl32.Perspective(mgl32.DegToRad(45), 1, 0.3, 1000),
	}
}

func awayFromGrid() fixedCamera {
	return fixedCamera{
		view: mgl32.LookAtV(mgl32.Vec3{4, 0, -10}, mgl32.Vec3{4, 0, -20}, mgl32.Vec3{0, 1, 0}),
		proj: mgl32.Perspective(mgl32.DegToRad(45), 1, 0.3, 1000),
	}
}

func testOptions() Options {
	return Options{
		Effect:         "effects/series4",
		Texture:        "textures/grass",
		Ambient:        0.2,
		LightDirection: mgl32.Vec3{1, 2, 1},
	}
}

func newTestRenderer(t *testing.T, content Content, opts Options) (*TerrainRenderer, *gfxtest.Device) {
	t.Helper()
	dev := gfxtest.NewDevice()
	r, err := NewTerrainRenderer(dev, content, terrain.GridConfig{
		TileSize: 5, NumTiles: 2, HeightScale: 10, Roughness: 0.5, Spacing: 1, Seed: 77,
	}, terrain.DiamondSquare{}, opts)
	if err != nil {
		t.Fatalf("NewTerrainRenderer: %v", err)
	}
	return r, dev
}

func TestNewTerrainRendererRejectsBadTileSize(t *testing.T) {
	_, err := NewTerrainRenderer(gfxtest.NewDevice(), newFakeContent(), terrain.GridConfig{
		TileSize: 6, NumTiles: 2, HeightScale: 10, Roughness: 0.5, Spacing: 1,
	}, terrain.DiamondSquare{}, testOptions())
	if !errors.Is(err, terrain.ErrInvalidTileSize) {
		t.Fatalf("NewTerrainRenderer() = %v, want ErrInvalidTileSize", err)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	content := newFakeContent()
	r, dev := newTestRenderer(t, content, testOptions())

	for range 3 {
		if err := r.Load(context.Background()); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if content.effectLoads != 1 || content.textureLoads != 1 {
		t.Errorf("resources loaded %d/%d times, want once", content.effectLoads, content.textureLoads)
	}
	if len(dev.Meshes) != 4 {
		t.Errorf("meshes = %d, want 4", len(dev.Meshes))
	}
	if !r.Loaded() {
		t.Error("Loaded() = false")
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*fakeContent, *gfxtest.Device)
		want   error
	}{
		{"missing effect", func(c *fakeContent, _ *gfxtest.Device) { c.failEffect = true }, errMissing},
		{"missing texture", func(c *fakeContent, _ *gfxtest.Device) { c.failTexture = true }, errMissing},
		{"no Textured technique", func(c *fakeContent, _ *gfxtest.Device) {
			c.effect = gfxtest.NewEffect("effects/series4", "Colored")
		}, nil},
		{"upload refused", func(_ *fakeContent, d *gfxtest.Device) { d.FailCreate = true }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := newFakeContent()
			r, dev := newTestRenderer(t, content, testOptions())
			tt.modify(content, dev)

			err := r.Load(context.Background())
			if err == nil {
				t.Fatal("Load succeeded")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Load() = %v, want %v", err, tt.want)
			}
			if r.Loaded() {
				t.Error("renderer reports loaded after failure")
			}
		})
	}
}

func TestDrawBeforeLoadPanics(t *testing.T) {
	r, _ := newTestRenderer(t, newFakeContent(), testOptions())
	defer func() {
		if recover() == nil {
			t.Error("Draw before Load did not panic")
		}
	}()
	r.Draw(Frame{Camera: overview()})
}

func TestDrawSetsParametersAndDrawsVisibleTiles(t *testing.T) {
	content := newFakeContent()
	r, dev := newTestRenderer(t, content, testOptions())
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cam := overview()
	stats := r.Draw(Frame{Camera: cam})

	if stats.Tiles != 4 || stats.Visible != 4 || stats.Drawn != 4 {
		t.Errorf("stats = %+v, want 4/4/4", stats)
	}
	if len(dev.Draws) != 4 {
		t.Errorf("draw calls = %d, want 4", len(dev.Draws))
	}

	e := content.effect
	if e.Current != Technique {
		t.Errorf("technique = %q", e.Current)
	}
	checks := map[string]any{
		ParamTexture:        content.texture,
		ParamView:           cam.view,
		ParamProjection:     cam.proj,
		ParamEnableLighting: true,
		ParamAmbient:        float32(0.2),
		ParamLightDirection: mgl32.Vec3{1, 2, 1}.Normalize(),
	}
	for name, want := range checks {
		p := e.Params[name]
		if p == nil {
			t.Errorf("%s never set", name)
			continue
		}
		if p.Sets != 1 {
			t.Errorf("%s set %d times per frame, want 1", name, p.Sets)
		}
		if p.Value != want {
			t.Errorf("%s = %v, want %v", name, p.Value, want)
		}
	}
	if p := e.Params[terrain.WorldParam]; p == nil || p.Sets != 4 {
		t.Errorf("%s not set per tile", terrain.WorldParam)
	}

	if len(dev.Rasterizer) != 1 {
		t.Fatalf("rasterizer set %d times", len(dev.Rasterizer))
	}
	if got := dev.Rasterizer[0]; got != (gfx.RasterizerState{Fill: gfx.FillSolid, Cull: gfx.CullClockwise}) {
		t.Errorf("rasterizer = %+v", got)
	}
	if len(dev.Lines) != 0 {
		t.Error("bounds drawn without DrawBounds")
	}
}

func TestDrawWireframeAndCulling(t *testing.T) {
	r, dev := newTestRenderer(t, newFakeContent(), testOptions())
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	stats := r.Draw(Frame{Camera: awayFromGrid(), Wireframe: true})
	if stats.Visible != 0 || stats.Drawn != 0 || len(dev.Draws) != 0 {
		t.Errorf("stats = %+v with %d draws, want nothing drawn", stats, len(dev.Draws))
	}
	if dev.Rasterizer[0].Fill != gfx.FillWireframe {
		t.Error("wireframe not applied")
	}
}

func TestDrawBounds(t *testing.T) {
	opts := testOptions()
	opts.DrawBounds = true
	r, dev := newTestRenderer(t, newFakeContent(), opts)
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	r.Draw(Frame{Camera: overview()})
	if len(dev.Lines) != 1 {
		t.Fatalf("line batches = %d, want 1", len(dev.Lines))
	}
	batch := dev.Lines[0]
	if len(batch.Points) != 4*8 || len(batch.Indices) != 4*len(debug.BoxLineIndices) {
		t.Errorf("batch has %d points, %d indices", len(batch.Points), len(batch.Indices))
	}
}

func TestDestroyAndReload(t *testing.T) {
	r, dev := newTestRenderer(t, newFakeContent(), testOptions())
	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	r.Destroy()
	for _, m := range dev.Meshes {
		if !m.Deleted {
			t.Errorf("mesh %d survived Destroy", m.ID)
		}
	}

	if err := r.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(dev.Meshes) != 8 {
		t.Errorf("meshes after reload = %d, want 8", len(dev.Meshes))
	}
	if stats := r.Draw(Frame{Camera: overview()}); stats.Drawn != 4 {
		t.Errorf("drawn after reload = %d", stats.Drawn)
	}
}

func TestNewRendererSelectsAlgorithm(t *testing.T) {
	for _, algo := range Algorithms() {
		t.Run(algo, func(t *testing.T) {
			cfg := config.Default()
			cfg.Terrain.Algorithm = algo
			cfg.Terrain.TileSize = 5
			cfg.Terrain.NumTiles = 2
			cfg.Terrain.Seed = 3

			r, err := NewRenderer(cfg, gfxtest.NewDevice(), newFakeContent())
			if err != nil {
				t.Fatalf("NewRenderer: %v", err)
			}
			if r.Generator().Name() != algo {
				t.Errorf("generator = %q, want %q", r.Generator().Name(), algo)
			}
			if err := r.Load(context.Background()); err != nil {
				t.Fatalf("Load: %v", err)
			}
		})
	}

	cfg := config.Default()
	cfg.Terrain.Algorithm = "voxel"
	if _, err := NewRenderer(cfg, gfxtest.NewDevice(), newFakeContent()); err == nil {
		t.Error("unknown algorithm accepted")
	}
}

func TestResolveSeed(t *testing.T) {
	if got := ResolveSeed(config.TerrainConfig{Seed: 12}); got != 12 {
		t.Errorf("ResolveSeed(12) = %d", got)
	}
	if got := ResolveSeed(config.TerrainConfig{}); got == 0 {
		t.Error("ResolveSeed(0) returned 0")
	}
}

func TestNewRendererSunFallback(t *testing.T) {
	cfg := config.Default()
	cfg.Terrain.TileSize = 5
	cfg.Terrain.NumTiles = 1
	cfg.Terrain.Seed = 3
	cfg.Terrain.LightDirection = [3]float32{}
	cfg.Terrain.SunAzimuth = 90
	cfg.Terrain.SunElevation = 0

	r, err := NewRenderer(cfg, gfxtest.NewDevice(), newFakeContent())
	if err != nil {
		t.Fatal(err)
	}
	if got := r.opts.LightDirection; got.Sub(mgl32.Vec3{1, 0, 0}).Len() > 1e-5 {
		t.Errorf("light direction = %v, want the sun at +X", got)
	}
}
