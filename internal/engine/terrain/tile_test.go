package terrain

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

// fixedGen fills every tile with values from fn.
type fixedGen struct {
	fn func(x, y int) float32
}

func (fixedGen) Name() string { return "fixed" }

func (g fixedGen) Generate(req FieldRequest) (*HeightField, error) {
	h := NewHeightField(req.Size)
	for y := range req.Size {
		for x := range req.Size {
			h.set(x, y, g.fn(x, y))
		}
	}
	return h, nil
}

type failingGen struct{}

var errGenerate = errors.New("generator broke")

func (failingGen) Name() string { return "failing" }

func (failingGen) Generate(FieldRequest) (*HeightField, error) { return nil, errGenerate }

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}

func loadedTile(t *testing.T, row, col int, gen FieldGenerator) *Tile {
	t.Helper()
	tile := NewTile(row, col, FieldParams{Size: 5, Seed: 1, HeightScale: 10, Roughness: 0.5}, 2)
	tile.SeedMap(nil, nil, nil, nil)
	if err := tile.GenerateMap(gen); err != nil {
		t.Fatalf("GenerateMap: %v", err)
	}
	tile.LoadVertices()
	return tile
}

func TestTileFlatBoundsHaveNoHeight(t *testing.T) {
	tile := loadedTile(t, 0, 0, fixedGen{func(int, int) float32 { return 0 }})

	b := tile.Bounds()
	if b.Size().Y() != 0 {
		t.Errorf("vertical extent = %v, want 0", b.Size().Y())
	}
}

func TestTileBoundsFollowHeights(t *testing.T) {
	gen := fixedGen{func(x, y int) float32 {
		switch {
		case x == 1 && y == 3:
			return -4.5
		case x == 2 && y == 2:
			return 12.25
		}
		return 1
	}}
	tile := loadedTile(t, 1, 2, gen)

	b := tile.Bounds()
	if b.Min.Y() != -4.5 || b.Max.Y() != 12.25 {
		t.Errorf("vertical bounds = [%v, %v], want [-4.5, 12.25]", b.Min.Y(), b.Max.Y())
	}

	// Size 5, spacing 2: footprint 8, origin (16, 0, 8).
	if tile.Footprint() != 8 {
		t.Errorf("Footprint() = %v, want 8", tile.Footprint())
	}
	if b.Min.X() != 16 || b.Max.X() != 24 || b.Min.Z() != 8 || b.Max.Z() != 16 {
		t.Errorf("horizontal bounds = %v", b)
	}
	origin := tile.TranslationMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if origin != (mgl32.Vec4{16, 0, 8, 1}) {
		t.Errorf("translated origin = %v, want (16,0,8)", origin)
	}
}

func TestTileTriangleCount(t *testing.T) {
	tile := loadedTile(t, 0, 0, DiamondSquare{})
	if got := tile.TriangleCount(); got != 32 {
		t.Errorf("TriangleCount() = %d, want 32", got)
	}
}

func TestTileLifecyclePanics(t *testing.T) {
	newTile := func() *Tile {
		return NewTile(0, 0, FieldParams{Size: 5, HeightScale: 1, Roughness: 0.5}, 1)
	}
	f := math.FrustumFromMatrix(mgl32.Ident4())

	mustPanic(t, "GenerateMap before SeedMap", func() {
		_ = newTile().GenerateMap(DiamondSquare{})
	})
	mustPanic(t, "LoadVertices before GenerateMap", func() {
		tile := newTile()
		tile.SeedMap(nil, nil, nil, nil)
		tile.LoadVertices()
	})
	mustPanic(t, "UpdateVisibility before LoadVertices", func() {
		newTile().UpdateVisibility(&f)
	})
	mustPanic(t, "Bounds before LoadVertices", func() {
		newTile().Bounds()
	})
	mustPanic(t, "Upload before LoadVertices", func() {
		_ = newTile().Upload(gfxtest.NewDevice())
	})
	mustPanic(t, "SeedMap after GenerateMap", func() {
		tile := newTile()
		tile.SeedMap(nil, nil, nil, nil)
		if err := tile.GenerateMap(DiamondSquare{}); err != nil {
			t.Fatalf("GenerateMap: %v", err)
		}
		tile.SeedMap(nil, nil, nil, nil)
	})
}

func TestTileDrawRequiresUpload(t *testing.T) {
	dev := gfxtest.NewDevice()
	tile := loadedTile(t, 0, 0, DiamondSquare{})

	tile.Draw(dev)
	if len(dev.Draws) != 0 {
		t.Fatalf("Draw before Upload issued %d draws", len(dev.Draws))
	}

	if err := tile.Upload(dev); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := tile.Upload(dev); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if len(dev.Meshes) != 1 {
		t.Errorf("Upload twice created %d meshes, want 1", len(dev.Meshes))
	}

	tile.Draw(dev)
	if len(dev.Draws) != 1 || dev.Draws[0].IndexCount() != 96 {
		t.Fatalf("draws = %v", dev.Draws)
	}

	tile.Destroy(dev)
	if !dev.Meshes[0].Deleted {
		t.Error("Destroy did not delete the mesh")
	}
	tile.Draw(dev)
	if len(dev.Draws) != 1 {
		t.Error("Draw after Destroy issued a draw")
	}
}

func TestTileUploadError(t *testing.T) {
	dev := gfxtest.NewDevice()
	dev.FailCreate = true
	tile := loadedTile(t, 0, 0, DiamondSquare{})
	if err := tile.Upload(dev); err == nil {
		t.Fatal("Upload succeeded on a failing device")
	}
	if tile.Uploaded() {
		t.Error("tile reports uploaded after failure")
	}
}

func TestTileGenerateError(t *testing.T) {
	tile := NewTile(0, 0, FieldParams{Size: 5, HeightScale: 1, Roughness: 0.5}, 1)
	tile.SeedMap(nil, nil, nil, nil)
	if err := tile.GenerateMap(failingGen{}); !errors.Is(err, errGenerate) {
		t.Fatalf("GenerateMap() = %v, want errGenerate", err)
	}
	if tile.Generated() {
		t.Error("tile reports generated after failure")
	}
}
