package debug

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/internal/engine/terrain"
	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

func TestBoxLineIndicesCoverTwelveEdges(t *testing.T) {
	if len(BoxLineIndices) != BoxEdgeCount*2 {
		t.Fatalf("indices = %d, want %d", len(BoxLineIndices), BoxEdgeCount*2)
	}

	box := math.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	pts := BoxLines(box)
	seen := make(map[[2]uint16]bool)
	for i := 0; i < len(BoxLineIndices); i += 2 {
		a, b := BoxLineIndices[i], BoxLineIndices[i+1]
		// Box edges join corners differing on exactly one axis.
		diff := pts[a].Sub(pts[b])
		axes := 0
		for _, c := range diff {
			if c != 0 {
				axes++
			}
		}
		if axes != 1 {
			t.Errorf("segment %d-%d is not a box edge", a, b)
		}
		key := [2]uint16{min(a, b), max(a, b)}
		if seen[key] {
			t.Errorf("segment %d-%d repeated", a, b)
		}
		seen[key] = true
	}
}

func TestBoxBatchOffsetsIndices(t *testing.T) {
	boxes := []math.AABB{
		math.NewAABB(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}),
		math.NewAABB(mgl32.Vec3{2, 0, 0}, mgl32.Vec3{3, 1, 1}),
	}
	points, indices := BoxBatch(boxes)
	if len(points) != 16 || len(indices) != 48 {
		t.Fatalf("got %d points, %d indices", len(points), len(indices))
	}
	if indices[24] != 8 || indices[47] != 15 {
		t.Errorf("second box indices not offset: %v", indices[24:])
	}
}

func TestFlipPixels(t *testing.T) {
	// 1x2 image: bottom row red, top row blue, stored bottom-up.
	pixels := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	img, err := FlipPixels(pixels, 1, 2)
	if err != nil {
		t.Fatalf("FlipPixels: %v", err)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b == 0 {
		t.Error("top row should be blue")
	}
	if _, err := FlipPixels(pixels, 2, 2); err == nil {
		t.Error("size mismatch not reported")
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "sandbox")
	sc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	path, err := sc.CaptureFromPixels(make([]byte, 4*4*4), 4, 4)
	if err != nil {
		t.Fatalf("CaptureFromPixels: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "sandbox_2024-05-01_12-00-00") {
		t.Errorf("filename = %s", path)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 4 || cfg.Height != 4 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}
}

func generatedGrid(t *testing.T) *terrain.Grid {
	t.Helper()
	g, err := terrain.NewGrid(terrain.GridConfig{
		TileSize: 5, NumTiles: 3, HeightScale: 10, Roughness: 0.5, Spacing: 1, Seed: 8,
	})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if err := g.Generate(context.Background(), terrain.DiamondSquare{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return g
}

func TestHeightmapImage(t *testing.T) {
	img := HeightmapImage(generatedGrid(t))

	if b := img.Bounds(); b.Dx() != 13 || b.Dy() != 13 {
		t.Fatalf("size = %v, want 13x13", b)
	}
	var lo, hi uint16 = 65535, 0
	for y := range 13 {
		for x := range 13 {
			v := img.Gray16At(x, y).Y
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	if lo != 0 || hi < 65000 {
		t.Errorf("value range = [%d, %d], want full scale", lo, hi)
	}
}

func TestSeamsAreExact(t *testing.T) {
	seams := Seams(generatedGrid(t))

	// 3x3 grid: 6 east seams and 6 south seams.
	if len(seams) != 12 {
		t.Fatalf("seams = %d, want 12", len(seams))
	}
	for _, s := range seams {
		if s.MaxDelta != 0 {
			t.Errorf("tile(%d,%d) %v seam delta %v", s.Row, s.Col, s.Side, s.MaxDelta)
		}
	}
}
