package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

type tileState int

const (
	tileCreated tileState = iota
	tileSeeded
	tileGenerated
	tileLoaded
)

// Tile is one square patch of terrain at grid position (Row, Col).
//
// The lifecycle is SeedMap, GenerateMap, LoadVertices, then optionally
// Upload. Calling a step out of order is a programming error and panics.
type Tile struct {
	Row, Col int

	params  FieldParams
	spacing float32
	state   tileState

	edges Edges
	field *HeightField
	mesh  *Mesh

	translation mgl32.Mat4
	bounds      math.AABB
	inView      bool

	buffer gfx.MeshBuffer
}

// NewTile creates an empty tile. Spacing is the world distance between samples.
func NewTile(row, col int, params FieldParams, spacing float32) *Tile {
	t := &Tile{
		Row:     row,
		Col:     col,
		params:  params,
		spacing: spacing,
	}
	stride := t.Footprint()
	t.translation = mgl32.Translate3D(float32(col)*stride, 0, float32(row)*stride)
	return t
}

// Seed returns the tile's random stream seed.
func (t *Tile) Seed() int64 {
	return t.params.Seed
}

// Footprint is the world width of the tile. Adjacent tiles share their
// border samples, so this is (Size-1)*spacing.
func (t *Tile) Footprint() float32 {
	return float32(t.params.Size-1) * t.spacing
}

// SeedMap binds neighbour edges as boundary constraints. A nil edge means
// "no neighbour". Must precede GenerateMap.
func (t *Tile) SeedMap(north, east, south, west []float32) {
	if t.state > tileSeeded {
		panic(fmt.Sprintf("terrain: tile (%d,%d) seeded after generation", t.Row, t.Col))
	}
	t.edges = Edges{North: north, East: east, South: south, West: west}
	t.state = tileSeeded
}

// GenerateMap runs gen with the bound edges.
func (t *Tile) GenerateMap(gen FieldGenerator) error {
	if t.state != tileSeeded {
		panic(fmt.Sprintf("terrain: tile (%d,%d) generated before SeedMap", t.Row, t.Col))
	}
	field, err := gen.Generate(FieldRequest{
		FieldParams: t.params,
		Row:         t.Row,
		Col:         t.Col,
		Edges:       t.edges,
	})
	if err != nil {
		return fmt.Errorf("tile (%d,%d): %w", t.Row, t.Col, err)
	}
	t.field = field
	t.state = tileGenerated
	return nil
}

// Generated reports whether the heightfield is ready.
func (t *Tile) Generated() bool {
	return t.state >= tileGenerated
}

// Field returns the generated heightfield, or nil before GenerateMap.
func (t *Tile) Field() *HeightField {
	return t.field
}

// LoadVertices builds the mesh and world bounds from the heightfield.
func (t *Tile) LoadVertices() {
	if t.state < tileGenerated {
		panic(fmt.Sprintf("terrain: tile (%d,%d) loaded before GenerateMap", t.Row, t.Col))
	}
	t.mesh = BuildMesh(t.field, t.spacing)

	origin := t.translation.Col(3).Vec3()
	fp := t.Footprint()
	t.bounds = math.NewAABB(
		mgl32.Vec3{origin.X(), t.mesh.MinHeight, origin.Z()},
		mgl32.Vec3{origin.X() + fp, t.mesh.MaxHeight, origin.Z() + fp},
	)
	t.state = tileLoaded
}

// Loaded reports whether LoadVertices has run.
func (t *Tile) Loaded() bool {
	return t.state == tileLoaded
}

// Mesh returns the CPU mesh, or nil before LoadVertices.
func (t *Tile) Mesh() *Mesh {
	return t.mesh
}

// TriangleCount returns the number of mesh triangles.
func (t *Tile) TriangleCount() int {
	t.mustBeLoaded("TriangleCount")
	return t.mesh.TriangleCount()
}

// Bounds returns the world-space bounding box.
func (t *Tile) Bounds() math.AABB {
	t.mustBeLoaded("Bounds")
	return t.bounds
}

// TranslationMatrix places the tile's local mesh in the world.
func (t *Tile) TranslationMatrix() mgl32.Mat4 {
	return t.translation
}

// Upload creates the GPU buffers for the mesh.
func (t *Tile) Upload(dev gfx.Device) error {
	t.mustBeLoaded("Upload")
	if t.buffer != nil {
		return nil
	}
	buf, err := dev.CreateMesh(t.mesh.Vertices, t.mesh.Indices)
	if err != nil {
		return fmt.Errorf("tile (%d,%d): upload: %w", t.Row, t.Col, err)
	}
	t.buffer = buf
	return nil
}

// Uploaded reports whether the tile owns GPU buffers.
func (t *Tile) Uploaded() bool {
	return t.buffer != nil
}

// UpdateVisibility recomputes InView against the camera frustum.
func (t *Tile) UpdateVisibility(f *math.Frustum) {
	t.mustBeLoaded("UpdateVisibility")
	t.inView = f.IntersectsAABB(t.bounds)
}

// InView reports the result of the last UpdateVisibility.
func (t *Tile) InView() bool {
	return t.inView
}

// Draw issues the draw call for the tile. No-op until uploaded.
func (t *Tile) Draw(dev gfx.Device) {
	if t.buffer == nil {
		return
	}
	dev.DrawIndexed(t.buffer)
}

// Destroy releases the GPU buffers. The CPU mesh is kept.
func (t *Tile) Destroy(dev gfx.Device) {
	if t.buffer == nil {
		return
	}
	dev.DeleteMesh(t.buffer)
	t.buffer = nil
	t.inView = false
}

func (t *Tile) mustBeLoaded(op string) {
	if t.state != tileLoaded {
		panic(fmt.Sprintf("terrain: tile (%d,%d) %s before LoadVertices", t.Row, t.Col, op))
	}
}
