// Package scene draws the terrain for the main loop.
package scene

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/untitled-sandbox/internal/engine/debug"
	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
	"github.com/Faultbox/untitled-sandbox/internal/engine/terrain"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

// Technique is the effect technique used for terrain.
const Technique = "Textured"

// Effect parameter names.
const (
	ParamTexture        = "xTexture"
	ParamView           = "xView"
	ParamProjection     = "xProjection"
	ParamEnableLighting = "xEnableLighting"
	ParamAmbient        = "xAmbient"
	ParamLightDirection = "xLightDirection"
)

// Content loads shared rendering resources by name.
type Content interface {
	LoadEffect(name string) (gfx.Effect, error)
	LoadTexture(name string) (gfx.Texture, error)
}

// Camera supplies the per-frame view and projection.
type Camera interface {
	ViewMatrix() mgl32.Mat4
	ProjectionMatrix() mgl32.Mat4
}

// Frame is the per-frame input to Draw.
type Frame struct {
	Camera    Camera
	Wireframe bool
}

// Stats summarizes one Draw call.
type Stats struct {
	Tiles   int // tiles in the grid
	Visible int // tiles intersecting the frustum
	Drawn   int // tiles drawn
}

// Options are the renderer's resource names and lighting.
type Options struct {
	Effect         string
	Texture        string
	Ambient        float32
	LightDirection mgl32.Vec3
	DrawBounds     bool
}

// TerrainRenderer owns the terrain grid and the effect and texture shared by
// all of its tiles.
type TerrainRenderer struct {
	dev     gfx.Device
	content Content
	gen     terrain.FieldGenerator
	opts    Options
	log     *zap.Logger

	grid    *terrain.Grid
	effect  gfx.Effect
	texture gfx.Texture
	loaded  bool
}

// NewTerrainRenderer validates the grid configuration and prepares an
// unloaded renderer. Nothing touches the device until Load.
func NewTerrainRenderer(dev gfx.Device, content Content, gridCfg terrain.GridConfig, gen terrain.FieldGenerator, opts Options) (*TerrainRenderer, error) {
	grid, err := terrain.NewGrid(gridCfg)
	if err != nil {
		return nil, err
	}
	return &TerrainRenderer{
		dev:     dev,
		content: content,
		gen:     gen,
		opts:    opts,
		log:     logger.Named("scene"),
		grid:    grid,
	}, nil
}

// Load fetches the effect and texture, generates the grid, builds the tile
// meshes and uploads them. Calling Load again after success does nothing.
func (r *TerrainRenderer) Load(ctx context.Context) error {
	if r.loaded {
		return nil
	}

	effect, err := r.content.LoadEffect(r.opts.Effect)
	if err != nil {
		return fmt.Errorf("load terrain effect %q: %w", r.opts.Effect, err)
	}
	if err := effect.SetTechnique(Technique); err != nil {
		return fmt.Errorf("load terrain effect %q: %w", r.opts.Effect, err)
	}
	tex, err := r.content.LoadTexture(r.opts.Texture)
	if err != nil {
		return fmt.Errorf("load terrain texture %q: %w", r.opts.Texture, err)
	}

	if !r.grid.Generated() {
		if err := r.grid.Generate(ctx, r.gen); err != nil {
			return fmt.Errorf("generate terrain: %w", err)
		}
	}
	if !r.grid.Loaded() {
		r.grid.LoadVertices()
	}
	if err := r.grid.Upload(r.dev); err != nil {
		r.grid.Destroy(r.dev)
		return fmt.Errorf("upload terrain: %w", err)
	}

	r.effect = effect
	r.texture = tex
	r.loaded = true

	r.log.Info("terrain loaded",
		zap.String("algorithm", r.gen.Name()),
		zap.Int("tiles", len(r.grid.Tiles())),
		zap.Int("triangles", r.grid.TriangleCount()))
	return nil
}

// Loaded reports whether Load has succeeded.
func (r *TerrainRenderer) Loaded() bool {
	return r.loaded
}

// Draw renders one frame of terrain. It panics if called before Load.
func (r *TerrainRenderer) Draw(frame Frame) Stats {
	if !r.loaded {
		panic("scene: terrain Draw before Load")
	}

	fill := gfx.FillSolid
	if frame.Wireframe {
		fill = gfx.FillWireframe
	}
	r.dev.SetRasterizerState(gfx.RasterizerState{Fill: fill, Cull: gfx.CullClockwise})

	view := frame.Camera.ViewMatrix()
	proj := frame.Camera.ProjectionMatrix()

	e := r.effect
	if err := e.SetTechnique(Technique); err != nil {
		panic(err)
	}
	e.Parameter(ParamTexture).SetTexture(r.texture)
	e.Parameter(ParamView).SetMat4(view)
	e.Parameter(ParamProjection).SetMat4(proj)
	e.Parameter(ParamEnableLighting).SetBool(true)
	e.Parameter(ParamAmbient).SetFloat(r.opts.Ambient)
	e.Parameter(ParamLightDirection).SetVec3(r.opts.LightDirection.Normalize())

	frustum := math.NewFrustum(view, proj)
	stats := Stats{Tiles: len(r.grid.Tiles())}
	stats.Visible = r.grid.Update(&frustum)
	stats.Drawn = r.grid.Draw(r.dev, e)

	if r.opts.DrawBounds {
		r.drawBounds(proj.Mul4(view))
	}
	return stats
}

func (r *TerrainRenderer) drawBounds(viewProj mgl32.Mat4) {
	var boxes []math.AABB
	for _, t := range r.grid.Tiles() {
		if t.InView() {
			boxes = append(boxes, t.Bounds())
		}
	}
	if len(boxes) == 0 {
		return
	}
	points, indices := debug.BoxBatch(boxes)
	r.dev.DrawLines(viewProj, points, indices, debug.BoundsColor)
}

// Grid returns the terrain grid.
func (r *TerrainRenderer) Grid() *terrain.Grid {
	return r.grid
}

// Generator returns the heightfield strategy in use.
func (r *TerrainRenderer) Generator() terrain.FieldGenerator {
	return r.gen
}

// Destroy releases the tile buffers. A later Load uploads them again.
func (r *TerrainRenderer) Destroy() {
	if !r.loaded {
		return
	}
	r.grid.Destroy(r.dev)
	r.loaded = false
}
