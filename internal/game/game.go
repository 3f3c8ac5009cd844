// Package game implements the main loop: input, camera, terrain drawing.
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/untitled-sandbox/internal/assets"
	"github.com/Faultbox/untitled-sandbox/internal/config"
	"github.com/Faultbox/untitled-sandbox/internal/engine/camera"
	"github.com/Faultbox/untitled-sandbox/internal/engine/debug"
	"github.com/Faultbox/untitled-sandbox/internal/engine/input"
	"github.com/Faultbox/untitled-sandbox/internal/engine/picking"
	"github.com/Faultbox/untitled-sandbox/internal/engine/renderer"
	"github.com/Faultbox/untitled-sandbox/internal/engine/scene"
	"github.com/Faultbox/untitled-sandbox/internal/engine/window"
	"github.com/Faultbox/untitled-sandbox/internal/inspect"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
)

// Title is the window title prefix.
const Title = "Untitled Sandbox"

// Game is the main game instance.
type Game struct {
	cfg      *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	assets   *assets.Manager
	content  *renderer.Content
	input    *input.Input
	controls *input.Controls

	pilot   *Pilot
	terrain *scene.TerrainRenderer

	screenshots *debug.ScreenshotCapture
	inspector   *inspect.Server
	log         *zap.Logger
}

// New creates the window, GL renderer, content and terrain.
func New(ctx context.Context, cfg *config.Config) (*Game, error) {
	g := &Game{
		cfg: cfg,
		log: logger.Named("game"),
	}
	g.log.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Bool("fullscreen", cfg.Graphics.Fullscreen),
	)

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:         Title,
		Width:         cfg.Graphics.Width,
		Height:        cfg.Graphics.Height,
		Fullscreen:    cfg.Graphics.Fullscreen,
		VSync:         cfg.Graphics.VSync,
		Multisampling: cfg.Graphics.Multisampling,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	g.renderer, err = renderer.New(renderer.Config{
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		ClearColor: cfg.Graphics.ClearColor,
	})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.assets = assets.NewManager()
	for _, root := range cfg.Content.Roots {
		if err := g.assets.AddRoot(root); err != nil {
			g.Close()
			return nil, err
		}
	}
	g.content = renderer.NewContent(g.assets)

	g.terrain, err = scene.NewRenderer(cfg, g.renderer, g.content)
	if err != nil {
		g.Close()
		return nil, err
	}
	start := time.Now()
	if err := g.terrain.Load(ctx); err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to load terrain: %w", err)
	}
	g.log.Info("terrain ready",
		zap.Int("triangles", g.terrain.Grid().TriangleCount()),
		zap.Duration("elapsed", time.Since(start)),
	)

	g.input = input.New()
	g.controls = input.NewControls(input.DefaultBindings())
	g.controls.IsWire = cfg.Graphics.StartWireframe
	g.window.SetRelativeMouse(g.controls.MouseCaptured)

	g.pilot = NewPilot(cfg)
	g.pilot.Resize(cfg.Graphics.Width, cfg.Graphics.Height)
	g.pilot.Orbit.FitToBounds(g.terrain.Grid().Bounds())

	g.screenshots = debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "sandbox")

	if cfg.Inspect.Enabled {
		g.inspector = inspect.New(g.terrain.Grid(), g.terrain.Generator().Name())
		if _, err := g.inspector.Start(cfg.Inspect.Addr); err != nil {
			g.log.Warn("inspector disabled", zap.Error(err))
			g.inspector = nil
		}
	}

	g.log.Info("game initialized successfully")
	return g, nil
}

// Run starts the main game loop. It returns when the player quits or ctx ends.
func (g *Game) Run(ctx context.Context) error {
	g.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	fps := 0

	g.log.Info("starting game loop")

	for g.running {
		if ctx.Err() != nil {
			break
		}

		// Calculate delta time
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		// 1. Process input
		g.input.Update()
		captured := g.controls.MouseCaptured
		actions := g.controls.Apply(g.input.Events())
		if actions.Quit {
			g.running = false
			break
		}
		if actions.Resized {
			g.renderer.Resize(actions.Width, actions.Height)
			g.pilot.Resize(actions.Width, actions.Height)
		}
		if captured != g.controls.MouseCaptured {
			g.window.SetRelativeMouse(g.controls.MouseCaptured)
		}

		// 2. Update camera
		g.pilot.Steer(actions, dt)

		// 3. Render
		g.renderer.Begin()
		stats := g.terrain.Draw(scene.Frame{
			Camera:    g.pilot.Active(),
			Wireframe: g.controls.IsWire,
		})
		if actions.Screenshot {
			g.screenshot()
		}
		g.renderer.End()

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			fps = frameCount
			g.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Int("visible", stats.Visible),
				zap.String("dt", fmt.Sprintf("%.2fms", dt*1000)),
			)
			frameCount = 0
			fpsTimer = time.Now()
			if g.cfg.Graphics.ShowTileCount {
				ground, hit := g.crosshairGround()
				g.window.SetTitle(FrameTitle(stats, fps, g.pilot.Position(), ground, hit))
			}
		}
	}

	return nil
}

// crosshairGround picks the terrain point under the screen center.
func (g *Game) crosshairGround() (mgl32.Vec3, bool) {
	w, h := g.renderer.Size()
	cam := g.pilot.Active()
	viewProj := cam.ProjectionMatrix().Mul4(cam.ViewMatrix())
	r := picking.ScreenToRay(float32(w)/2, float32(h)/2, float32(w), float32(h), viewProj.Inv())
	grid := g.terrain.Grid()
	return picking.PickGround(r, grid, grid.Config().Spacing)
}

func (g *Game) screenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		g.log.Error("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up game resources.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.inspector != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		g.inspector.Close(ctx)
		cancel()
	}
	if g.terrain != nil {
		g.terrain.Destroy()
	}
	if g.content != nil {
		g.content.Close()
	}
	if g.assets != nil {
		g.assets.Close()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}

// FrameTitle formats the window title with the visible tile count and,
// when the crosshair is over terrain, the picked ground point.
func FrameTitle(s scene.Stats, fps int, pos, ground mgl32.Vec3, onGround bool) string {
	title := fmt.Sprintf("%s | %d/%d tiles | %d fps | (%.0f, %.0f, %.0f)",
		Title, s.Visible, s.Tiles, fps, pos.X(), pos.Y(), pos.Z())
	if onGround {
		title += fmt.Sprintf(" | ground %.1f at (%.0f, %.0f)", ground.Y(), ground.X(), ground.Z())
	}
	return title
}

// Pilot owns both cameras and routes per-frame actions to the active one.
type Pilot struct {
	FirstPerson *camera.FirstPerson
	Orbit       *camera.OrbitCamera
	UseOrbit    bool

	FastMultiplier float32
}

// NewPilot builds the cameras from configuration.
func NewPilot(cfg *config.Config) *Pilot {
	cc := cfg.Camera
	lens := camera.Lens{
		FOV:    mgl32.DegToRad(cc.FOVDegrees),
		Near:   cc.Near,
		Far:    cc.Far,
		Aspect: float32(cfg.Graphics.Width) / float32(max(1, cfg.Graphics.Height)),
	}
	fp := camera.NewFirstPerson(mgl32.Vec3(cc.Position), mgl32.Vec3(cc.LookAt), lens)
	if cfg.Controls.MoveSpeed > 0 {
		fp.Speed = cfg.Controls.MoveSpeed
	}
	if cfg.Controls.MouseSensitivity > 0 {
		fp.Sensitivity = cfg.Controls.MouseSensitivity
	}
	fp.InvertY = cfg.Controls.InvertY

	fast := cfg.Controls.FastMultiplier
	if fast <= 0 {
		fast = 1
	}
	return &Pilot{
		FirstPerson:    fp,
		Orbit:          camera.NewOrbitCamera(lens),
		FastMultiplier: fast,
	}
}

// Active returns the camera used for drawing.
func (p *Pilot) Active() scene.Camera {
	if p.UseOrbit {
		return p.Orbit
	}
	return p.FirstPerson
}

// Position returns the active camera position.
func (p *Pilot) Position() mgl32.Vec3 {
	if p.UseOrbit {
		return p.Orbit.Position()
	}
	return p.FirstPerson.Position
}

// Resize updates both lenses.
func (p *Pilot) Resize(width, height int) {
	p.FirstPerson.SetAspect(width, height)
	p.Orbit.SetAspect(width, height)
}

// Steer applies one frame of actions.
func (p *Pilot) Steer(a input.Actions, dt float32) {
	if a.ToggleCamera {
		p.UseOrbit = !p.UseOrbit
	}
	if p.UseOrbit {
		p.Orbit.HandleDrag(a.LookX, a.LookY)
		p.Orbit.HandleZoom(a.Zoom)
		return
	}
	p.FirstPerson.Look(a.LookX, a.LookY)
	if a.Fast {
		dt *= p.FastMultiplier
	}
	p.FirstPerson.Move(a.Forward, a.Right, a.Up, dt)
}
