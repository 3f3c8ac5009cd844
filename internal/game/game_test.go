package game

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/internal/config"
	"github.com/Faultbox/untitled-sandbox/internal/engine/camera"
	"github.com/Faultbox/untitled-sandbox/internal/engine/input"
	"github.com/Faultbox/untitled-sandbox/internal/engine/scene"
)

func TestFrameTitle(t *testing.T) {
	stats := scene.Stats{Tiles: 100, Visible: 37, Drawn: 37}
	got := FrameTitle(stats, 60, mgl32.Vec3{1.4, 20, -99.6}, mgl32.Vec3{}, false)
	for _, want := range []string{Title, "37/100 tiles", "60 fps", "(1, 20, -100)"} {
		if !strings.Contains(got, want) {
			t.Errorf("title %q missing %q", got, want)
		}
	}
	if strings.Contains(got, "ground") {
		t.Errorf("title %q reports ground without a pick", got)
	}

	got = FrameTitle(stats, 60, mgl32.Vec3{}, mgl32.Vec3{12, 3.25, 40}, true)
	if !strings.Contains(got, "ground 3.2 at (12, 40)") && !strings.Contains(got, "ground 3.3 at (12, 40)") {
		t.Errorf("title %q missing ground pick", got)
	}
}

func TestNewPilotFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Controls.MoveSpeed = 10
	cfg.Controls.FastMultiplier = 3
	cfg.Controls.InvertY = true

	p := NewPilot(cfg)
	fp := p.FirstPerson
	if fp.Speed != 10 || !fp.InvertY {
		t.Errorf("speed %v invertY %v", fp.Speed, fp.InvertY)
	}
	if fp.Position != (mgl32.Vec3{0, 0, -100}) {
		t.Errorf("position = %v", fp.Position)
	}
	// Looking from z=-100 at the origin faces +Z.
	if f := fp.Forward(); f.Z() < 0.99 {
		t.Errorf("forward = %v, want +Z", f)
	}
	if want := float32(1280) / 720; fp.Aspect != want {
		t.Errorf("aspect = %v, want %v", fp.Aspect, want)
	}
	if _, ok := p.Active().(*camera.FirstPerson); !ok {
		t.Error("first-person camera should be active initially")
	}
}

func TestPilotSteer(t *testing.T) {
	cfg := config.Default()
	cfg.Controls.MoveSpeed = 10
	cfg.Controls.FastMultiplier = 4
	p := NewPilot(cfg)
	start := p.FirstPerson.Position

	p.Steer(input.Actions{Up: 1}, 0.5)
	if got := p.FirstPerson.Position.Y() - start.Y(); got != 5 {
		t.Errorf("climb = %v, want 5", got)
	}

	p.Steer(input.Actions{Up: 1, Fast: true}, 0.5)
	if got := p.FirstPerson.Position.Y() - start.Y(); got != 25 {
		t.Errorf("climb with fast = %v, want 25", got)
	}

	p.Steer(input.Actions{ToggleCamera: true, Zoom: 1}, 0.1)
	if !p.UseOrbit {
		t.Fatal("toggle should switch to orbit")
	}
	if _, ok := p.Active().(*camera.OrbitCamera); !ok {
		t.Error("orbit camera should be active")
	}
	if p.Orbit.Distance >= 200 {
		t.Errorf("zoom in should shorten distance, got %v", p.Orbit.Distance)
	}
	before := p.FirstPerson.Position
	p.Steer(input.Actions{Forward: 1}, 1)
	if p.FirstPerson.Position != before {
		t.Error("first-person camera moved while orbit was active")
	}
}

func TestPilotResize(t *testing.T) {
	p := NewPilot(config.Default())
	p.Resize(800, 400)
	if p.FirstPerson.Aspect != 2 || p.Orbit.Aspect != 2 {
		t.Errorf("aspects = %v, %v", p.FirstPerson.Aspect, p.Orbit.Aspect)
	}
}
