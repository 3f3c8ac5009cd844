// Package camera provides camera implementations for 3D rendering.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

// maxPitch keeps the first-person camera just short of straight up or down.
const maxPitch = 89 * gomath.Pi / 180

// Lens holds the projection shared by every camera.
type Lens struct {
	FOV    float32 // vertical field of view, radians
	Near   float32
	Far    float32
	Aspect float32
}

// ProjectionMatrix returns the perspective projection.
func (l *Lens) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(l.FOV, l.Aspect, l.Near, l.Far)
}

// SetAspect updates the aspect ratio after a resize.
func (l *Lens) SetAspect(width, height int) {
	if height <= 0 {
		return
	}
	l.Aspect = float32(width) / float32(height)
}

// FirstPerson is a free-flying camera steered by yaw and pitch.
// Yaw 0 looks down -Z; positive yaw turns toward +X.
type FirstPerson struct {
	Lens

	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32

	Speed       float32 // world units per second
	Sensitivity float32 // radians per mouse count
	InvertY     bool
}

// NewFirstPerson creates a camera at position looking at target.
func NewFirstPerson(position, target mgl32.Vec3, lens Lens) *FirstPerson {
	c := &FirstPerson{
		Lens:        lens,
		Position:    position,
		Speed:       60,
		Sensitivity: 0.0025,
	}
	c.LookAt(target)
	return c
}

// LookAt turns the camera toward target.
func (c *FirstPerson) LookAt(target mgl32.Vec3) {
	dir := target.Sub(c.Position)
	if dir.Len() == 0 {
		return
	}
	dir = dir.Normalize()
	c.Pitch = float32(gomath.Asin(float64(dir.Y())))
	c.Yaw = float32(gomath.Atan2(float64(dir.X()), float64(-dir.Z())))
	c.clampPitch()
}

// Forward returns the unit view direction.
func (c *FirstPerson) Forward() mgl32.Vec3 {
	sy, cy := gomath.Sincos(float64(c.Yaw))
	sp, cp := gomath.Sincos(float64(c.Pitch))
	return mgl32.Vec3{float32(sy * cp), float32(sp), float32(-cy * cp)}
}

// Right returns the horizontal unit vector to the camera's right.
func (c *FirstPerson) Right() mgl32.Vec3 {
	sy, cy := gomath.Sincos(float64(c.Yaw))
	return mgl32.Vec3{float32(cy), 0, float32(sy)}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FirstPerson) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Forward()), mgl32.Vec3{0, 1, 0})
}

// ViewProjection returns projection × view.
func (c *FirstPerson) ViewProjection() mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix())
}

// Frustum returns the current view frustum.
func (c *FirstPerson) Frustum() math.Frustum {
	return math.FrustumFromMatrix(c.ViewProjection())
}

// Look applies a mouse delta in counts.
func (c *FirstPerson) Look(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	if c.InvertY {
		c.Pitch += dy * c.Sensitivity
	} else {
		c.Pitch -= dy * c.Sensitivity
	}
	c.clampPitch()
}

// Move translates the camera. forward follows the view direction, right is
// horizontal, up is world Y. Each axis is in [-1, 1] and scaled by Speed*dt.
func (c *FirstPerson) Move(forward, right, up, dt float32) {
	step := c.Speed * dt
	delta := c.Forward().Mul(forward).
		Add(c.Right().Mul(right)).
		Add(mgl32.Vec3{0, up, 0})
	c.Position = c.Position.Add(delta.Mul(step))
}

func (c *FirstPerson) clampPitch() {
	c.Pitch = mgl32.Clamp(c.Pitch, -maxPitch, maxPitch)
}

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Lens

	Center mgl32.Vec3

	// Spherical coordinates
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera(lens Lens) *OrbitCamera {
	return &OrbitCamera{
		Lens:            lens,
		Distance:        200.0,
		RotationX:       0.5,
		MinDistance:     20.0,
		MaxDistance:     5000.0,
		MinPitch:        0.1,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() mgl32.Vec3 {
	sx, cx := gomath.Sincos(float64(c.RotationX))
	sy, cy := gomath.Sincos(float64(c.RotationY))
	return c.Center.Add(mgl32.Vec3{
		c.Distance * float32(cx*sy),
		c.Distance * float32(sx),
		c.Distance * float32(cx*cy),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX = mgl32.Clamp(c.RotationX+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// FitToBounds centers the camera on box and backs off far enough to see it.
func (c *OrbitCamera) FitToBounds(box math.AABB) {
	c.Center = box.Center()
	size := box.Size()
	c.Distance = mgl32.Clamp(max(size.X(), size.Z())*0.75, c.MinDistance, c.MaxDistance)
	c.RotationX = 0.6
	c.RotationY = 0
}
