// Package picking provides ray casting against bounding boxes and terrain.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates, viewportW/H are viewport dimensions.
// invViewProj is the inverse of the view-projection matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // Flip Y

	// Unproject near and far points
	near := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, -1}, invViewProj)
	far := mgl32.TransformCoordinate(mgl32.Vec3{ndcX, ndcY, 1}, invViewProj)

	dir := far.Sub(near)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: near, Direction: dir}
}

// IntersectPlaneY intersects a ray with a horizontal plane at the given Y level.
// Returns the intersection point (X, Z) and whether the intersection is valid.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if gomath.Abs(float64(r.Direction.Y())) < 0.001 {
		return 0, 0, false // Ray parallel to plane
	}

	t := (planeY - r.Origin.Y()) / r.Direction.Y()
	if t < 0 {
		return 0, 0, false // Intersection behind ray origin
	}

	p := r.At(t)
	return p.X(), p.Z(), true
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// It returns the entry and exit distances. If the ray starts inside the
// box, enter is 0.
func (r Ray) IntersectAABB(box math.AABB) (enter, exit float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Direction[axis]
		if d == 0 {
			if o < box.Min[axis] || o > box.Max[axis] {
				return 0, 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - o) / d
		t2 := (box.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, 0, false
	}
	return max(tmin, 0), tmax, true
}

// Ground is a height query over a bounded area.
type Ground interface {
	HeightAt(x, z float32) (float32, bool)
	Bounds() math.AABB
}

// refineSteps is the number of bisection steps after the march finds a crossing.
const refineSteps = 12

// PickGround marches the ray across the ground's bounds in steps of step
// world units and returns the first point at or below the surface.
func PickGround(r Ray, g Ground, step float32) (mgl32.Vec3, bool) {
	enter, exit, ok := r.IntersectAABB(g.Bounds())
	if !ok || step <= 0 {
		return mgl32.Vec3{}, false
	}

	below := func(t float32) (bool, bool) {
		p := r.At(t)
		h, ok := g.HeightAt(p.X(), p.Z())
		return ok && p.Y() <= h, ok
	}

	prev := enter
	for t := enter; t <= exit+step; t += step {
		t = min(t, exit)
		hit, _ := below(t)
		if hit {
			lo, hi := prev, t
			for i := 0; i < refineSteps; i++ {
				mid := (lo + hi) / 2
				if h, _ := below(mid); h {
					hi = mid
				} else {
					lo = mid
				}
			}
			return r.At(hi), true
		}
		if t == exit {
			break
		}
		prev = t
	}
	return mgl32.Vec3{}, false
}
