package math

import "github.com/go-gl/mathgl/mgl32"

// Plane is a plane in the form N·p + D = 0 with N pointing into the frustum.
type Plane struct {
	N mgl32.Vec3
	D float32
}

// Distance returns the signed distance of p from the plane (positive = inside).
func (p Plane) Distance(pt mgl32.Vec3) float32 {
	return p.N.Dot(pt) + p.D
}

// Plane indices within a Frustum.
const (
	PlaneLeft = iota
	PlaneRight
	PlaneBottom
	PlaneTop
	PlaneNear
	PlaneFar
)

// Frustum is a view volume bounded by six inward-facing planes.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the planes of a combined projection*view matrix
// (Gribb/Hartmann). Works for OpenGL clip space (-w <= z <= w).
func FrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	r0 := viewProj.Row(0)
	r1 := viewProj.Row(1)
	r2 := viewProj.Row(2)
	r3 := viewProj.Row(3)

	var f Frustum
	f.Planes[PlaneLeft] = planeFrom(r3.Add(r0))
	f.Planes[PlaneRight] = planeFrom(r3.Sub(r0))
	f.Planes[PlaneBottom] = planeFrom(r3.Add(r1))
	f.Planes[PlaneTop] = planeFrom(r3.Sub(r1))
	f.Planes[PlaneNear] = planeFrom(r3.Add(r2))
	f.Planes[PlaneFar] = planeFrom(r3.Sub(r2))
	return f
}

// NewFrustum builds the frustum for a camera's view and projection matrices.
func NewFrustum(view, projection mgl32.Mat4) Frustum {
	return FrustumFromMatrix(projection.Mul4(view))
}

func planeFrom(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{N: n, D: v.W()}
	}
	return Plane{N: n.Mul(1 / l), D: v.W() / l}
}

// IntersectsAABB reports whether any part of box may be inside the frustum.
// Conservative: boxes near a frustum corner can report true while outside.
func (f *Frustum) IntersectsAABB(box AABB) bool {
	for _, p := range f.Planes {
		// Corner of the box furthest along the plane normal.
		var v mgl32.Vec3
		for i := 0; i < 3; i++ {
			if p.N[i] >= 0 {
				v[i] = box.Max[i]
			} else {
				v[i] = box.Min[i]
			}
		}
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether pt is inside all six planes.
func (f *Frustum) ContainsPoint(pt mgl32.Vec3) bool {
	for _, p := range f.Planes {
		if p.Distance(pt) < 0 {
			return false
		}
	}
	return true
}
