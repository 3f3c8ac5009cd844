// Package lighting provides lighting utilities for 3D rendering.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts compass angles in degrees to a light direction.
// Azimuth is rotation around Y from +Z toward +X (0-360), elevation is the
// height above the horizon (0-90). The result is normalized and points
// toward the sun.
func SunDirection(azimuth, elevation float32) mgl32.Vec3 {
	az := float64(mgl32.DegToRad(azimuth))
	el := float64(mgl32.DegToRad(elevation))

	return mgl32.Vec3{
		float32(math.Cos(el) * math.Sin(az)),
		float32(math.Sin(el)),
		float32(math.Cos(el) * math.Cos(az)),
	}
}

// Resolve returns dir normalized, or the sun direction when dir is zero.
func Resolve(dir mgl32.Vec3, azimuth, elevation float32) mgl32.Vec3 {
	if dir.Len() == 0 {
		return SunDirection(azimuth, elevation)
	}
	return dir.Normalize()
}
