// Package gfx defines the narrow GPU-facing interfaces the terrain and scene
// packages draw through. The OpenGL implementation lives in package renderer;
// gfxtest provides recording fakes.
package gfx

import "github.com/go-gl/mathgl/mgl32"

// Vertex is the interleaved vertex layout used for terrain meshes.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// FillMode selects how triangles are rasterized.
type FillMode int

const (
	FillSolid FillMode = iota
	FillWireframe
)

// CullMode selects which triangle winding is discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullClockwise
	CullCounterClockwise
)

// RasterizerState configures triangle rasterization.
type RasterizerState struct {
	Fill FillMode
	Cull CullMode
}

// MeshBuffer is a GPU-resident indexed triangle list.
type MeshBuffer interface {
	IndexCount() int
}

// Texture is a GPU-resident 2D texture.
type Texture interface {
	Size() (width, height int)
}

// Device accepts geometry and issues draw calls.
type Device interface {
	CreateMesh(vertices []Vertex, indices []uint32) (MeshBuffer, error)
	DeleteMesh(MeshBuffer)
	SetRasterizerState(RasterizerState)
	DrawIndexed(MeshBuffer)
	// DrawLines draws an indexed line list in world space with a flat color.
	DrawLines(viewProj mgl32.Mat4, points []mgl32.Vec3, indices []uint16, color [4]float32)
}

// Parameter is a named shader input.
type Parameter interface {
	SetMat4(mgl32.Mat4)
	SetVec3(mgl32.Vec3)
	SetFloat(float32)
	SetBool(bool)
	SetTexture(Texture)
}

// Pass is one rendering pass of a technique.
type Pass interface {
	Apply()
}

// Effect is a shader program collection addressed by technique and parameter names.
type Effect interface {
	SetTechnique(name string) error
	Parameter(name string) Parameter
	Passes() []Pass
}
