// Package gfxtest provides recording implementations of the gfx interfaces
// for tests that exercise rendering code without a GL context.
package gfxtest

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
)

// Mesh is a fake GPU mesh that keeps its CPU data.
type Mesh struct {
	ID       int
	Vertices []gfx.Vertex
	Indices  []uint32
	Deleted  bool
}

// IndexCount implements gfx.MeshBuffer.
func (m *Mesh) IndexCount() int { return len(m.Indices) }

// LineBatch records one DrawLines call.
type LineBatch struct {
	ViewProj mgl32.Mat4
	Points   []mgl32.Vec3
	Indices  []uint16
	Color    [4]float32
}

// Device records everything drawn through it.
type Device struct {
	Meshes     []*Mesh
	Draws      []*Mesh
	Lines      []LineBatch
	Rasterizer []gfx.RasterizerState

	// FailCreate makes CreateMesh return an error.
	FailCreate bool
}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{}
}

// CreateMesh implements gfx.Device.
func (d *Device) CreateMesh(vertices []gfx.Vertex, indices []uint32) (gfx.MeshBuffer, error) {
	if d.FailCreate {
		return nil, fmt.Errorf("gfxtest: create mesh refused")
	}
	m := &Mesh{ID: len(d.Meshes) + 1, Vertices: vertices, Indices: indices}
	d.Meshes = append(d.Meshes, m)
	return m, nil
}

// DeleteMesh implements gfx.Device.
func (d *Device) DeleteMesh(mb gfx.MeshBuffer) {
	if m, ok := mb.(*Mesh); ok {
		m.Deleted = true
	}
}

// SetRasterizerState implements gfx.Device.
func (d *Device) SetRasterizerState(s gfx.RasterizerState) {
	d.Rasterizer = append(d.Rasterizer, s)
}

// DrawIndexed implements gfx.Device.
func (d *Device) DrawIndexed(mb gfx.MeshBuffer) {
	d.Draws = append(d.Draws, mb.(*Mesh))
}

// DrawLines implements gfx.Device.
func (d *Device) DrawLines(viewProj mgl32.Mat4, points []mgl32.Vec3, indices []uint16, color [4]float32) {
	d.Lines = append(d.Lines, LineBatch{ViewProj: viewProj, Points: points, Indices: indices, Color: color})
}

// ResetFrame forgets per-frame recordings but keeps created meshes.
func (d *Device) ResetFrame() {
	d.Draws = nil
	d.Lines = nil
	d.Rasterizer = nil
}

// Texture is a fake texture.
type Texture struct {
	Name          string
	Width, Height int
}

// Size implements gfx.Texture.
func (t *Texture) Size() (int, int) { return t.Width, t.Height }

// Parameter records the last value set on it.
type Parameter struct {
	Name  string
	Value any
	Sets  int
}

func (p *Parameter) set(v any) {
	p.Value = v
	p.Sets++
}

// SetMat4 implements gfx.Parameter.
func (p *Parameter) SetMat4(m mgl32.Mat4) { p.set(m) }

// SetVec3 implements gfx.Parameter.
func (p *Parameter) SetVec3(v mgl32.Vec3) { p.set(v) }

// SetFloat implements gfx.Parameter.
func (p *Parameter) SetFloat(f float32) { p.set(f) }

// SetBool implements gfx.Parameter.
func (p *Parameter) SetBool(b bool) { p.set(b) }

// SetTexture implements gfx.Parameter.
func (p *Parameter) SetTexture(t gfx.Texture) { p.set(t) }

// Pass counts applications.
type Pass struct {
	Applied int
}

// Apply implements gfx.Pass.
func (p *Pass) Apply() { p.Applied++ }

// Effect is a fake effect with a fixed set of techniques.
type Effect struct {
	Name       string
	Techniques map[string][]*Pass
	Current    string
	Params     map[string]*Parameter
}

// NewEffect returns an effect exposing the named techniques, each with one pass.
func NewEffect(name string, techniques ...string) *Effect {
	e := &Effect{
		Name:       name,
		Techniques: make(map[string][]*Pass),
		Params:     make(map[string]*Parameter),
	}
	for _, t := range techniques {
		e.Techniques[t] = []*Pass{{}}
	}
	return e
}

// SetTechnique implements gfx.Effect.
func (e *Effect) SetTechnique(name string) error {
	if _, ok := e.Techniques[name]; !ok {
		return fmt.Errorf("gfxtest: effect %s has no technique %q", e.Name, name)
	}
	e.Current = name
	return nil
}

// Parameter implements gfx.Effect.
func (e *Effect) Parameter(name string) gfx.Parameter {
	p, ok := e.Params[name]
	if !ok {
		p = &Parameter{Name: name}
		e.Params[name] = p
	}
	return p
}

// Passes implements gfx.Effect.
func (e *Effect) Passes() []gfx.Pass {
	passes := e.Techniques[e.Current]
	out := make([]gfx.Pass, len(passes))
	for i, p := range passes {
		out[i] = p
	}
	return out
}
