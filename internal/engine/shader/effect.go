package shader

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
)

// ErrUnknownTechnique is returned by SetTechnique for names the effect lacks.
var ErrUnknownTechnique = errors.New("unknown technique")

// Manifest describes an effect: named techniques, each a list of passes
// built from a vertex and a fragment source file.
//
//	techniques:
//	  Textured:
//	    - vertex: effects/terrain.vert
//	      fragment: effects/terrain.frag
type Manifest struct {
	Techniques map[string][]PassSource `yaml:"techniques"`
}

// PassSource names the GLSL files of one pass.
type PassSource struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

// ParseManifest decodes and checks an effect manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing effect manifest: %w", err)
	}
	if len(m.Techniques) == 0 {
		return nil, errors.New("effect manifest has no techniques")
	}
	for name, passes := range m.Techniques {
		if len(passes) == 0 {
			return nil, fmt.Errorf("technique %q has no passes", name)
		}
		for i, p := range passes {
			if p.Vertex == "" || p.Fragment == "" {
				return nil, fmt.Errorf("technique %q pass %d: vertex and fragment are required", name, i)
			}
		}
	}
	return &m, nil
}

// TechniqueNames returns the technique names in sorted order.
func (m *Manifest) TechniqueNames() []string {
	names := make([]string, 0, len(m.Techniques))
	for n := range m.Techniques {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bindable is a texture that can be bound to a texture unit.
type Bindable interface {
	gfx.Texture
	Bind(unit uint32)
}

type paramKind int

const (
	kindUnset paramKind = iota
	kindMat4
	kindVec3
	kindFloat
	kindBool
	kindTexture
)

// Parameter holds the CPU-side value of a named uniform. Values are
// uploaded when a pass is applied.
type Parameter struct {
	effect *Effect
	name   string
	kind   paramKind
	unit   int32

	mat mgl32.Mat4
	vec mgl32.Vec3
	f   float32
	b   bool
	tex gfx.Texture
}

// Name returns the uniform name.
func (p *Parameter) Name() string { return p.name }

// SetMat4 implements gfx.Parameter.
func (p *Parameter) SetMat4(m mgl32.Mat4) { p.kind, p.mat = kindMat4, m }

// SetVec3 implements gfx.Parameter.
func (p *Parameter) SetVec3(v mgl32.Vec3) { p.kind, p.vec = kindVec3, v }

// SetFloat implements gfx.Parameter.
func (p *Parameter) SetFloat(f float32) { p.kind, p.f = kindFloat, f }

// SetBool implements gfx.Parameter.
func (p *Parameter) SetBool(b bool) { p.kind, p.b = kindBool, b }

// SetTexture implements gfx.Parameter. The first call reserves a texture unit.
func (p *Parameter) SetTexture(t gfx.Texture) {
	if p.unit < 0 {
		p.unit = p.effect.units
		p.effect.units++
	}
	p.kind, p.tex = kindTexture, t
}

// Unit returns the texture unit, or -1 if no texture was ever set.
func (p *Parameter) Unit() int32 { return p.unit }

// Pass is a linked program within a technique.
type Pass struct {
	effect  *Effect
	program uint32
	locs    map[string]int32
}

// Apply binds the program and uploads every parameter it uses.
func (p *Pass) Apply() {
	gl.UseProgram(p.program)
	for _, param := range p.effect.ordered {
		if param.kind == kindUnset {
			continue
		}
		loc, ok := p.locs[param.name]
		if !ok {
			loc = GetUniform(p.program, param.name)
			p.locs[param.name] = loc
		}
		if loc < 0 {
			continue
		}
		switch param.kind {
		case kindMat4:
			gl.UniformMatrix4fv(loc, 1, false, &param.mat[0])
		case kindVec3:
			gl.Uniform3f(loc, param.vec[0], param.vec[1], param.vec[2])
		case kindFloat:
			gl.Uniform1f(loc, param.f)
		case kindBool:
			v := int32(0)
			if param.b {
				v = 1
			}
			gl.Uniform1i(loc, v)
		case kindTexture:
			if t, ok := param.tex.(Bindable); ok {
				t.Bind(uint32(param.unit))
				gl.Uniform1i(loc, param.unit)
			}
		}
	}
}

// Effect is a set of techniques sharing one parameter table.
type Effect struct {
	name       string
	techniques map[string][]*Pass
	current    string
	params     map[string]*Parameter
	ordered    []*Parameter
	units      int32
}

var _ gfx.Effect = (*Effect)(nil)

func newEffect(name string) *Effect {
	return &Effect{
		name:       name,
		techniques: make(map[string][]*Pass),
		params:     make(map[string]*Parameter),
	}
}

// NewEffect compiles every pass of the manifest. read resolves the source
// file names listed in it. Requires a current GL context.
func NewEffect(name string, m *Manifest, read func(string) ([]byte, error)) (*Effect, error) {
	e := newEffect(name)
	for _, tech := range m.TechniqueNames() {
		for i, src := range m.Techniques[tech] {
			vs, err := read(src.Vertex)
			if err != nil {
				e.Delete()
				return nil, fmt.Errorf("effect %s: %w", name, err)
			}
			fs, err := read(src.Fragment)
			if err != nil {
				e.Delete()
				return nil, fmt.Errorf("effect %s: %w", name, err)
			}
			program, err := CompileProgram(string(vs), string(fs))
			if err != nil {
				e.Delete()
				return nil, fmt.Errorf("effect %s technique %s pass %d: %w", name, tech, i, err)
			}
			e.addPass(tech, program)
		}
	}
	return e, nil
}

func (e *Effect) addPass(technique string, program uint32) {
	e.techniques[technique] = append(e.techniques[technique], &Pass{
		effect:  e,
		program: program,
		locs:    make(map[string]int32),
	})
}

// Name returns the effect name.
func (e *Effect) Name() string { return e.name }

// SetTechnique implements gfx.Effect.
func (e *Effect) SetTechnique(name string) error {
	if _, ok := e.techniques[name]; !ok {
		return fmt.Errorf("effect %s: %w %q", e.name, ErrUnknownTechnique, name)
	}
	e.current = name
	return nil
}

// Technique returns the current technique name.
func (e *Effect) Technique() string { return e.current }

// Parameter implements gfx.Effect. Parameters are created on first use.
func (e *Effect) Parameter(name string) gfx.Parameter {
	if p, ok := e.params[name]; ok {
		return p
	}
	p := &Parameter{effect: e, name: name, unit: -1}
	e.params[name] = p
	e.ordered = append(e.ordered, p)
	return p
}

// Passes implements gfx.Effect. It is empty before a technique is set.
func (e *Effect) Passes() []gfx.Pass {
	passes := e.techniques[e.current]
	out := make([]gfx.Pass, len(passes))
	for i, p := range passes {
		out[i] = p
	}
	return out
}

// Delete releases every program.
func (e *Effect) Delete() {
	for _, passes := range e.techniques {
		for _, p := range passes {
			if p.program != 0 {
				gl.DeleteProgram(p.program)
				p.program = 0
			}
		}
	}
}
