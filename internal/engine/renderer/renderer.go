// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
	"github.com/Faultbox/untitled-sandbox/internal/engine/shader"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
}

// Renderer is the OpenGL implementation of gfx.Device.
type Renderer struct {
	config Config

	// Flat-color program for debug lines
	lineProgram  uint32
	locLineMVP   int32
	locLineColor int32
	lineVAO      uint32
	lineVBO      uint32
	lineEBO      uint32
}

var _ gfx.Device = (*Renderer)(nil)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.FrontFace(gl.CCW)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	if err := r.createLineProgram(); err != nil {
		return nil, fmt.Errorf("failed to create line program: %w", err)
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
	}
	if r.lineVBO != 0 {
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	if r.lineEBO != 0 {
		gl.DeleteBuffers(1, &r.lineEBO)
	}
	if r.lineProgram != 0 {
		gl.DeleteProgram(r.lineProgram)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// SetRasterizerState implements gfx.Device.
func (r *Renderer) SetRasterizerState(s gfx.RasterizerState) {
	if s.Fill == gfx.FillWireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	// Front faces wind counter-clockwise, so "cull clockwise" culls back faces.
	switch s.Cull {
	case gfx.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gfx.CullClockwise:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case gfx.CullCounterClockwise:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	}
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, w, h
}

const lineVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
uniform mat4 uMVP;
void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `#version 410 core
uniform vec4 uColor;
out vec4 FragColor;
void main() {
	FragColor = uColor;
}
`

func (r *Renderer) createLineProgram() error {
	program, err := shader.CompileProgram(lineVertexShader, lineFragmentShader)
	if err != nil {
		return err
	}
	r.lineProgram = program
	r.locLineMVP = shader.MustGetUniform(program, "uMVP")
	r.locLineColor = shader.MustGetUniform(program, "uColor")

	gl.GenVertexArrays(1, &r.lineVAO)
	gl.BindVertexArray(r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.GenBuffers(1, &r.lineEBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.lineEBO)
	gl.BindVertexArray(0)

	logger.Debug("line program created", zap.Uint32("program", program))
	return nil
}

// DrawLines implements gfx.Device.
func (r *Renderer) DrawLines(viewProj mgl32.Mat4, points []mgl32.Vec3, indices []uint16, color [4]float32) {
	if len(points) == 0 || len(indices) == 0 {
		return
	}
	gl.UseProgram(r.lineProgram)
	gl.UniformMatrix4fv(r.locLineMVP, 1, false, &viewProj[0])
	gl.Uniform4f(r.locLineColor, color[0], color[1], color[2], color[3])

	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(points)*3*4, unsafe.Pointer(&points[0]), gl.STREAM_DRAW)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, unsafe.Pointer(&indices[0]), gl.STREAM_DRAW)
	gl.DrawElements(gl.LINES, int32(len(indices)), gl.UNSIGNED_SHORT, nil)
	gl.BindVertexArray(0)
}
