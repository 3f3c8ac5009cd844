package renderer

import (
	"errors"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
)

const vertexSize = int(unsafe.Sizeof(gfx.Vertex{}))

// Mesh is a VAO with its vertex and index buffers.
type Mesh struct {
	vao, vbo, ebo uint32
	count         int32
}

// IndexCount implements gfx.MeshBuffer.
func (m *Mesh) IndexCount() int {
	return int(m.count)
}

// CreateMesh implements gfx.Device.
func (r *Renderer) CreateMesh(vertices []gfx.Vertex, indices []uint32) (gfx.MeshBuffer, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, errors.New("renderer: empty mesh")
	}

	m := &Mesh{count: int32(len(indices))}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*vertexSize, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, int32(vertexSize), 0)
	gl.EnableVertexAttribArray(0)

	// Normal (location 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, int32(vertexSize), 3*4)
	gl.EnableVertexAttribArray(1)

	// TexCoord (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, int32(vertexSize), 6*4)
	gl.EnableVertexAttribArray(2)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		r.DeleteMesh(m)
		return nil, glError("create mesh", code)
	}
	return m, nil
}

// DeleteMesh implements gfx.Device.
func (r *Renderer) DeleteMesh(mb gfx.MeshBuffer) {
	m, ok := mb.(*Mesh)
	if !ok {
		return
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	*m = Mesh{}
}

// DrawIndexed implements gfx.Device.
func (r *Renderer) DrawIndexed(mb gfx.MeshBuffer) {
	m := mb.(*Mesh)
	if m.vao == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, nil)
}
