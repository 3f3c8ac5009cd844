package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/untitled-sandbox/internal/assets"
	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
	"github.com/Faultbox/untitled-sandbox/internal/engine/shader"
	"github.com/Faultbox/untitled-sandbox/internal/engine/texture"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
)

// Texture is an uploaded 2D texture.
type Texture struct {
	id            uint32
	width, height int
}

// Size implements gfx.Texture.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// Bind binds the texture to a texture unit.
func (t *Texture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

// Delete frees the GL texture.
func (t *Texture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// UploadTexture creates a mipmapped, repeating texture from an image.
func UploadTexture(img image.Image) (*Texture, error) {
	rgba := texture.ToRGBA(img, true)
	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()

	t := &Texture{width: w, height: h}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&rgba.Pix[0]))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		t.Delete()
		return nil, glError("upload texture", code)
	}
	return t, nil
}

// Content loads effects and textures from an asset manager and keeps
// them until Close.
type Content struct {
	assets   *assets.Manager
	effects  map[string]*shader.Effect
	textures map[string]*Texture
	log      *zap.Logger
}

// NewContent creates a content loader over the given asset manager.
func NewContent(m *assets.Manager) *Content {
	return &Content{
		assets:   m,
		effects:  make(map[string]*shader.Effect),
		textures: make(map[string]*Texture),
		log:      logger.Named("content"),
	}
}

// LoadEffect loads name.yaml and compiles its techniques.
func (c *Content) LoadEffect(name string) (gfx.Effect, error) {
	if e, ok := c.effects[name]; ok {
		return e, nil
	}
	data, err := c.assets.Load(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("loading effect %s: %w", name, err)
	}
	m, err := shader.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("loading effect %s: %w", name, err)
	}
	e, err := shader.NewEffect(name, m, c.assets.Load)
	if err != nil {
		return nil, err
	}
	c.effects[name] = e
	c.log.Info("effect loaded",
		zap.String("name", name),
		zap.Strings("techniques", m.TechniqueNames()),
	)
	return e, nil
}

// LoadTexture loads name with the first supported image extension found.
func (c *Content) LoadTexture(name string) (gfx.Texture, error) {
	if t, ok := c.textures[name]; ok {
		return t, nil
	}
	data, file, err := c.assets.LoadAny(name, texture.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", name, err)
	}
	img, err := texture.Decode(file, data)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", name, err)
	}
	t, err := UploadTexture(img)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", name, err)
	}
	c.textures[name] = t
	c.log.Info("texture loaded",
		zap.String("file", file),
		zap.Int("width", t.width),
		zap.Int("height", t.height),
	)
	return t, nil
}

// Close releases every loaded effect and texture.
func (c *Content) Close() {
	for _, e := range c.effects {
		e.Delete()
	}
	for _, t := range c.textures {
		t.Delete()
	}
	clear(c.effects)
	clear(c.textures)
}

func glError(op string, code uint32) error {
	return fmt.Errorf("%s: GL error 0x%04X", op, code)
}
