// Package texture provides image decoding and texture processing utilities.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"path"
	"strings"

	_ "golang.org/x/image/bmp" // register decoder
)

// Extensions lists the file extensions Decode understands, in lookup order.
var Extensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// ErrUnsupported is returned for images in a format no decoder is registered for.
var ErrUnsupported = errors.New("unsupported image format")

// Supported reports whether name carries one of Extensions.
func Supported(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode decodes a png, jpeg or bmp image. The format is sniffed from
// the data; name is only used in error messages.
func Decode(name string, data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%s: %w", name, ErrUnsupported)
		}
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("decoding %s: empty %s image", name, format)
	}
	return img, nil
}

// ToRGBA converts any image.Image to *image.RGBA with its origin at (0, 0).
// If flipY is true, rows are stored bottom-up as glTexImage2D expects.
func ToRGBA(img image.Image, flipY bool) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	if flipY {
		FlipVertical(rgba)
	}
	return rgba
}

// FlipVertical mirrors an RGBA image top to bottom in place.
func FlipVertical(img *image.RGBA) {
	h := img.Bounds().Dy()
	rowLen := img.Bounds().Dx() * 4
	tmp := make([]byte, rowLen)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		bot := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+rowLen]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
}
