// Package terrain generates tiled procedural heightfields and turns them into
// renderable, frustum-culled meshes.
package terrain

import (
	"errors"
	"fmt"
)

// Configuration errors. All are returned wrapped; test with errors.Is.
var (
	ErrInvalidTileSize  = errors.New("tile size must be 2^k+1 with k >= 1")
	ErrInvalidTileCount = errors.New("tile count must be positive")
	ErrInvalidRoughness = errors.New("roughness must be in (0, 1]")
	ErrInvalidSpacing   = errors.New("sample spacing must be positive")
	ErrInvalidScale     = errors.New("height scale must not be negative")
	ErrEdgeLength       = errors.New("boundary edge length does not match tile size")
)

// Direction names a side of a tile.
type Direction int

const (
	North Direction = iota // row 0, toward row-1 in the grid
	East                   // column Size-1, toward col+1
	South                  // row Size-1, toward row+1
	West                   // column 0, toward col-1
)

// Directions lists the sides in the order boundary edges are applied.
var Directions = [4]Direction{North, East, South, West}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Opposite returns the side facing d across a seam.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Offset returns the grid (row, col) delta of the neighbour on side d.
func (d Direction) Offset() (dRow, dCol int) {
	switch d {
	case North:
		return -1, 0
	case East:
		return 0, 1
	case South:
		return 1, 0
	default:
		return 0, -1
	}
}

// Edges holds optional boundary constraints indexed by Direction.
// A nil entry means "no neighbour": that side is unconstrained.
// North/South edges run west to east, East/West edges run north to south.
type Edges [4][]float32

// Bound reports whether side d is constrained.
func (e Edges) Bound(d Direction) bool {
	return e[d] != nil
}

// FieldParams are the per-tile inputs of heightfield generation.
type FieldParams struct {
	Size        int     // samples per edge, 2^k+1
	Seed        int64   // tile random stream seed
	HeightScale float32 // initial displacement magnitude
	Roughness   float32 // per-level displacement decay
}

// FieldRequest is everything a generator needs to synthesize one tile.
type FieldRequest struct {
	FieldParams
	Row, Col int
	Edges    Edges
}

// FieldGenerator synthesizes a heightfield for one tile.
type FieldGenerator interface {
	Name() string
	Generate(req FieldRequest) (*HeightField, error)
}

// ValidateTileSize checks that size is 2^k+1 for some k >= 1.
func ValidateTileSize(size int) error {
	if size < 3 || (size-1)&(size-2) != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTileSize, size)
	}
	return nil
}

// Validate checks the size, roughness and scale of p.
func (p FieldParams) Validate() error {
	if err := ValidateTileSize(p.Size); err != nil {
		return err
	}
	if !(p.Roughness > 0 && p.Roughness <= 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidRoughness, p.Roughness)
	}
	if p.HeightScale < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidScale, p.HeightScale)
	}
	return nil
}
