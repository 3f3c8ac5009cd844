package scene

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/untitled-sandbox/internal/config"
	"github.com/Faultbox/untitled-sandbox/internal/engine/gfx"
	"github.com/Faultbox/untitled-sandbox/internal/engine/lighting"
	"github.com/Faultbox/untitled-sandbox/internal/engine/terrain"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
)

// GeneratorFactory builds a heightfield strategy from terrain settings and
// the resolved world seed.
type GeneratorFactory func(cfg config.TerrainConfig, seed int64) (terrain.FieldGenerator, error)

var generators = map[string]GeneratorFactory{
	"fractal": func(config.TerrainConfig, int64) (terrain.FieldGenerator, error) {
		return terrain.DiamondSquare{}, nil
	},
	"noise": func(cfg config.TerrainConfig, seed int64) (terrain.FieldGenerator, error) {
		return terrain.NewPerlinField(seed, terrain.NoiseParams{
			Octaves:     cfg.Noise.Octaves,
			Frequency:   cfg.Noise.Frequency,
			Lacunarity:  cfg.Noise.Lacunarity,
			Persistence: cfg.Noise.Persistence,
		})
	},
}

// Algorithms lists the registered terrain algorithm names.
func Algorithms() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewGenerator returns the strategy named by cfg.Algorithm.
func NewGenerator(cfg config.TerrainConfig, seed int64) (terrain.FieldGenerator, error) {
	factory, ok := generators[cfg.Algorithm]
	if !ok {
		return nil, fmt.Errorf("unknown terrain algorithm %q (have %v)", cfg.Algorithm, Algorithms())
	}
	return factory(cfg, seed)
}

// ResolveSeed returns cfg.Seed, or a clock-derived seed when it is zero.
func ResolveSeed(cfg config.TerrainConfig) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

// GridConfig converts terrain settings into a grid configuration.
func GridConfig(cfg config.TerrainConfig, seed int64) terrain.GridConfig {
	return terrain.GridConfig{
		TileSize:    cfg.TileSize,
		NumTiles:    cfg.NumTiles,
		HeightScale: cfg.HeightScale,
		Roughness:   cfg.Roughness,
		Spacing:     cfg.Spacing,
		Seed:        seed,
		Workers:     cfg.Workers,
	}
}

// NewRenderer builds the terrain renderer selected by configuration.
func NewRenderer(cfg *config.Config, dev gfx.Device, content Content) (*TerrainRenderer, error) {
	tc := cfg.Terrain
	seed := ResolveSeed(tc)

	gen, err := NewGenerator(tc, seed)
	if err != nil {
		return nil, err
	}

	r, err := NewTerrainRenderer(dev, content, GridConfig(tc, seed), gen, Options{
		Effect:         tc.Effect,
		Texture:        tc.Texture,
		Ambient:        tc.Ambient,
		LightDirection: lighting.Resolve(mgl32.Vec3(tc.LightDirection), tc.SunAzimuth, tc.SunElevation),
		DrawBounds:     tc.DrawBounds,
	})
	if err != nil {
		return nil, err
	}
	logger.Sugar.Infof("terrain renderer: %s, %dx%d tiles of %d, seed %d",
		gen.Name(), tc.NumTiles, tc.NumTiles, tc.TileSize, seed)
	return r, nil
}
