// Package config handles sandbox configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all sandbox settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Camera   CameraConfig   `yaml:"camera"`
	Controls ControlsConfig `yaml:"controls"`
	Content  ContentConfig  `yaml:"content"`
	Inspect  InspectConfig  `yaml:"inspect"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width          int        `yaml:"width"`
	Height         int        `yaml:"height"`
	Fullscreen     bool       `yaml:"fullscreen"`
	VSync          bool       `yaml:"vsync"`
	Multisampling  bool       `yaml:"multisampling"`
	ClearColor     [3]float32 `yaml:"clear_color"`
	ShowTileCount  bool       `yaml:"show_tile_count"` // visible tile count in the window title
	ScreenshotDir  string     `yaml:"screenshot_dir"`
	StartWireframe bool       `yaml:"start_wireframe"`
}

// TerrainConfig holds procedural terrain settings.
type TerrainConfig struct {
	// Algorithm selects the heightfield generator: "fractal" or "noise".
	Algorithm   string  `yaml:"algorithm"`
	TileSize    int     `yaml:"tile_size"` // samples per tile edge, 2^k+1
	NumTiles    int     `yaml:"num_tiles"` // tiles per grid edge
	HeightScale float32 `yaml:"height_scale"`
	Roughness   float32 `yaml:"roughness"`
	Spacing     float32 `yaml:"spacing"` // world units between samples
	Seed        int64   `yaml:"seed"`    // 0 picks a seed from the clock
	Workers     int     `yaml:"workers"`

	Noise NoiseConfig `yaml:"noise"`

	Effect         string     `yaml:"effect"`
	Texture        string     `yaml:"texture"`
	Ambient        float32    `yaml:"ambient"`
	LightDirection [3]float32 `yaml:"light_direction"` // zero uses the sun angles
	SunAzimuth     float32    `yaml:"sun_azimuth"`     // degrees from +Z toward +X
	SunElevation   float32    `yaml:"sun_elevation"`   // degrees above the horizon
	DrawBounds     bool       `yaml:"draw_bounds"`
}

// NoiseConfig tunes the octave noise generator.
type NoiseConfig struct {
	Octaves     int     `yaml:"octaves"`
	Frequency   float64 `yaml:"frequency"`
	Lacunarity  float64 `yaml:"lacunarity"`
	Persistence float64 `yaml:"persistence"`
}

// CameraConfig holds first-person camera settings.
type CameraConfig struct {
	FOVDegrees float32    `yaml:"fov_degrees"`
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	Position   [3]float32 `yaml:"position"`
	LookAt     [3]float32 `yaml:"look_at"`
}

// ControlsConfig holds input tuning.
type ControlsConfig struct {
	MoveSpeed        float32 `yaml:"move_speed"` // world units per second
	FastMultiplier   float32 `yaml:"fast_multiplier"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
	InvertY          bool    `yaml:"invert_y"`
}

// ContentConfig holds content search paths.
type ContentConfig struct {
	Roots []string `yaml:"roots"` // later roots take priority
}

// InspectConfig holds the heightfield inspector server settings.
type InspectConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the prototype's default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:         1280,
			Height:        720,
			VSync:         true,
			Multisampling: true,
			ClearColor:    [3]float32{0.53, 0.71, 0.92},
			ShowTileCount: true,
			ScreenshotDir: "screenshots",
		},
		Terrain: TerrainConfig{
			Algorithm:   "fractal",
			TileSize:    129,
			NumTiles:    10,
			HeightScale: 200,
			Roughness:   0.995,
			Spacing:     1,
			Workers:     1,
			Noise: NoiseConfig{
				Octaves:     5,
				Frequency:   0.004,
				Lacunarity:  2.0,
				Persistence: 0.5,
			},
			Effect:         "effects/series4",
			Texture:        "textures/grass",
			Ambient:        0.2,
			LightDirection: [3]float32{1, 2, 1},
			SunAzimuth:     45,
			SunElevation:   50,
		},
		Camera: CameraConfig{
			FOVDegrees: 45,
			Near:       0.3,
			Far:        1000,
			Position:   [3]float32{0, 0, -100},
			LookAt:     [3]float32{0, 0, 0},
		},
		Controls: ControlsConfig{
			MoveSpeed:        60,
			FastMultiplier:   4,
			MouseSensitivity: 0.0025,
		},
		Content: ContentConfig{
			Roots: []string{"content"},
		},
		Inspect: InspectConfig{
			Enabled: false,
			Addr:    "127.0.0.1:7070",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks values that would otherwise fail deep inside the engine.
// Terrain shape rules (tile size 2^k+1 and friends) are enforced by the terrain package.
func (c *Config) Validate() error {
	switch {
	case c.Graphics.Width <= 0 || c.Graphics.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height)
	case c.Terrain.Algorithm != "fractal" && c.Terrain.Algorithm != "noise":
		return fmt.Errorf("%w: unknown terrain algorithm %q", ErrInvalid, c.Terrain.Algorithm)
	case c.Terrain.Workers < 1:
		return fmt.Errorf("%w: terrain workers must be >= 1, got %d", ErrInvalid, c.Terrain.Workers)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: camera clip range [%g, %g]", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180:
		return fmt.Errorf("%w: camera fov %g", ErrInvalid, c.Camera.FOVDegrees)
	case len(c.Content.Roots) == 0:
		return fmt.Errorf("%w: no content roots", ErrInvalid)
	}
	return nil
}
