// heightmap generates a terrain grid without a window and exports it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Faultbox/untitled-sandbox/internal/config"
	"github.com/Faultbox/untitled-sandbox/internal/engine/debug"
	"github.com/Faultbox/untitled-sandbox/internal/engine/scene"
	"github.com/Faultbox/untitled-sandbox/internal/engine/terrain"
	"github.com/Faultbox/untitled-sandbox/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "export":
		cmdExport(args)
	case "stats":
		cmdStats(args)
	case "seams":
		cmdSeams(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`heightmap - procedural terrain grid tool

Usage:
  heightmap <command> [options]

Commands:
  export [-o file.png]   Write the stitched grid as a 16-bit grayscale PNG
  stats                  Print per-tile seed and height range
  seams                  Check that neighbouring tile edges match

Common options:
  -config file.yaml      Load terrain settings from a config file
  -seed N                Master seed (0 = from config, then clock)
  -tiles N               Tiles per grid edge
  -size N                Samples per tile edge (2^k+1)
  -algorithm name        fractal or noise
  -workers N             Generation goroutines

Examples:
  heightmap export -seed 42 -o terrain.png
  heightmap stats -tiles 4 -size 65
  heightmap seams -algorithm noise`)
}

type options struct {
	configPath string
	seed       int64
	tiles      int
	size       int
	algorithm  string
	workers    int
	verbose    bool
}

func newFlagSet(name string, o *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&o.configPath, "config", "", "config file")
	fs.Int64Var(&o.seed, "seed", 0, "master seed")
	fs.IntVar(&o.tiles, "tiles", 0, "tiles per grid edge")
	fs.IntVar(&o.size, "size", 0, "samples per tile edge")
	fs.StringVar(&o.algorithm, "algorithm", "", "fractal or noise")
	fs.IntVar(&o.workers, "workers", 0, "generation goroutines")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	return fs
}

// generate builds and generates the grid described by the options.
func generate(o options) (*terrain.Grid, terrain.FieldGenerator, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadFile(o.configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	tc := cfg.Terrain
	if o.seed != 0 {
		tc.Seed = o.seed
	}
	if o.tiles > 0 {
		tc.NumTiles = o.tiles
	}
	if o.size > 0 {
		tc.TileSize = o.size
	}
	if o.algorithm != "" {
		tc.Algorithm = o.algorithm
	}
	if o.workers > 0 {
		tc.Workers = o.workers
	}

	level := "warn"
	if o.verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		return nil, nil, err
	}

	seed := scene.ResolveSeed(tc)
	gen, err := scene.NewGenerator(tc, seed)
	if err != nil {
		return nil, nil, err
	}
	grid, err := terrain.NewGrid(scene.GridConfig(tc, seed))
	if err != nil {
		return nil, nil, err
	}
	if err := grid.Generate(context.Background(), gen); err != nil {
		return nil, nil, err
	}
	return grid, gen, nil
}

func mustGenerate(o options) *terrain.Grid {
	start := time.Now()
	grid, gen, err := generate(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg := grid.Config()
	fmt.Printf("Generator: %s\n", gen.Name())
	fmt.Printf("Seed:      %d\n", cfg.Seed)
	fmt.Printf("Grid:      %dx%d tiles of %d samples\n", cfg.NumTiles, cfg.NumTiles, cfg.TileSize)
	fmt.Printf("Elapsed:   %v\n", time.Since(start).Round(time.Millisecond))
	return grid
}

func cmdExport(args []string) {
	var o options
	fs := newFlagSet("export", &o)
	out := fs.String("o", "heightmap.png", "output PNG path")
	fs.Parse(args)

	grid := mustGenerate(o)
	img := debug.HeightmapImage(grid)
	if err := debug.WriteImage(*out, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	b := img.Bounds()
	fmt.Printf("Wrote %s (%dx%d)\n", *out, b.Dx(), b.Dy())
}

func cmdStats(args []string) {
	var o options
	fs := newFlagSet("stats", &o)
	fs.Parse(args)

	grid := mustGenerate(o)
	fmt.Println()
	fmt.Printf("%-10s %-20s %10s %10s\n", "TILE", "SEED", "MIN", "MAX")
	lo, hi := float32(0), float32(0)
	for i, t := range grid.Tiles() {
		tlo, thi := t.Field().MinMax()
		if i == 0 || tlo < lo {
			lo = tlo
		}
		if i == 0 || thi > hi {
			hi = thi
		}
		fmt.Printf("%-10s %-20d %10.2f %10.2f\n", fmt.Sprintf("(%d,%d)", t.Row, t.Col), t.Seed(), tlo, thi)
	}
	fmt.Println()
	fmt.Printf("Height range: %.2f to %.2f\n", lo, hi)
}

func cmdSeams(args []string) {
	var o options
	fs := newFlagSet("seams", &o)
	fs.Parse(args)

	grid := mustGenerate(o)
	seams := debug.Seams(grid)
	broken := 0
	for _, s := range seams {
		if s.MaxDelta != 0 {
			broken++
			fmt.Printf("tile (%d,%d) %s edge: max delta %g\n", s.Row, s.Col, s.Side, s.MaxDelta)
		}
	}
	fmt.Printf("Checked %d seams, %d mismatched\n", len(seams), broken)
	if broken > 0 {
		os.Exit(1)
	}
}
