// Package experiment runs AOI dispatch simulations over randomly sampled node
// layouts and aggregates their traffic statistics.
//
// A single Run sweeps a block-break publication over every grid point of a
// square world. A Campaign repeats runs over a range of node counts, writes
// per-run artifacts and keeps a resumable results index.
package experiment

import (
	"fmt"
	"math"

	"github.com/vast-sim/sps-sim/sim/trace"
)

// Partitioner names the spatial partition a run uses.
type Partitioner string

const (
	PartitionVoronoi Partitioner = "voronoi"
	PartitionGrid    Partitioner = "grid"
)

// ValidPartitioners is the set of recognized partitioner names.
var ValidPartitioners = map[Partitioner]bool{"": true, PartitionVoronoi: true, PartitionGrid: true}

const (
	DefaultChannel        = "overlay-sps"
	DefaultRenderDistance = 10
	DefaultBlockSize      = 16
	DefaultWidth          = 800
)

// Config describes a single simulation run.
type Config struct {
	Nodes int
	Width float64

	Channel        string
	RenderDistance int
	BlockSize      int
	// Step is the spacing of the publication grid.
	Step float64
	// Workers bounds sweep parallelism; values < 1 mean one worker.
	Workers int

	Seed int64
	// Layout is the RNG subsystem the node sites are drawn from. Empty means
	// sim.SubsystemSites.
	Layout string

	DirectPacketSize int
	Partitioner      Partitioner
	TraceLevel       trace.TraceLevel
}

// DefaultConfig returns the configuration of the published experiments for
// the given node count.
func DefaultConfig(nodes int) Config {
	return Config{
		Nodes:            nodes,
		Width:            DefaultWidth,
		Channel:          DefaultChannel,
		RenderDistance:   DefaultRenderDistance,
		BlockSize:        DefaultBlockSize,
		Step:             1,
		Workers:          1,
		DirectPacketSize: trace.DirectPacketSize,
		Partitioner:      PartitionVoronoi,
		TraceLevel:       trace.TraceLevelNone,
	}
}

// PublicationRadius is the radius of every swept publication.
func (c Config) PublicationRadius() float64 {
	return float64(c.BlockSize * c.RenderDistance)
}

// GridSize returns the number of publication points along one axis.
func (c Config) GridSize() int {
	return int(math.Floor(c.Width/c.Step+1e-9)) + 1
}

// gridCoord is the coordinate of grid index i along either axis. It never
// exceeds Width, which i*Step can by a few ULPs on the last index.
func (c Config) gridCoord(i int) float64 {
	return min(float64(i)*c.Step, c.Width)
}

// Validate checks every field, naming the offending one.
func (c Config) Validate() error {
	if c.Nodes < 1 {
		return fmt.Errorf("nodes must be >= 1, got %d", c.Nodes)
	}
	if math.IsNaN(c.Width) || math.IsInf(c.Width, 0) || c.Width <= 0 {
		return fmt.Errorf("width must be a positive finite number, got %v", c.Width)
	}
	if c.Channel == "" {
		return fmt.Errorf("channel must not be empty")
	}
	if c.RenderDistance < 0 {
		return fmt.Errorf("render distance must be >= 0, got %d", c.RenderDistance)
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("block size must be >= 0, got %d", c.BlockSize)
	}
	if math.IsNaN(c.Step) || c.Step <= 0 || c.Step > c.Width {
		return fmt.Errorf("step must be in (0, width], got %v", c.Step)
	}
	if c.DirectPacketSize < 0 {
		return fmt.Errorf("direct packet size must be >= 0, got %d", c.DirectPacketSize)
	}
	if !ValidPartitioners[c.Partitioner] {
		return fmt.Errorf("unknown partitioner %q", c.Partitioner)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace level %q", c.TraceLevel)
	}
	return nil
}
