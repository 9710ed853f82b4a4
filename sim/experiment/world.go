package experiment

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vast-sim/sps-sim/sim"
	"github.com/vast-sim/sps-sim/sim/grid"
	"github.com/vast-sim/sps-sim/sim/payload"
	"github.com/vast-sim/sps-sim/sim/voronoi"
	"github.com/vast-sim/sps-sim/sim/wire"
)

// World is a frozen simulation environment: the partition, every node
// subscribed to its own cell, and the dispatch engine. PublishAt is safe for
// concurrent use.
type World struct {
	Config    Config
	Partition sim.Partition
	Registry  *sim.Registry
	Engine    *sim.Engine
	Payloads  *payload.Context
}

// NewWorld samples a node layout from cfg and builds the world around it.
func NewWorld(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	layout := cfg.Layout
	if layout == "" {
		layout = sim.SubsystemSites
	}
	bounds := sim.NewSquareBounds(cfg.Width)

	var part sim.Partition
	var err error
	switch cfg.Partitioner {
	case PartitionGrid:
		part, err = grid.ForNodes(cfg.Nodes, bounds)
	default:
		part, err = voronoi.New(sim.SampleSites(rng.ForSubsystem(layout), cfg.Nodes, bounds), bounds)
	}
	if err != nil {
		return nil, fmt.Errorf("building %s partition: %w", partitionerName(cfg.Partitioner), err)
	}

	reg := sim.NewRegistry()
	if err := reg.SubscribeCells(part, cfg.Channel); err != nil {
		return nil, err
	}
	reg.Freeze()

	worldID, err := uuid.NewRandomFromReader(rng.ForSubsystem(sim.SubsystemWorld))
	if err != nil {
		return nil, fmt.Errorf("world id: %w", err)
	}

	return &World{
		Config:    cfg,
		Partition: part,
		Registry:  reg,
		Engine:    sim.NewEngine(wire.Oracle{}, sim.WebSocketOverhead),
		Payloads:  payload.NewContext(worldID, time.Now(), nil),
	}, nil
}

// Publication is one block-break publication and its dispatch outcome.
type Publication struct {
	Event   sim.PublicationEvent
	Payload []byte
	Result  sim.PublicationResult
}

// PublishAt publishes a block-break at (x, y) from the node whose cell
// contains the point, with the configured publication radius.
func (w *World) PublishAt(x, y float64) (Publication, error) {
	region := sim.Circle{Center: sim.Point{X: x, Y: y}, Radius: w.Config.PublicationRadius()}
	pl := w.Payloads.BlockBreak(uint32(x), uint32(y))
	ev, err := sim.EventAt(w.Partition, region.Center, w.Config.Channel, region, len(pl))
	if err != nil {
		return Publication{}, fmt.Errorf("publishing at (%g, %g): %w", x, y, err)
	}
	return Publication{Event: ev, Payload: pl, Result: w.Engine.Publish(ev, w.Registry)}, nil
}

func partitionerName(p Partitioner) string {
	if p == "" {
		return string(PartitionVoronoi)
	}
	return string(p)
}
