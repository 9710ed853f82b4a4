package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vast-sim/sps-sim/sim"
	"github.com/vast-sim/sps-sim/sim/trace"
)

// Result is the outcome of one simulation run.
type Result struct {
	Config    Config
	Sites     []sim.Point
	Neighbors [][]sim.NodeID
	Totals    trace.Accumulator
	Stats     trace.Stats
	// Trace is nil unless Config.TraceLevel collects publications.
	Trace   *trace.SimulationTrace
	Elapsed time.Duration
}

// FromResult converts a dispatch result into its trace record.
func FromResult(res sim.PublicationResult) trace.PublicationRecord {
	entries := make([]trace.TrafficEntry, len(res.Traffic))
	for i, tr := range res.Traffic {
		entries[i] = trace.TrafficEntry{Client: int(tr.Client), In: tr.Inbound, Out: tr.Outbound}
	}
	return trace.PublicationRecord{
		Sender:             int(res.Sender),
		Channel:            res.Channel,
		NetworkTraffic:     entries,
		TotalTraffic:       trace.TrafficTotals{In: res.TotalInbound, Out: res.TotalOutbound},
		MessagesDispatched: res.MessagesDispatched,
	}
}

// Run builds a world from cfg and sweeps a publication over every grid point
// (x, y) in [0, Width]² at Step spacing, x-major. Rows are published by up to
// cfg.Workers goroutines; statistics are identical for any worker count.
// Cancelling ctx stops the sweep before the next publication and Run returns
// the context error.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	w, err := NewWorld(cfg)
	if err != nil {
		return nil, err
	}
	return Sweep(ctx, w)
}

// Sweep runs the grid sweep over an existing world.
func Sweep(ctx context.Context, w *World) (*Result, error) {
	cfg := w.Config
	started := time.Now()
	neighborCounts := sim.NeighborCounts(w.Partition)
	m := cfg.GridSize()
	traced := trace.TraceConfig{Level: cfg.TraceLevel}.Enabled()

	rows := make([]trace.Accumulator, m)
	var records []trace.PublicationRecord
	if traced {
		records = make([]trace.PublicationRecord, m*m)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := 0; i < m; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			x := cfg.gridCoord(i)
			for j := 0; j < m; j++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				pub, err := w.PublishAt(x, cfg.gridCoord(j))
				if err != nil {
					return err
				}
				res := pub.Result
				rows[i].Add(res.TotalInbound, res.TotalOutbound, res.MessagesDispatched, neighborCounts[res.Sender])
				if traced {
					records[i*m+j] = FromResult(res)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var total trace.Accumulator
	for _, r := range rows {
		total.Merge(r)
	}
	result := &Result{
		Config:    cfg,
		Sites:     make([]sim.Point, w.Partition.NodeCount()),
		Neighbors: make([][]sim.NodeID, w.Partition.NodeCount()),
		Totals:    total,
		Stats:     total.Stats(cfg.DirectPacketSize),
		Elapsed:   time.Since(started),
	}
	for i := range result.Sites {
		result.Sites[i] = w.Partition.SiteOf(sim.NodeID(i))
		result.Neighbors[i] = w.Partition.NeighborsOf(sim.NodeID(i))
	}
	if traced {
		result.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.TraceLevel})
		for _, rec := range records {
			result.Trace.RecordPublication(rec)
		}
	}
	logrus.Debugf("Completed simulation of %d nodes (%d publications) in %.2fs",
		cfg.Nodes, total.Publications, result.Elapsed.Seconds())
	return result, nil
}

// ComparisonLine is the one-line SPS versus direct summary logged per run.
func ComparisonLine(s trace.Stats) string {
	return fmt.Sprintf("SPS=%.2f bytes, Direct=%.2f bytes; SPS=%.2f messages, Direct=%.2f messages",
		s.Net.SPS.AvgTotal, s.Net.Direct.AvgTotal, s.Messages.SPS, s.Messages.Direct)
}
