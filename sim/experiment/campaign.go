package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/vast-sim/sps-sim/sim"
	"github.com/vast-sim/sps-sim/sim/trace"
)

// Mode selects how the world width scales with the node count.
type Mode string

const (
	// ModeFixedArea keeps the width constant while nodes are added.
	ModeFixedArea Mode = "fixed-area"
	// ModeFixedDensity grows the world so nodes per unit area stays constant.
	ModeFixedDensity Mode = "fixed-density"
)

// ValidModes is the set of recognized campaign modes.
var ValidModes = map[Mode]bool{ModeFixedArea: true, ModeFixedDensity: true}

// RunStats is one entry of the campaign index. Width is recorded in
// fixed-density mode, where it varies with the node count.
type RunStats struct {
	trace.Stats
	Width float64 `json:"width,omitempty"`
}

// Index is the campaign results index: the stats of every completed run,
// keyed by node count, in run order. It is stored as results.json at the
// campaign root.
type Index map[int][]RunStats

// Campaign repeats simulations for every node count in [MinNodes, MaxNodes].
type Campaign struct {
	Mode     Mode
	Runs     int
	MinNodes int
	MaxNodes int
	// Width is the world width in fixed-area mode.
	Width float64
	// Density is nodes per unit area in fixed-density mode.
	Density    float64
	ResultsDir string
	// Base supplies every per-run setting except Nodes, Width and Layout.
	Base Config
	// Ledger, when set, receives one summary per completed run.
	Ledger *Ledger
}

// Validate checks the campaign settings.
func (c Campaign) Validate() error {
	if !ValidModes[c.Mode] {
		return fmt.Errorf("unknown campaign mode %q", c.Mode)
	}
	if c.Runs < 1 {
		return fmt.Errorf("runs must be >= 1, got %d", c.Runs)
	}
	if c.MinNodes < 1 || c.MaxNodes < c.MinNodes {
		return fmt.Errorf("node range must satisfy 1 <= min <= max, got [%d, %d]", c.MinNodes, c.MaxNodes)
	}
	switch c.Mode {
	case ModeFixedArea:
		if math.IsNaN(c.Width) || math.IsInf(c.Width, 0) || c.Width <= 0 {
			return fmt.Errorf("width must be a positive finite number, got %v", c.Width)
		}
	case ModeFixedDensity:
		if math.IsNaN(c.Density) || math.IsInf(c.Density, 0) || c.Density <= 0 {
			return fmt.Errorf("density must be a positive finite number, got %v", c.Density)
		}
	}
	if c.ResultsDir == "" {
		return fmt.Errorf("results directory is required")
	}
	return nil
}

// WidthFor returns the world width used for n nodes.
func (c Campaign) WidthFor(n int) float64 {
	if c.Mode == ModeFixedDensity {
		return math.Sqrt(float64(n) / c.Density)
	}
	return c.Width
}

// IndexPath is the location of the campaign results index.
func (c Campaign) IndexPath() string {
	return filepath.Join(c.ResultsDir, ResultsFile)
}

// Execute runs the campaign. Runs already present in the index for MinNodes
// are skipped, so an interrupted campaign resumes where it stopped. The index
// is rewritten after every completed run.
func (c Campaign) Execute(ctx context.Context) (Index, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid campaign: %w", err)
	}
	if err := os.MkdirAll(c.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.ResultsDir, err)
	}
	idx, err := LoadIndex(c.IndexPath())
	if err != nil {
		return nil, err
	}
	start := len(idx[c.MinNodes])
	if start > 0 {
		logrus.Warnf("Resuming %s campaign after %d completed runs", c.Mode, start)
	}

	for run := start; run < c.Runs; run++ {
		logrus.Infof("Starting run %d of %d", run+1, c.Runs)
		for n := c.MinNodes; n <= c.MaxNodes; n++ {
			stats, err := c.simulate(ctx, run, n)
			if err != nil {
				return idx, err
			}
			entry := RunStats{Stats: stats}
			if c.Mode == ModeFixedDensity {
				entry.Width = c.WidthFor(n)
			}
			idx[n] = append(idx[n], entry)
			logrus.Infof("Run #%d with %d nodes: %s", run+1, n, ComparisonLine(stats))
		}
		if err := WriteIndex(c.IndexPath(), idx); err != nil {
			return idx, err
		}
	}
	return idx, nil
}

func (c Campaign) simulate(ctx context.Context, run, n int) (trace.Stats, error) {
	id := xid.New().String()
	dir := filepath.Join(c.ResultsDir, strconv.Itoa(n)+"-nodes", id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return trace.Stats{}, fmt.Errorf("creating %s: %w", dir, err)
	}

	cfg := c.Base
	cfg.Nodes = n
	cfg.Width = c.WidthFor(n)
	cfg.Layout = sim.SubsystemLayout(n, run)
	res, err := Run(ctx, cfg)
	if err != nil {
		return trace.Stats{}, fmt.Errorf("run %d with %d nodes: %w", run+1, n, err)
	}
	if err := WriteArtifacts(dir, res); err != nil {
		return trace.Stats{}, err
	}

	if c.Ledger != nil {
		err := c.Ledger.Record(ctx, RunSummary{
			ID:      id,
			Mode:    c.Mode,
			Nodes:   n,
			Run:     run,
			Width:   cfg.Width,
			Seed:    cfg.Seed,
			Stats:   res.Stats,
			Elapsed: res.Elapsed,
		})
		if err != nil {
			return trace.Stats{}, err
		}
	}
	return res.Stats, nil
}

// LoadIndex reads a campaign results index. A missing file is an empty index.
func LoadIndex(path string) (Index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	idx := Index{}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return idx, nil
}

// WriteIndex writes idx to path.
func WriteIndex(path string, idx Index) error {
	return writeJSON(path, idx, true)
}
