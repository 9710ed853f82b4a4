package experiment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vast-sim/sps-sim/sim"
	"github.com/vast-sim/sps-sim/sim/trace"
)

// Artifact file names written into every run directory.
const (
	NeighborsFile  = "neighbors.json"
	SitesFile      = "sites.json"
	SimulationFile = "simulation.json"
	ResultsFile    = "results.json"
)

// WriteArtifacts writes the run's artifacts into dir, which must exist:
// neighbors.json as [[node, [neighbours...]], ...], sites.json as
// [[x, y], ...], results.json with the run's Stats, and simulation.json with
// every publication record when the run was traced.
func WriteArtifacts(dir string, res *Result) error {
	neighbors := make([][2]any, len(res.Neighbors))
	for i, ns := range res.Neighbors {
		if ns == nil {
			ns = []sim.NodeID{}
		}
		neighbors[i] = [2]any{i, ns}
	}
	if err := writeJSON(filepath.Join(dir, NeighborsFile), neighbors, true); err != nil {
		return err
	}

	sites := make([][2]float64, len(res.Sites))
	for i, s := range res.Sites {
		sites[i] = [2]float64{s.X, s.Y}
	}
	if err := writeJSON(filepath.Join(dir, SitesFile), sites, true); err != nil {
		return err
	}

	if res.Trace != nil {
		if err := writeJSON(filepath.Join(dir, SimulationFile), res.Trace.Publications, false); err != nil {
			return err
		}
	}
	return writeJSON(filepath.Join(dir, ResultsFile), res.Stats, true)
}

// ReadStats reads a results.json written by WriteArtifacts.
func ReadStats(path string) (trace.Stats, error) {
	var s trace.Stats
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parsing %s: %w", path, err)
	}
	return s, nil
}

// RunArtifacts is a run directory read back by ReadRun.
type RunArtifacts struct {
	Stats trace.Stats
	// NeighborCounts is indexed by node.
	NeighborCounts []int
	// Publications is nil when the run was not traced.
	Publications []trace.PublicationRecord
}

// ReadRun reads the artifacts WriteArtifacts left in dir. simulation.json is
// optional.
func ReadRun(dir string) (*RunArtifacts, error) {
	stats, err := ReadStats(filepath.Join(dir, ResultsFile))
	if err != nil {
		return nil, err
	}
	counts, err := readNeighborCounts(filepath.Join(dir, NeighborsFile))
	if err != nil {
		return nil, err
	}
	run := &RunArtifacts{Stats: stats, NeighborCounts: counts}

	path := filepath.Join(dir, SimulationFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return run, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &run.Publications); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return run, nil
}

// Traced reports whether the run kept its publication records.
func (a *RunArtifacts) Traced() bool { return a.Publications != nil }

// DirectPacketSize recovers the direct-baseline packet size the run was
// configured with, falling back to trace.DirectPacketSize when the run sent
// no direct messages.
func (a *RunArtifacts) DirectPacketSize() int {
	if a.Stats.Messages.Direct == 0 {
		return trace.DirectPacketSize
	}
	return int(math.Round(a.Stats.Net.Direct.AvgTotal / a.Stats.Messages.Direct))
}

// Resummarize recomputes the run's Stats from its publication records.
func (a *RunArtifacts) Resummarize(directPacketSize int) trace.Stats {
	st := &trace.SimulationTrace{
		Config:       trace.TraceConfig{Level: trace.TraceLevelPublications},
		Publications: a.Publications,
	}
	return trace.Summarize(st, a.NeighborCounts, directPacketSize)
}

func readNeighborCounts(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var rows [][2]json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	counts := make([]int, len(rows))
	for _, row := range rows {
		var node int
		var neighbors []int
		if err := json.Unmarshal(row[0], &node); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if err := json.Unmarshal(row[1], &neighbors); err != nil {
			return nil, fmt.Errorf("parsing %s: node %d: %w", path, node, err)
		}
		if node < 0 || node >= len(counts) {
			return nil, fmt.Errorf("parsing %s: node %d out of range [0, %d)", path, node, len(counts))
		}
		counts[node] = len(neighbors)
	}
	return counts, nil
}

func writeJSON(path string, v any, indent bool) error {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logrus.Debugf("Wrote %s (%d bytes)", path, len(data))
	return nil
}
