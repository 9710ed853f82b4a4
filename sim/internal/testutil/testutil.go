// Package testutil provides shared test infrastructure for the simulator.
// It consolidates fixtures and assertion helpers used across the sim/
// sub-package tests.
package testutil

import (
	"math"
	"testing"

	"github.com/vast-sim/sps-sim/sim"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// LatticeSites returns rows x cols sites at the centres of a uniform grid over
// [0, width] x [0, width], row-major from the origin.
func LatticeSites(rows, cols int, width float64) []sim.Point {
	sites := make([]sim.Point, 0, rows*cols)
	dx, dy := width/float64(cols), width/float64(rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			sites = append(sites, sim.Point{X: dx * (float64(c) + 0.5), Y: dy * (float64(r) + 0.5)})
		}
	}
	return sites
}

// FixedOracle is a WireSizeOracle returning constant sizes.
type FixedOracle struct {
	Outbound int
	Inbound  int
}

// OutboundSize implements sim.WireSizeOracle.
func (o FixedOracle) OutboundSize(sim.Region, string, int) int { return o.Outbound }

// InboundSize implements sim.WireSizeOracle.
func (o FixedOracle) InboundSize(int) int { return o.Inbound }
