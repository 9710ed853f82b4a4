package voronoi

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vast-sim/sps-sim/sim"
	"github.com/vast-sim/sps-sim/sim/internal/testutil"
)

func TestNew_SingleSite_CellIsBounds(t *testing.T) {
	b := sim.NewSquareBounds(100)
	p, err := New([]sim.Point{{X: 30, Y: 70}}, b)
	require.NoError(t, err)

	assert.Equal(t, 1, p.NodeCount())
	testutil.AssertFloat64Equal(t, "area", 10000, p.CellOf(0).Area(), 1e-12)
	assert.Empty(t, p.NeighborsOf(0))
	assert.Equal(t, sim.NodeID(0), p.Locate(sim.Point{X: 100, Y: 0}))
	assert.Equal(t, sim.NotFound, p.Locate(sim.Point{X: 100.01, Y: 0}))
}

func TestNew_TwoSites_SplitAtBisector(t *testing.T) {
	// GIVEN two sites mirrored around x = 50
	p, err := New([]sim.Point{{X: 25, Y: 50}, {X: 75, Y: 50}}, sim.NewSquareBounds(100))
	require.NoError(t, err)

	// THEN each cell is half of the square and they are neighbours
	testutil.AssertFloat64Equal(t, "cell 0 area", 5000, p.CellOf(0).Area(), 1e-9)
	testutil.AssertFloat64Equal(t, "cell 1 area", 5000, p.CellOf(1).Area(), 1e-9)
	assert.Equal(t, []sim.NodeID{1}, p.NeighborsOf(0))
	assert.Equal(t, []sim.NodeID{0}, p.NeighborsOf(1))

	// AND points on the shared edge go to the lowest node id
	assert.Equal(t, sim.NodeID(0), p.Locate(sim.Point{X: 50, Y: 10}))
	assert.Equal(t, sim.NodeID(1), p.Locate(sim.Point{X: 50.001, Y: 10}))
	assert.Equal(t, sim.NotFound, p.Locate(sim.Point{X: -1, Y: 10}))
}

func TestNew_RegularGrid_CornerContactIsNotNeighbourhood(t *testing.T) {
	// GIVEN a 3x3 lattice of sites, so diagonal cells only meet at a corner
	p, err := New(testutil.LatticeSites(3, 3, 90), sim.NewSquareBounds(90))
	require.NoError(t, err)

	// THEN only edge-sharing cells are neighbours
	assert.Equal(t, []sim.NodeID{1, 3, 5, 7}, p.NeighborsOf(4))
	assert.Equal(t, []sim.NodeID{1, 3}, p.NeighborsOf(0))
	assert.Equal(t, []sim.NodeID{5, 7}, p.NeighborsOf(8))
	testutil.AssertFloat64Equal(t, "centre cell area", 900, p.CellOf(4).Area(), 1e-9)
}

func TestNew_RandomLayouts_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	for _, n := range []int{2, 5, 13, 30, 80} {
		b := sim.NewSquareBounds(800)
		sites := sim.SampleSites(rng, n, b)
		p, err := New(sites, b)
		require.NoError(t, err, "n=%d", n)

		total := 0.0
		for i := 0; i < n; i++ {
			node := sim.NodeID(i)
			cell := p.CellOf(node)
			require.NoError(t, sim.ValidateRegion(cell))
			total += cell.Area()

			// Self-location
			assert.Equal(t, node, p.Locate(p.SiteOf(node)), "n=%d node %d", n, i)

			// Every site lies in its own cell
			assert.True(t, sim.Overlaps(cell, sim.Circle{Center: p.SiteOf(node)}), "n=%d site %d outside its cell", n, i)

			// Neighbour symmetry
			for _, m := range p.NeighborsOf(node) {
				assert.Contains(t, p.NeighborsOf(m), node, "n=%d: %d lists %d but not vice versa", n, i, m)
				assert.NotEqual(t, node, m)
			}
		}
		testutil.AssertFloat64Equal(t, "total area", 800*800, total, 1e-9)
		if n > 1 {
			for i := 0; i < n; i++ {
				assert.NotEmpty(t, p.NeighborsOf(sim.NodeID(i)), "n=%d node %d isolated", n, i)
			}
		}
	}
}

func TestLocate_AgreesWithCells(t *testing.T) {
	// GIVEN a random tessellation
	rng := rand.New(rand.NewSource(5))
	b := sim.NewSquareBounds(200)
	p, err := New(sim.SampleSites(rng, 12, b), b)
	require.NoError(t, err)

	// THEN every located point lies in the cell of the node returned
	for i := 0; i < 500; i++ {
		pt := sim.Point{X: rng.Float64() * 200, Y: rng.Float64() * 200}
		n := p.Locate(pt)
		require.NotEqual(t, sim.NotFound, n)
		assert.True(t, sim.Overlaps(p.CellOf(n), sim.Circle{Center: pt}), "point %v not in cell of %d", pt, n)
	}
}

func TestNew_Errors(t *testing.T) {
	b := sim.NewSquareBounds(10)
	tests := []struct {
		name   string
		sites  []sim.Point
		bounds sim.Bounds
	}{
		{"no sites", nil, b},
		{"zero area bounds", []sim.Point{{X: 0, Y: 0}}, sim.Bounds{MaxX: 10}},
		{"site outside", []sim.Point{{X: 11, Y: 5}}, b},
		{"duplicate sites", []sim.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 1}}, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sites, tt.bounds)
			assert.ErrorIs(t, err, sim.ErrInvalidPartition)
		})
	}
}

func TestAccessors_ReturnCopies(t *testing.T) {
	p, err := New([]sim.Point{{X: 2, Y: 2}, {X: 8, Y: 8}}, sim.NewSquareBounds(10))
	require.NoError(t, err)

	cell := p.CellOf(0)
	cell.Points[0] = sim.Point{X: -100, Y: -100}
	ns := p.NeighborsOf(0)
	ns[0] = 99

	assert.NotEqual(t, sim.Point{X: -100, Y: -100}, p.CellOf(0).Points[0])
	assert.Equal(t, []sim.NodeID{1}, p.NeighborsOf(0))
}
