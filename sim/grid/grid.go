// Package grid partitions a rectangle into a uniform grid of cells, one node
// per cell.
package grid

import (
	"fmt"
	"math"

	"github.com/vast-sim/sps-sim/sim"
)

// Partition is a rows x cols grid. Node ids are row-major from the
// (MinX, MinY) corner: id = row*cols + col.
type Partition struct {
	rows, cols int
	bounds     sim.Bounds
	cellW      float64
	cellH      float64
}

var _ sim.Partition = (*Partition)(nil)

// New creates a rows x cols grid over bounds.
func New(rows, cols int, bounds sim.Bounds) (*Partition, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: grid needs at least one row and column, got %dx%d", sim.ErrInvalidPartition, rows, cols)
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &Partition{
		rows:   rows,
		cols:   cols,
		bounds: bounds,
		cellW:  bounds.Width() / float64(cols),
		cellH:  bounds.Height() / float64(rows),
	}, nil
}

// ForNodes creates a grid of exactly n cells, using the most square
// factorisation of n (rows <= cols). A prime n yields a single row.
func ForNodes(n int, bounds sim.Bounds) (*Partition, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: node count must be >= 1, got %d", sim.ErrInvalidPartition, n)
	}
	rows := int(math.Sqrt(float64(n)))
	for n%rows != 0 {
		rows--
	}
	return New(rows, n/rows, bounds)
}

// Dims returns the number of rows and columns.
func (p *Partition) Dims() (rows, cols int) { return p.rows, p.cols }

// NodeCount implements sim.Partition.
func (p *Partition) NodeCount() int { return p.rows * p.cols }

// Bounds implements sim.Partition.
func (p *Partition) Bounds() sim.Bounds { return p.bounds }

func (p *Partition) rowCol(n sim.NodeID) (int, int) {
	if n < 0 || int(n) >= p.NodeCount() {
		panic(fmt.Sprintf("grid: node %d out of range [0, %d)", n, p.NodeCount()))
	}
	return int(n) / p.cols, int(n) % p.cols
}

// SiteOf implements sim.Partition; the site is the cell centre.
func (p *Partition) SiteOf(n sim.NodeID) sim.Point {
	r, c := p.rowCol(n)
	return sim.Point{
		X: p.bounds.MinX + (float64(c)+0.5)*p.cellW,
		Y: p.bounds.MinY + (float64(r)+0.5)*p.cellH,
	}
}

// CellOf implements sim.Partition.
func (p *Partition) CellOf(n sim.NodeID) sim.Polygon {
	r, c := p.rowCol(n)
	x0 := p.bounds.MinX + float64(c)*p.cellW
	y0 := p.bounds.MinY + float64(r)*p.cellH
	return sim.Polygon{Points: []sim.Point{
		{X: x0, Y: y0},
		{X: x0 + p.cellW, Y: y0},
		{X: x0 + p.cellW, Y: y0 + p.cellH},
		{X: x0, Y: y0 + p.cellH},
	}}
}

// NeighborsOf implements sim.Partition. Cells meeting only at a corner are
// not neighbours.
func (p *Partition) NeighborsOf(n sim.NodeID) []sim.NodeID {
	r, c := p.rowCol(n)
	out := make([]sim.NodeID, 0, 4)
	if r > 0 {
		out = append(out, n-sim.NodeID(p.cols))
	}
	if c > 0 {
		out = append(out, n-1)
	}
	if c < p.cols-1 {
		out = append(out, n+1)
	}
	if r < p.rows-1 {
		out = append(out, n+sim.NodeID(p.cols))
	}
	return out
}

// Locate implements sim.Partition in constant time. A point on an interior
// cell boundary belongs to the cell above/right of it; the MaxX and MaxY
// edges belong to the last column and row.
func (p *Partition) Locate(pt sim.Point) sim.NodeID {
	if !p.bounds.Contains(pt) {
		return sim.NotFound
	}
	c := min(int((pt.X-p.bounds.MinX)/p.cellW), p.cols-1)
	r := min(int((pt.Y-p.bounds.MinY)/p.cellH), p.rows-1)
	return sim.NodeID(r*p.cols + c)
}
