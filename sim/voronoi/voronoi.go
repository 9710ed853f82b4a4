// Package voronoi tessellates a rectangle into the Voronoi cells of a set of
// node sites.
//
// Each cell starts as the bounds rectangle and is clipped by the
// perpendicular bisector half-plane of every other site. Every clipped edge
// remembers which bisector produced it, which yields the neighbour relation
// without a separate Delaunay triangulation. Construction is O(n²) in the
// number of sites, which is negligible next to a grid sweep.
package voronoi

import (
	"fmt"
	"math"
	"sort"

	"github.com/vast-sim/sps-sim/sim"
)

// boundsEdge labels cell edges that lie on the bounds rectangle.
const boundsEdge = -1

// relTolerance is scaled by the bounds size to get the geometric tolerance
// used for half-plane tests and degenerate edge removal.
const relTolerance = 1e-9

// Partition is a Voronoi tessellation clipped to bounds. It is immutable and
// safe for concurrent readers.
type Partition struct {
	bounds    sim.Bounds
	sites     []sim.Point
	cells     []sim.Polygon
	neighbors [][]sim.NodeID
}

var _ sim.Partition = (*Partition)(nil)

// vertex is a cell corner; edge labels the segment from this vertex to the
// next one with the index of the site whose bisector it lies on.
type vertex struct {
	p    sim.Point
	edge int
}

// New builds the tessellation of sites within bounds. It fails with
// sim.ErrInvalidPartition when there are no sites, the bounds have no area,
// or a site is outside the bounds or duplicated.
func New(sites []sim.Point, bounds sim.Bounds) (*Partition, error) {
	if len(sites) < 1 {
		return nil, fmt.Errorf("%w: node count must be >= 1, got %d", sim.ErrInvalidPartition, len(sites))
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[sim.Point]int, len(sites))
	for i, s := range sites {
		if !bounds.Contains(s) {
			return nil, fmt.Errorf("%w: site %d (%g, %g) outside bounds", sim.ErrInvalidPartition, i, s.X, s.Y)
		}
		if j, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: sites %d and %d coincide at (%g, %g)", sim.ErrInvalidPartition, j, i, s.X, s.Y)
		}
		seen[s] = i
	}

	p := &Partition{
		bounds:    bounds,
		sites:     append([]sim.Point(nil), sites...),
		cells:     make([]sim.Polygon, len(sites)),
		neighbors: make([][]sim.NodeID, len(sites)),
	}
	tol := relTolerance * math.Max(bounds.Width(), bounds.Height())

	adjacent := make([]map[int]bool, len(sites))
	for i := range sites {
		adjacent[i] = make(map[int]bool)
	}
	for i := range sites {
		cell := p.clipCell(i, tol)
		if len(cell) < 3 {
			return nil, fmt.Errorf("%w: cell of site %d degenerated; sites too close", sim.ErrInvalidPartition, i)
		}
		pts := make([]sim.Point, len(cell))
		for k, v := range cell {
			pts[k] = v.p
			if v.edge != boundsEdge {
				adjacent[i][v.edge] = true
				adjacent[v.edge][i] = true
			}
		}
		p.cells[i] = sim.Polygon{Points: pts}
	}
	for i, set := range adjacent {
		ns := make([]sim.NodeID, 0, len(set))
		for j := range set {
			ns = append(ns, sim.NodeID(j))
		}
		sort.Slice(ns, func(a, b int) bool { return ns[a] < ns[b] })
		p.neighbors[i] = ns
	}
	return p, nil
}

// clipCell returns the labelled cell of site i.
func (p *Partition) clipCell(i int, tol float64) []vertex {
	rect := p.bounds.Polygon().Points
	cell := make([]vertex, len(rect))
	for k, pt := range rect {
		cell[k] = vertex{p: pt, edge: boundsEdge}
	}
	si := p.sites[i]
	for j, sj := range p.sites {
		if j == i {
			continue
		}
		n := sj.Sub(si)
		norm := math.Hypot(n.X, n.Y)
		n = sim.Point{X: n.X / norm, Y: n.Y / norm}
		mid := sim.Point{X: (si.X + sj.X) / 2, Y: (si.Y + sj.Y) / 2}
		cell = clip(cell, n, n.Dot(mid), j, tol)
		if len(cell) == 0 {
			break
		}
	}
	return dropShortEdges(cell, tol)
}

// clip keeps the part of the convex polygon where n·p <= c (Sutherland-Hodgman).
// The edge created along the clipping line is labelled with label.
func clip(poly []vertex, n sim.Point, c float64, label int, tol float64) []vertex {
	out := make([]vertex, 0, len(poly)+1)
	for k := range poly {
		a, b := poly[k], poly[(k+1)%len(poly)]
		da, db := n.Dot(a.p)-c, n.Dot(b.p)-c
		aIn, bIn := da <= tol, db <= tol
		switch {
		case aIn && bIn:
			out = append(out, a)
		case aIn && !bIn:
			out = append(out, a, vertex{p: intersect(a.p, b.p, da, db), edge: label})
		case !aIn && bIn:
			out = append(out, vertex{p: intersect(a.p, b.p, da, db), edge: a.edge})
		}
	}
	return out
}

func intersect(a, b sim.Point, da, db float64) sim.Point {
	t := da / (da - db)
	return sim.Point{X: a.X + t*(b.X-a.X), Y: a.Y + t*(b.Y-a.Y)}
}

// dropShortEdges removes vertices whose outgoing edge is shorter than tol.
// The incoming edge keeps its label, so a bisector that only touches the cell
// in a point does not make the two sites neighbours.
func dropShortEdges(cell []vertex, tol float64) []vertex {
	tolSq := tol * tol
	for changed := true; changed && len(cell) >= 3; {
		changed = false
		for k := range cell {
			next := cell[(k+1)%len(cell)]
			if cell[k].p.DistSq(next.p) < tolSq {
				cell = append(cell[:k], cell[k+1:]...)
				changed = true
				break
			}
		}
	}
	return cell
}

// NodeCount implements sim.Partition.
func (p *Partition) NodeCount() int { return len(p.sites) }

// Bounds implements sim.Partition.
func (p *Partition) Bounds() sim.Bounds { return p.bounds }

// SiteOf implements sim.Partition.
func (p *Partition) SiteOf(n sim.NodeID) sim.Point { return p.sites[n] }

// CellOf implements sim.Partition. The returned polygon is a copy,
// counter-clockwise.
func (p *Partition) CellOf(n sim.NodeID) sim.Polygon {
	pts := p.cells[n].Points
	return sim.Polygon{Points: append([]sim.Point(nil), pts...)}
}

// NeighborsOf implements sim.Partition.
func (p *Partition) NeighborsOf(n sim.NodeID) []sim.NodeID {
	return append([]sim.NodeID(nil), p.neighbors[n]...)
}

// Locate implements sim.Partition with a linear scan for the nearest site.
// A point equidistant from several sites, i.e. on a shared cell edge or
// corner, belongs to the lowest NodeID among them. Points outside the bounds
// return sim.NotFound.
func (p *Partition) Locate(pt sim.Point) sim.NodeID {
	if !p.bounds.Contains(pt) {
		return sim.NotFound
	}
	best := sim.NodeID(0)
	bestDist := pt.DistSq(p.sites[0])
	for i := 1; i < len(p.sites); i++ {
		if d := pt.DistSq(p.sites[i]); d < bestDist {
			best, bestDist = sim.NodeID(i), d
		}
	}
	return best
}
