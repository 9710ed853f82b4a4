package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var (
	// ErrInvalidPartition is returned when a partition cannot be built from
	// the given node count, sites or bounds.
	ErrInvalidPartition = errors.New("invalid partition")

	// ErrOutsideWorld is returned when a world point is not claimed by any cell.
	ErrOutsideWorld = errors.New("point outside simulated world")
)

// NodeID identifies a node within one partition, in [0, NodeCount()).
type NodeID int

// NotFound is returned by Partition.Locate for points no cell claims.
const NotFound NodeID = -1

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// NewSquareBounds returns the bounds [0, width] x [0, width].
func NewSquareBounds(width float64) Bounds {
	return Bounds{MaxX: width, MaxY: width}
}

// Width returns MaxX - MinX.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns MaxY - MinY.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Validate returns ErrInvalidPartition for non-finite bounds or bounds with
// zero or negative area.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: bounds %+v are not finite", ErrInvalidPartition, b)
		}
	}
	if b.Width() <= 0 || b.Height() <= 0 {
		return fmt.Errorf("%w: bounds %+v must have positive area", ErrInvalidPartition, b)
	}
	return nil
}

// Contains reports whether p lies in the closed rectangle.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Polygon returns the rectangle as a counter-clockwise polygon.
func (b Bounds) Polygon() Polygon {
	return Polygon{Points: []Point{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
	}}
}

// Partition is a frozen tessellation of the world into one cell per node.
// Implementations must be safe for concurrent readers.
type Partition interface {
	NodeCount() int
	Bounds() Bounds
	// SiteOf returns the seed coordinate of n.
	SiteOf(n NodeID) Point
	// CellOf returns the cell of n clipped to Bounds.
	CellOf(n NodeID) Polygon
	// NeighborsOf returns, in ascending order, the nodes whose cells share
	// a boundary edge with n's cell. The relation is symmetric.
	NeighborsOf(n NodeID) []NodeID
	// Locate returns the node whose cell contains p, or NotFound.
	Locate(p Point) NodeID
}

// NeighborCounts returns len(NeighborsOf(n)) for every node.
func NeighborCounts(p Partition) []int {
	counts := make([]int, p.NodeCount())
	for i := range counts {
		counts[i] = len(p.NeighborsOf(NodeID(i)))
	}
	return counts
}

// SampleSites draws n sites uniformly from b using rng.
func SampleSites(rng *rand.Rand, n int, b Bounds) []Point {
	sites := make([]Point, n)
	for i := range sites {
		sites[i] = Point{
			X: b.MinX + rng.Float64()*b.Width(),
			Y: b.MinY + rng.Float64()*b.Height(),
		}
	}
	return sites
}

// EventAt builds a publication sent by the node owning point. Points no cell
// claims yield ErrOutsideWorld.
func EventAt(p Partition, point Point, channel string, region Region, payloadSize int) (PublicationEvent, error) {
	sender := p.Locate(point)
	if sender == NotFound {
		return PublicationEvent{}, fmt.Errorf("%w: (%g, %g)", ErrOutsideWorld, point.X, point.Y)
	}
	return PublicationEvent{
		Sender:      sender,
		Channel:     channel,
		Region:      region,
		PayloadSize: payloadSize,
	}, nil
}
