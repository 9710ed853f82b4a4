package sim

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRegion is returned when a region is malformed: a polygon with
// fewer than 3 vertices, a negative radius, or non-finite coordinates.
var ErrInvalidRegion = errors.New("invalid region")

// Point is a coordinate in world space.
type Point struct {
	X float64
	Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// DistSq returns the squared euclidean distance between p and q.
func (p Point) DistSq(q Point) float64 {
	d := p.Sub(q)
	return d.Dot(d)
}

func (p Point) finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// RegionKind discriminates the Region variants.
type RegionKind int

const (
	KindCircle RegionKind = iota + 1
	KindPolygon
)

// String returns the wire name of the kind.
func (k RegionKind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindPolygon:
		return "polygon"
	default:
		return fmt.Sprintf("RegionKind(%d)", int(k))
	}
}

// Region is an area of interest. It is a closed set: only Circle and Polygon
// implement it.
type Region interface {
	Kind() RegionKind
	isRegion()
}

// Circle is a disc around Center. A zero radius is a single point.
type Circle struct {
	Center Point
	Radius float64
}

// Kind implements Region.
func (Circle) Kind() RegionKind { return KindCircle }
func (Circle) isRegion()        {}

// Polygon is a convex polygon given by its vertices in order, without a
// repeated closing vertex.
type Polygon struct {
	Points []Point
}

// Kind implements Region.
func (Polygon) Kind() RegionKind { return KindPolygon }
func (Polygon) isRegion()        {}

// NewCircle validates and returns a circle region.
func NewCircle(center Point, radius float64) (Circle, error) {
	c := Circle{Center: center, Radius: radius}
	if err := validateCircle(c); err != nil {
		return Circle{}, err
	}
	return c, nil
}

// NewPolygon validates and returns a polygon region. The points are copied.
// A closing vertex equal to the first one is dropped.
func NewPolygon(points []Point) (Polygon, error) {
	pts := make([]Point, len(points))
	copy(pts, points)
	if n := len(pts); n > 1 && pts[0] == pts[n-1] {
		pts = pts[:n-1]
	}
	p := Polygon{Points: pts}
	if err := validatePolygon(p); err != nil {
		return Polygon{}, err
	}
	return p, nil
}

// ValidateRegion checks that r is well formed. Overlap tests assume every
// region they receive has passed this check.
func ValidateRegion(r Region) error {
	switch v := r.(type) {
	case Circle:
		return validateCircle(v)
	case Polygon:
		return validatePolygon(v)
	case nil:
		return fmt.Errorf("%w: nil region", ErrInvalidRegion)
	default:
		return fmt.Errorf("%w: unknown region type %T", ErrInvalidRegion, r)
	}
}

func validateCircle(c Circle) error {
	if !c.Center.finite() {
		return fmt.Errorf("%w: circle center %v is not finite", ErrInvalidRegion, c.Center)
	}
	if math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) {
		return fmt.Errorf("%w: circle radius %v is not finite", ErrInvalidRegion, c.Radius)
	}
	if c.Radius < 0 {
		return fmt.Errorf("%w: circle radius must be non-negative, got %v", ErrInvalidRegion, c.Radius)
	}
	return nil
}

func validatePolygon(p Polygon) error {
	if len(p.Points) < 3 {
		return fmt.Errorf("%w: polygon needs at least 3 vertices, got %d", ErrInvalidRegion, len(p.Points))
	}
	for i, pt := range p.Points {
		if !pt.finite() {
			return fmt.Errorf("%w: polygon vertex %d (%v) is not finite", ErrInvalidRegion, i, pt)
		}
	}
	return nil
}

// Area returns the absolute area of the polygon (shoelace formula).
func (p Polygon) Area() float64 {
	n := len(p.Points)
	sum := 0.0
	for i := 0; i < n; i++ {
		a, b := p.Points[i], p.Points[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(sum) / 2
}
