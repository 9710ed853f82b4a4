package sim

import "math"

// Overlaps reports whether two regions intersect, using the separating axis
// theorem. Regions are closed sets, so shapes that merely touch overlap.
// The result is symmetric in a and b.
func Overlaps(a, b Region) bool {
	switch av := a.(type) {
	case Circle:
		switch bv := b.(type) {
		case Circle:
			return circlesOverlap(av, bv)
		case Polygon:
			return polygonCircleOverlap(bv, av)
		}
	case Polygon:
		switch bv := b.(type) {
		case Circle:
			return polygonCircleOverlap(av, bv)
		case Polygon:
			return polygonsOverlap(av, bv)
		}
	}
	return false
}

func circlesOverlap(a, b Circle) bool {
	r := a.Radius + b.Radius
	return a.Center.DistSq(b.Center) <= r*r
}

// polygonCircleOverlap tests the polygon edge normals plus the axis through
// the circle center and the nearest polygon vertex.
func polygonCircleOverlap(p Polygon, c Circle) bool {
	n := len(p.Points)
	for i := 0; i < n; i++ {
		axis := edgeNormal(p.Points[i], p.Points[(i+1)%n])
		if axis == (Point{}) {
			continue
		}
		if separatesCircle(p, c, axis) {
			return false
		}
	}

	nearest := p.Points[0]
	best := nearest.DistSq(c.Center)
	for _, v := range p.Points[1:] {
		if d := v.DistSq(c.Center); d < best {
			nearest, best = v, d
		}
	}
	axis := nearest.Sub(c.Center)
	if axis == (Point{}) {
		return true
	}
	return !separatesCircle(p, c, axis)
}

func separatesCircle(p Polygon, c Circle, axis Point) bool {
	minP, maxP := project(p.Points, axis)
	center := c.Center.Dot(axis)
	r := c.Radius * math.Sqrt(axis.Dot(axis))
	return center+r < minP || center-r > maxP
}

func polygonsOverlap(a, b Polygon) bool {
	return !hasSeparatingEdge(a, b) && !hasSeparatingEdge(b, a)
}

// hasSeparatingEdge checks the edge normals of a as candidate axes.
func hasSeparatingEdge(a, b Polygon) bool {
	n := len(a.Points)
	for i := 0; i < n; i++ {
		axis := edgeNormal(a.Points[i], a.Points[(i+1)%n])
		if axis == (Point{}) {
			continue
		}
		minA, maxA := project(a.Points, axis)
		minB, maxB := project(b.Points, axis)
		if maxA < minB || maxB < minA {
			return true
		}
	}
	return false
}

func edgeNormal(from, to Point) Point {
	e := to.Sub(from)
	return Point{X: -e.Y, Y: e.X}
}

func project(points []Point, axis Point) (lo, hi float64) {
	lo = points[0].Dot(axis)
	hi = lo
	for _, pt := range points[1:] {
		d := pt.Dot(axis)
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi
}
