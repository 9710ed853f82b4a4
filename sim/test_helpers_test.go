package sim

import "sort"

// fixedOracle returns constant sizes so accounting can be checked by hand.
type fixedOracle struct {
	outbound int
	inbound  int
}

func (o fixedOracle) OutboundSize(Region, string, int) int { return o.outbound }
func (o fixedOracle) InboundSize(int) int                  { return o.inbound }

// payloadOracle scales with the payload so tests can tell sizes apart.
type payloadOracle struct{}

func (payloadOracle) OutboundSize(_ Region, channel string, payloadSize int) int {
	return 10 + len(channel) + payloadSize
}
func (payloadOracle) InboundSize(payloadSize int) int { return 4 + payloadSize }

// stripPartition splits [0, 10*n] x [0, 10] into n vertical strips of width 10.
type stripPartition struct{ n int }

func (s stripPartition) NodeCount() int { return s.n }
func (s stripPartition) Bounds() Bounds {
	return Bounds{MaxX: float64(10 * s.n), MaxY: 10}
}
func (s stripPartition) SiteOf(n NodeID) Point { return Point{X: float64(10*n) + 5, Y: 5} }
func (s stripPartition) CellOf(n NodeID) Polygon {
	x0, x1 := float64(10*n), float64(10*n+10)
	return Polygon{Points: []Point{{x0, 0}, {x1, 0}, {x1, 10}, {x0, 10}}}
}
func (s stripPartition) NeighborsOf(n NodeID) []NodeID {
	var out []NodeID
	for _, m := range []NodeID{n - 1, n + 1} {
		if m >= 0 && int(m) < s.n {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
func (s stripPartition) Locate(p Point) NodeID {
	if !s.Bounds().Contains(p) {
		return NotFound
	}
	n := NodeID(p.X / 10)
	if int(n) >= s.n {
		n = NodeID(s.n - 1)
	}
	return n
}

func square(x0, y0, side float64) Polygon {
	return Polygon{Points: []Point{
		{x0, y0}, {x0 + side, y0}, {x0 + side, y0 + side}, {x0, y0 + side},
	}}
}

func mustSubscribe(reg *Registry, node NodeID, channel string, region Region) {
	if err := reg.Subscribe(node, channel, region); err != nil {
		panic(err)
	}
}
