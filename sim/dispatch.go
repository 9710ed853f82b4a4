package sim

import "fmt"

// WebSocketOverhead is the per-frame transport overhead, in bytes, added to
// every packet.
const WebSocketOverhead = 6

// WireSizeOracle reports serialized packet sizes. Implementations must be
// deterministic and return non-negative sizes.
type WireSizeOracle interface {
	// OutboundSize is the size of the packet the sender hands to the broker.
	OutboundSize(region Region, channel string, payloadSize int) int
	// InboundSize is the size of the packet the broker delivers to a subscriber.
	InboundSize(payloadSize int) int
}

// PublicationEvent is a single publication to evaluate.
type PublicationEvent struct {
	Sender      NodeID
	Channel     string
	Region      Region
	PayloadSize int
}

// TrafficRecord is the traffic one participant sees for a publication.
type TrafficRecord struct {
	Client   NodeID
	Inbound  int
	Outbound int
}

// PublicationResult is the outcome of Engine.Publish. The first record is
// always the sender's outbound packet; the rest are deliveries in
// subscription insertion order.
type PublicationResult struct {
	Sender             NodeID
	Channel            string
	Traffic            []TrafficRecord
	TotalInbound       int
	TotalOutbound      int
	MessagesDispatched int
}

// Recipients returns the receiving node of every delivery, in order. A node
// appears once per matching subscription.
func (r PublicationResult) Recipients() []NodeID {
	out := make([]NodeID, 0, r.MessagesDispatched)
	if len(r.Traffic) < 2 {
		return out
	}
	for _, rec := range r.Traffic[1:] {
		out = append(out, rec.Client)
	}
	return out
}

// Engine evaluates publications against a frozen Registry.
// Publish has no side effects, so one Engine may serve many goroutines.
type Engine struct {
	oracle            WireSizeOracle
	transportOverhead int
}

// NewEngine creates an Engine charging transportOverhead bytes per packet.
// Panics on a nil oracle or a negative overhead.
func NewEngine(oracle WireSizeOracle, transportOverhead int) *Engine {
	if oracle == nil {
		panic("NewEngine: nil WireSizeOracle")
	}
	if transportOverhead < 0 {
		panic(fmt.Sprintf("NewEngine: transportOverhead must be >= 0, got %d", transportOverhead))
	}
	return &Engine{oracle: oracle, transportOverhead: transportOverhead}
}

// TransportOverhead returns the per-packet overhead in bytes.
func (e *Engine) TransportOverhead() int { return e.transportOverhead }

// Publish determines the recipients of ev and accounts for its traffic.
// Every same-channel subscription of another node whose region overlaps
// ev.Region receives one message; two matching subscriptions of the same node
// yield two messages.
func (e *Engine) Publish(ev PublicationEvent, reg *Registry) PublicationResult {
	candidates := reg.SubscriptionsFor(ev.Channel, ev.Sender)

	outbound := e.oracle.OutboundSize(ev.Region, ev.Channel, ev.PayloadSize) + e.transportOverhead
	res := PublicationResult{
		Sender:        ev.Sender,
		Channel:       ev.Channel,
		Traffic:       make([]TrafficRecord, 1, len(candidates)+1),
		TotalOutbound: outbound,
	}
	res.Traffic[0] = TrafficRecord{Client: ev.Sender, Outbound: outbound}

	inbound := -1
	for _, c := range candidates {
		if !Overlaps(c.Region, ev.Region) {
			continue
		}
		if inbound < 0 {
			inbound = e.oracle.InboundSize(ev.PayloadSize) + e.transportOverhead
		}
		res.Traffic = append(res.Traffic, TrafficRecord{Client: c.Node, Inbound: inbound})
		res.TotalInbound += inbound
		res.MessagesDispatched++
	}
	return res
}
