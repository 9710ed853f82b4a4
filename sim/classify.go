package sim

// RegionClass labels a subscription for drawing a publication scenario.
type RegionClass string

const (
	ClassSubscription RegionClass = "subscription"
	ClassOrigin       RegionClass = "subscription-origin"
	ClassEnclosing    RegionClass = "subscription-enclosing"
	ClassDispatched   RegionClass = "subscription-sps"
	ClassBoth         RegionClass = "subscription-both"
)

// ClassifiedSubscription is a subscription annotated with its role in one
// publication.
type ClassifiedSubscription struct {
	Subscription
	IsOrigin     bool // owned by the sender
	IsEnclosing  bool // owned by a partition neighbour of the sender
	IsDispatched bool // owner received the publication
	Class        RegionClass
}

// Classify annotates every subscription on res.Channel. Precedence when
// several flags hold: both > origin > enclosing > dispatched.
func Classify(reg *Registry, part Partition, res PublicationResult) []ClassifiedSubscription {
	neighbors := make(map[NodeID]bool)
	for _, n := range part.NeighborsOf(res.Sender) {
		neighbors[n] = true
	}
	dispatched := make(map[NodeID]bool)
	for _, n := range res.Recipients() {
		dispatched[n] = true
	}

	subs := reg.SubscriptionsFor(res.Channel, NotFound)
	out := make([]ClassifiedSubscription, len(subs))
	for i, s := range subs {
		cs := ClassifiedSubscription{
			Subscription: s,
			IsOrigin:     s.Node == res.Sender,
			IsEnclosing:  neighbors[s.Node],
			IsDispatched: dispatched[s.Node],
		}
		switch {
		case cs.IsDispatched && cs.IsEnclosing:
			cs.Class = ClassBoth
		case cs.IsOrigin:
			cs.Class = ClassOrigin
		case cs.IsEnclosing:
			cs.Class = ClassEnclosing
		case cs.IsDispatched:
			cs.Class = ClassDispatched
		default:
			cs.Class = ClassSubscription
		}
		out[i] = cs
	}
	return out
}
