package sim

import (
	"errors"
	"fmt"
)

// ErrRegistryFrozen is returned by Subscribe once the registry is frozen.
var ErrRegistryFrozen = errors.New("subscription registry is frozen")

// Subscription is a node's interest in a region of a channel.
type Subscription struct {
	Node    NodeID
	Channel string
	Region  Region
}

// Registry is an append-only collection of subscriptions.
//
// Population is single-writer: Subscribe must not be called concurrently.
// After Freeze the registry is read-only and safe for concurrent readers.
type Registry struct {
	subs      []Subscription
	byChannel map[string][]int // channel → indexes into subs, insertion order
	frozen    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subs:      make([]Subscription, 0),
		byChannel: make(map[string][]int),
	}
}

// Subscribe validates region and appends the subscription. Multiple
// subscriptions per node and channel are kept as-is.
func (r *Registry) Subscribe(node NodeID, channel string, region Region) error {
	if r.frozen {
		return ErrRegistryFrozen
	}
	if node < 0 {
		return fmt.Errorf("subscribe: node id must be non-negative, got %d", node)
	}
	if err := ValidateRegion(region); err != nil {
		return fmt.Errorf("subscribe node %d on %q: %w", node, channel, err)
	}
	r.byChannel[channel] = append(r.byChannel[channel], len(r.subs))
	r.subs = append(r.subs, Subscription{Node: node, Channel: channel, Region: region})
	return nil
}

// SubscribeCells subscribes every node of p to its own cell on channel.
func (r *Registry) SubscribeCells(p Partition, channel string) error {
	for i := 0; i < p.NodeCount(); i++ {
		n := NodeID(i)
		if err := r.Subscribe(n, channel, p.CellOf(n)); err != nil {
			return err
		}
	}
	return nil
}

// Freeze ends the population phase.
func (r *Registry) Freeze() { r.frozen = true }

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen }

// SubscriptionsFor returns, in insertion order, the subscriptions on channel
// whose node is not exclude. The returned slice is owned by the caller.
func (r *Registry) SubscriptionsFor(channel string, exclude NodeID) []Subscription {
	idx := r.byChannel[channel]
	out := make([]Subscription, 0, len(idx))
	for _, i := range idx {
		if r.subs[i].Node == exclude {
			continue
		}
		out = append(out, r.subs[i])
	}
	return out
}

// Subscriptions returns a copy of every subscription in insertion order.
func (r *Registry) Subscriptions() []Subscription {
	out := make([]Subscription, len(r.subs))
	copy(out, r.subs)
	return out
}

// Len returns the number of subscriptions.
func (r *Registry) Len() int { return len(r.subs) }
