package sim

import (
	"math/rand"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_DeliversOnlyToOverlappingSubscriber(t *testing.T) {
	// GIVEN three subscriptions on "c" for nodes 1, 2, 3
	reg := NewRegistry()
	mustSubscribe(reg, 1, "c", square(0, 0, 10))
	mustSubscribe(reg, 2, "c", square(20, 0, 10))
	mustSubscribe(reg, 3, "c", square(40, 0, 10))
	reg.Freeze()
	engine := NewEngine(fixedOracle{outbound: 50, inbound: 30}, WebSocketOverhead)

	// WHEN node 1 publishes a region overlapping only node 2's square
	res := engine.Publish(PublicationEvent{
		Sender:      1,
		Channel:     "c",
		Region:      Circle{Center: Point{25, 5}, Radius: 2},
		PayloadSize: 32,
	}, reg)

	// THEN exactly one message goes to node 2
	assert.Equal(t, 1, res.MessagesDispatched)
	require.Len(t, res.Traffic, 2)
	assert.Equal(t, TrafficRecord{Client: 1, Outbound: 56}, res.Traffic[0])
	assert.Equal(t, TrafficRecord{Client: 2, Inbound: 36}, res.Traffic[1])
	assert.Equal(t, 56, res.TotalOutbound)
	assert.Equal(t, 36, res.TotalInbound)
	assert.Equal(t, []NodeID{2}, res.Recipients())
}

func TestPublish_EmptyChannel_OnlySenderRecord(t *testing.T) {
	// GIVEN a registry with nothing on channel "c"
	reg := NewRegistry()
	mustSubscribe(reg, 2, "elsewhere", square(0, 0, 10))
	engine := NewEngine(payloadOracle{}, WebSocketOverhead)

	// WHEN publishing on "c"
	res := engine.Publish(PublicationEvent{Sender: 7, Channel: "c", Region: square(0, 0, 10), PayloadSize: 8}, reg)

	// THEN no message is dispatched and only the outbound record exists
	assert.Equal(t, 0, res.MessagesDispatched)
	require.Len(t, res.Traffic, 1)
	assert.Equal(t, NodeID(7), res.Traffic[0].Client)
	assert.Equal(t, 10+1+8+WebSocketOverhead, res.Traffic[0].Outbound)
	assert.Equal(t, 0, res.Traffic[0].Inbound)
	assert.Equal(t, 0, res.TotalInbound)
	assert.Empty(t, res.Recipients())
}

func TestPublish_SenderNeverReceivesOwnPublication(t *testing.T) {
	// GIVEN the sender subscribes to the exact publication area twice
	reg := NewRegistry()
	mustSubscribe(reg, 0, "c", square(0, 0, 10))
	mustSubscribe(reg, 0, "c", Circle{Point{5, 5}, 3})
	mustSubscribe(reg, 1, "c", square(0, 0, 10))
	engine := NewEngine(fixedOracle{10, 10}, 0)

	res := engine.Publish(PublicationEvent{Sender: 0, Channel: "c", Region: square(0, 0, 10)}, reg)

	assert.Equal(t, []NodeID{1}, res.Recipients())
	for _, rec := range res.Traffic[1:] {
		assert.NotEqual(t, NodeID(0), rec.Client)
	}
}

func TestPublish_DuplicateSubscriptionsCountedSeparately(t *testing.T) {
	// GIVEN node 2 subscribes twice to regions both overlapping the publication
	reg := NewRegistry()
	mustSubscribe(reg, 2, "c", square(0, 0, 10))
	mustSubscribe(reg, 2, "c", Circle{Point{5, 5}, 1})
	engine := NewEngine(fixedOracle{20, 10}, WebSocketOverhead)

	res := engine.Publish(PublicationEvent{Sender: 1, Channel: "c", Region: Circle{Point{5, 5}, 2}}, reg)

	// THEN both subscriptions produce a message
	assert.Equal(t, 2, res.MessagesDispatched)
	assert.Equal(t, []NodeID{2, 2}, res.Recipients())
	assert.Equal(t, 2*(10+WebSocketOverhead), res.TotalInbound)
}

func TestPublish_Invariants_RandomScenarios(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	engine := NewEngine(payloadOracle{}, WebSocketOverhead)
	channels := []string{"a", "b"}

	for trial := 0; trial < 200; trial++ {
		// GIVEN a random registry
		reg := NewRegistry()
		for i := 0; i < 1+rng.Intn(15); i++ {
			var region Region = randomConvexPolygon(rng)
			if rng.Intn(2) == 0 {
				region = Circle{Point{rng.Float64() * 100, rng.Float64() * 100}, rng.Float64() * 15}
			}
			mustSubscribe(reg, NodeID(rng.Intn(6)), channels[rng.Intn(2)], region)
		}
		reg.Freeze()

		ev := PublicationEvent{
			Sender:      NodeID(rng.Intn(6)),
			Channel:     channels[rng.Intn(2)],
			Region:      Circle{Point{rng.Float64() * 100, rng.Float64() * 100}, rng.Float64() * 30},
			PayloadSize: rng.Intn(64),
		}

		// WHEN publishing
		res := engine.Publish(ev, reg)

		// THEN the dispatch invariants hold
		bound := len(reg.SubscriptionsFor(ev.Channel, ev.Sender))
		if res.MessagesDispatched > bound {
			t.Fatalf("trial %d: dispatched %d > bound %d", trial, res.MessagesDispatched, bound)
		}
		sumIn, sumOut, outClients := 0, 0, 0
		for i, rec := range res.Traffic {
			sumIn += rec.Inbound
			sumOut += rec.Outbound
			if rec.Outbound > 0 {
				outClients++
				if rec.Client != ev.Sender {
					t.Fatalf("trial %d: outbound bytes on non-sender %d", trial, rec.Client)
				}
			}
			if i > 0 && rec.Client == ev.Sender {
				t.Fatalf("trial %d: sender received its own publication", trial)
			}
		}
		if sumIn != res.TotalInbound || sumOut != res.TotalOutbound {
			t.Fatalf("trial %d: sums (%d, %d) != totals (%d, %d)", trial, sumIn, sumOut, res.TotalInbound, res.TotalOutbound)
		}
		if outClients != 1 {
			t.Fatalf("trial %d: %d clients with outbound bytes, want 1", trial, outClients)
		}
		if len(res.Traffic) != res.MessagesDispatched+1 {
			t.Fatalf("trial %d: %d records for %d messages", trial, len(res.Traffic), res.MessagesDispatched)
		}
	}
}

func TestPublish_Deterministic_AcrossGoroutines(t *testing.T) {
	// GIVEN a frozen registry of strip cells
	part := stripPartition{n: 8}
	reg := NewRegistry()
	require.NoError(t, reg.SubscribeCells(part, "overlay"))
	reg.Freeze()
	engine := NewEngine(payloadOracle{}, WebSocketOverhead)
	ev := PublicationEvent{Sender: 3, Channel: "overlay", Region: Circle{Point{35, 5}, 12}, PayloadSize: 32}

	want := engine.Publish(ev, reg)

	// WHEN many goroutines publish the same event concurrently
	var wg sync.WaitGroup
	results := make([]PublicationResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Publish(ev, reg)
		}(i)
	}
	wg.Wait()

	// THEN every result is identical
	for i, got := range results {
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("result %d differs: %+v vs %+v", i, got, want)
		}
	}
	assert.Equal(t, []NodeID{2, 4}, want.Recipients())
}

func TestNewEngine_Panics(t *testing.T) {
	assert.Panics(t, func() { NewEngine(nil, 0) })
	assert.Panics(t, func() { NewEngine(fixedOracle{}, -1) })
	assert.Equal(t, 6, NewEngine(fixedOracle{}, WebSocketOverhead).TransportOverhead())
}

func TestEventAt(t *testing.T) {
	part := stripPartition{n: 3}
	region := Circle{Point{15, 5}, 4}

	ev, err := EventAt(part, Point{15, 5}, "c", region, 32)
	require.NoError(t, err)
	assert.Equal(t, PublicationEvent{Sender: 1, Channel: "c", Region: region, PayloadSize: 32}, ev)

	_, err = EventAt(part, Point{-1, 5}, "c", region, 32)
	assert.ErrorIs(t, err, ErrOutsideWorld)
}

func TestNeighborCounts(t *testing.T) {
	assert.Equal(t, []int{1, 2, 2, 1}, NeighborCounts(stripPartition{n: 4}))
	assert.Equal(t, []int{0}, NeighborCounts(stripPartition{n: 1}))
}
