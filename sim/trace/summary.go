package trace

// DirectPacketSize is the per-neighbour cost of the direct baseline: a
// 36-byte publish packet plus a 43-byte node handle.
const DirectPacketSize = 36 + 43

// TrafficAverages are mean bytes per publication.
type TrafficAverages struct {
	AvgIn    float64 `json:"avgIn"`
	AvgOut   float64 `json:"avgOut"`
	AvgTotal float64 `json:"avgTotal"`
}

// NetStats compares spatial publish/subscribe traffic with the direct
// baseline, which sends one packet to every spatial neighbour of the sender.
type NetStats struct {
	SPS    TrafficAverages `json:"sps"`
	Direct TrafficAverages `json:"direct"`
}

// MessageStats are mean messages per publication.
type MessageStats struct {
	SPS    float64 `json:"sps"`
	Direct float64 `json:"direct"`
}

// Stats is the results.json document of a single run.
type Stats struct {
	Net      NetStats     `json:"net"`
	Messages MessageStats `json:"messages"`
}

// Accumulator sums publication outcomes with integer arithmetic, so partial
// accumulators from parallel workers merge to the same value in any order.
// The zero value is ready to use.
type Accumulator struct {
	Publications   int64
	In             int64
	Out            int64
	Messages       int64
	DirectMessages int64
}

// Add records one publication. neighborCount is the number of spatial
// neighbours of the sender, i.e. the direct baseline's message count.
func (a *Accumulator) Add(in, out, messages, neighborCount int) {
	a.Publications++
	a.In += int64(in)
	a.Out += int64(out)
	a.Messages += int64(messages)
	a.DirectMessages += int64(neighborCount)
}

// Merge folds other into a.
func (a *Accumulator) Merge(other Accumulator) {
	a.Publications += other.Publications
	a.In += other.In
	a.Out += other.Out
	a.Messages += other.Messages
	a.DirectMessages += other.DirectMessages
}

// Stats converts the sums into per-publication averages. An empty
// accumulator yields zero-valued Stats.
func (a Accumulator) Stats(directPacketSize int) Stats {
	if a.Publications == 0 {
		return Stats{}
	}
	n := float64(a.Publications)
	direct := float64(a.DirectMessages*int64(directPacketSize)) / n
	return Stats{
		Net: NetStats{
			SPS: TrafficAverages{
				AvgIn:    float64(a.In) / n,
				AvgOut:   float64(a.Out) / n,
				AvgTotal: float64(a.In+a.Out) / n,
			},
			Direct: TrafficAverages{AvgIn: direct, AvgOut: direct, AvgTotal: direct},
		},
		Messages: MessageStats{
			SPS:    float64(a.Messages) / n,
			Direct: float64(a.DirectMessages) / n,
		},
	}
}

// Summarize computes Stats from a SimulationTrace. neighborCounts is indexed
// by sender; senders outside it count as having no neighbours.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace, neighborCounts []int, directPacketSize int) Stats {
	var acc Accumulator
	if st == nil {
		return acc.Stats(directPacketSize)
	}
	for _, p := range st.Publications {
		neighbors := 0
		if p.Sender >= 0 && p.Sender < len(neighborCounts) {
			neighbors = neighborCounts[p.Sender]
		}
		acc.Add(p.TotalTraffic.In, p.TotalTraffic.Out, p.MessagesDispatched, neighbors)
	}
	return acc.Stats(directPacketSize)
}
