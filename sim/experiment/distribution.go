package experiment

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/vast-sim/sps-sim/sim/trace"
)

// Distribution captures statistical summary of a metric.
type Distribution struct {
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
	Min   float64
	Max   float64
	Count int
}

// NewDistribution computes a Distribution from raw values.
// Returns zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.LinInterp, sorted, nil),
		P95:   stat.Quantile(0.95, stat.LinInterp, sorted, nil),
		P99:   stat.Quantile(0.99, stat.LinInterp, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// ReportRow summarises every run of one node count.
type ReportRow struct {
	Nodes          int
	SPSBytes       Distribution
	DirectBytes    Distribution
	SPSMessages    Distribution
	DirectMessages Distribution
}

// Savings is the fraction of direct-baseline bytes that SPS avoids, by mean.
// Negative when SPS costs more than the baseline.
func (r ReportRow) Savings() float64 {
	if r.DirectBytes.Mean == 0 {
		return 0
	}
	return 1 - r.SPSBytes.Mean/r.DirectBytes.Mean
}

// Report builds one row per node count in the index, ascending.
func Report(idx Index) []ReportRow {
	nodes := make([]int, 0, len(idx))
	for n := range idx {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)

	rows := make([]ReportRow, 0, len(nodes))
	for _, n := range nodes {
		runs := idx[n]
		rows = append(rows, ReportRow{
			Nodes:          n,
			SPSBytes:       NewDistribution(pluck(runs, func(s trace.Stats) float64 { return s.Net.SPS.AvgTotal })),
			DirectBytes:    NewDistribution(pluck(runs, func(s trace.Stats) float64 { return s.Net.Direct.AvgTotal })),
			SPSMessages:    NewDistribution(pluck(runs, func(s trace.Stats) float64 { return s.Messages.SPS })),
			DirectMessages: NewDistribution(pluck(runs, func(s trace.Stats) float64 { return s.Messages.Direct })),
		})
	}
	return rows
}

func pluck(runs []RunStats, f func(trace.Stats) float64) []float64 {
	out := make([]float64, len(runs))
	for i, s := range runs {
		out[i] = f(s.Stats)
	}
	return out
}
