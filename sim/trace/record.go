// Package trace provides publication-trace recording and the aggregate
// traffic statistics of a simulation run.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// TrafficEntry is the traffic one client produced for a single publication.
type TrafficEntry struct {
	Client int `json:"client"`
	In     int `json:"in"`
	Out    int `json:"out"`
}

// TrafficTotals sums the entries of one publication.
type TrafficTotals struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

// PublicationRecord captures the outcome of a single publication. The sender's
// entry is always first in NetworkTraffic.
type PublicationRecord struct {
	Sender             int            `json:"sender"`
	Channel            string         `json:"channel"`
	NetworkTraffic     []TrafficEntry `json:"networkTraffic"`
	TotalTraffic       TrafficTotals  `json:"totalTraffic"`
	MessagesDispatched int            `json:"messagesDispatched"`
}
