package crawler

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"
)

// NetworkSummary is a point-in-time report of everything the crawler knows
// about the network's shape: node and connection counts, the distribution
// of protocol versions and user agents observed, and graph-theoretic
// metrics computed over the connection graph.
type NetworkSummary struct {
	NumKnownNodes       int
	NumGoodNodes        int
	NumKnownConnections int

	ProtocolVersions map[uint32]int
	UserAgents       map[string]int

	CrawlerRuntime time.Duration

	// Density is the fraction of possible edges that are present among the
	// nodes that appear in at least one known connection.
	Density float64

	// AvgDegreeCentrality is the mean of each such node's degree divided by
	// (nodeCount - 1).
	AvgDegreeCentrality float64

	// DegreeCentralityDelta is the spread (max minus min) of per-node
	// degree centrality, a rough measure of how unevenly connected the
	// observed graph is.
	DegreeCentralityDelta float64
}

// NewNetworkSummary computes a NetworkSummary from network's current state.
func NewNetworkSummary(network *KnownNetwork, crawlerStart time.Time) *NetworkSummary {
	nodes := network.Nodes()
	connections := network.Connections()

	s := &NetworkSummary{
		NumKnownNodes:       len(nodes),
		NumKnownConnections: len(connections),
		ProtocolVersions:    make(map[uint32]int),
		UserAgents:          make(map[string]int),
		CrawlerRuntime:      time.Since(crawlerStart),
	}

	for _, node := range nodes {
		if node.IsGood() {
			s.NumGoodNodes++
		}
		if node.HasVersionInfo() {
			s.ProtocolVersions[node.ProtocolVersion]++
			s.UserAgents[node.UserAgent]++
		}
	}

	degree := make(map[string]int)
	for _, conn := range connections {
		degree[conn.A.String()]++
		degree[conn.B.String()]++
	}

	n := len(degree)
	if n > 1 {
		possibleEdges := float64(n) * float64(n-1) / 2
		s.Density = float64(len(connections)) / possibleEdges

		var sum, min, max float64
		min = math.Inf(1)
		max = math.Inf(-1)
		for _, d := range degree {
			centrality := float64(d) / float64(n-1)
			sum += centrality
			if centrality < min {
				min = centrality
			}
			if centrality > max {
				max = centrality
			}
		}
		s.AvgDegreeCentrality = sum / float64(n)
		s.DegreeCentralityDelta = max - min
	}

	return s
}

// String renders the summary in the same layout the crawler has always
// logged and written to its summary file.
func (s *NetworkSummary) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Network summary:\n\n")
	fmt.Fprintf(&b, "Found a total of %d node(s)\n", s.NumKnownNodes)
	fmt.Fprintf(&b, "Managed to connect to %d node(s)\n", s.NumGoodNodes)
	fmt.Fprintf(&b, "Node(s) have %d known connections between them\n", s.NumKnownConnections)

	fmt.Fprintf(&b, "\nProtocol versions:\n")
	writeCountsByVersion(&b, s.ProtocolVersions)
	fmt.Fprintf(&b, "\nUser agents:\n")
	writeCountsByAgent(&b, s.UserAgents)

	fmt.Fprintf(&b, "\nNetwork graph metrics:\n")
	fmt.Fprintf(&b, "Density: %.4f\n", s.Density)
	fmt.Fprintf(&b, "Degree centrality delta: %.4f\n", s.DegreeCentralityDelta)
	fmt.Fprintf(&b, "Average degree centrality: %.4f\n", s.AvgDegreeCentrality)

	fmt.Fprintf(&b, "\nCrawler ran for a total of %d minutes\n", int(s.CrawlerRuntime.Minutes()))

	return b.String()
}

// WriteFile overwrites path with the summary's current rendering.
func (s *NetworkSummary) WriteFile(path string) error {
	return os.WriteFile(path, []byte(s.String()), 0o644)
}

func writeCountsByVersion(b *strings.Builder, counts map[uint32]int) {
	type entry struct {
		version uint32
		count   int
	}
	entries := make([]entry, 0, len(counts))
	for v, c := range counts {
		entries = append(entries, entry{v, c})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
	for _, e := range entries {
		fmt.Fprintf(b, "%d: %d\n", e.version, e.count)
	}
}

func writeCountsByAgent(b *strings.Builder, counts map[string]int) {
	type entry struct {
		agent string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for a, c := range counts {
		entries = append(entries, entry{a, c})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
	for _, e := range entries {
		fmt.Fprintf(b, "%s: %d\n", e.agent, e.count)
	}
}
