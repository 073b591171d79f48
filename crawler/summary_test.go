package crawler

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// A triangle of three nodes is fully connected: density 1, every node's
// degree centrality 1, so the delta is 0.
func TestNetworkSummaryTriangleMetrics(t *testing.T) {
	kn := NewKnownNetwork()
	a := mustAddr(t, "127.0.0.1:5001")
	b := mustAddr(t, "127.0.0.1:5002")
	c := mustAddr(t, "127.0.0.1:5003")

	kn.AddAddrs(a, []net.Addr{b, c})
	kn.AddAddrs(b, []net.Addr{c})

	s := NewNetworkSummary(kn, time.Now())

	if s.NumKnownNodes != 3 {
		t.Errorf("NumKnownNodes = %d, want 3", s.NumKnownNodes)
	}
	if s.NumKnownConnections != 3 {
		t.Errorf("NumKnownConnections = %d, want 3", s.NumKnownConnections)
	}
	if s.Density != 1 {
		t.Errorf("Density = %v, want 1", s.Density)
	}
	if s.AvgDegreeCentrality != 1 {
		t.Errorf("AvgDegreeCentrality = %v, want 1", s.AvgDegreeCentrality)
	}
	if s.DegreeCentralityDelta != 0 {
		t.Errorf("DegreeCentralityDelta = %v, want 0", s.DegreeCentralityDelta)
	}
}

// A star (one hub, two leaves) has uneven centrality: the hub's is 1, each
// leaf's is 0.5, so the delta is 0.5 and density is 2/3.
func TestNetworkSummaryStarMetrics(t *testing.T) {
	kn := NewKnownNetwork()
	hub := mustAddr(t, "127.0.0.1:6001")
	leaf1 := mustAddr(t, "127.0.0.1:6002")
	leaf2 := mustAddr(t, "127.0.0.1:6003")

	kn.AddAddrs(hub, []net.Addr{leaf1, leaf2})

	s := NewNetworkSummary(kn, time.Now())

	if got, want := s.Density, 2.0/3.0; got != want {
		t.Errorf("Density = %v, want %v", got, want)
	}
	if got, want := s.DegreeCentralityDelta, 0.5; got != want {
		t.Errorf("DegreeCentralityDelta = %v, want %v", got, want)
	}
}

func TestNetworkSummaryCountsVersionDistributions(t *testing.T) {
	kn := NewKnownNetwork()
	a := mustAddr(t, "127.0.0.1:7001")
	b := mustAddr(t, "127.0.0.1:7002")
	c := mustAddr(t, "127.0.0.1:7003")

	kn.RecordVersion(a, 170013, "/zebra/", 1)
	kn.RecordVersion(b, 170013, "/zcashd/", 1)
	kn.RecordVersion(c, 170012, "/zebra/", 1)

	s := NewNetworkSummary(kn, time.Now())

	if got := s.ProtocolVersions[170013]; got != 2 {
		t.Errorf("ProtocolVersions[170013] = %d, want 2", got)
	}
	if got := s.UserAgents["/zebra/"]; got != 2 {
		t.Errorf("UserAgents[/zebra/] = %d, want 2", got)
	}
}

func TestNetworkSummaryWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crawler-log.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 4096)), 0o644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	kn := NewKnownNetwork()
	s := NewNetworkSummary(kn, time.Now())
	if err := s.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(got), "Network summary:") {
		t.Error("expected the file to be fully overwritten with the summary rendering")
	}
	if strings.Contains(string(got), "xxxx") {
		t.Error("expected no remnants of the previous file contents")
	}
}
