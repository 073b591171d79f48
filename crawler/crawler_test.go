package crawler

import (
	"context"
	"net"
	"testing"
	"time"
)

func mustCrawler(t *testing.T) *Crawler {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.DiscoveryInterval = 50 * time.Millisecond
	cfg.SummaryInterval = time.Hour
	cfg.PostConnectSettle = 10 * time.Millisecond
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

// A crawler seeded with another crawler's address connects to it, records it
// as a good node, and the target records the reciprocal connection.
func TestCrawlerSeedConnectsAndRecordsNode(t *testing.T) {
	target := mustCrawler(t)
	seeker := mustCrawler(t)

	ctxTarget, cancelTarget := context.WithCancel(context.Background())
	ctxSeeker, cancelSeeker := context.WithCancel(context.Background())
	defer cancelTarget()
	defer cancelSeeker()

	go target.Run(ctxTarget)
	go seeker.Run(ctxSeeker)

	seeker.Seed([]net.Addr{target.ListenAddr()})

	waitFor(t, 2*time.Second, func() bool {
		node, ok := seeker.Network().Nodes()[target.ListenAddr().String()]
		return ok && node.IsGood()
	})

	node := seeker.Network().Nodes()[target.ListenAddr().String()]
	if !node.HasVersionInfo() {
		t.Error("expected the seeker to have captured the target's Version info")
	}

	cancelTarget()
	cancelSeeker()
}

// A crawler that only receives an inbound connection, and never dials out
// itself, still records the connector's advertised Version info.
func TestCrawlerRecordsInboundOnlyVersion(t *testing.T) {
	target := mustCrawler(t)
	seeker := mustCrawler(t)

	ctxTarget, cancelTarget := context.WithCancel(context.Background())
	ctxSeeker, cancelSeeker := context.WithCancel(context.Background())
	defer cancelTarget()
	defer cancelSeeker()

	go target.Run(ctxTarget)
	go seeker.Run(ctxSeeker)

	// The seeker dials the target; the target itself never seeds or dials
	// anyone, so any record of the seeker it ends up with can only have
	// come from the inbound side of the handshake.
	seeker.Seed([]net.Addr{target.ListenAddr()})

	waitFor(t, 2*time.Second, func() bool {
		return target.Network().NumNodes() > 0
	})

	nodes := target.Network().Nodes()
	if len(nodes) != 1 {
		t.Fatalf("expected the target to know of exactly one node, got %d", len(nodes))
	}
	for _, node := range nodes {
		if !node.HasVersionInfo() {
			t.Error("expected the target to have captured the inbound connector's Version info")
		}
	}

	cancelTarget()
	cancelSeeker()
}

// ShouldConnect refuses once MaxConcurrentConnections is reached.
func TestCrawlerShouldConnectRespectsLimits(t *testing.T) {
	c := mustCrawler(t)
	c.cfg.MaxConcurrentConnections = 0

	other := mustCrawler(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go other.Run(ctx)

	if c.ShouldConnect(other.ListenAddr()) {
		t.Error("ShouldConnect should refuse once MaxConcurrentConnections is exhausted")
	}
}

// WaitForFirstHandshake returns promptly once a seed completes a handshake,
// and reports an error if none does within the timeout.
func TestCrawlerWaitForFirstHandshake(t *testing.T) {
	target := mustCrawler(t)
	seeker := mustCrawler(t)

	ctxTarget, cancelTarget := context.WithCancel(context.Background())
	ctxSeeker, cancelSeeker := context.WithCancel(context.Background())
	defer cancelTarget()
	defer cancelSeeker()

	go target.Run(ctxTarget)
	go seeker.Run(ctxSeeker)

	seeker.Seed([]net.Addr{target.ListenAddr()})

	if err := seeker.WaitForFirstHandshake(2 * time.Second); err != nil {
		t.Fatalf("WaitForFirstHandshake: %v", err)
	}
}

func TestCrawlerWaitForFirstHandshakeTimesOut(t *testing.T) {
	seeker := mustCrawler(t)

	// An address nothing listens on; the attempt will fail to connect.
	deadListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	deadAddr := deadListener.Addr()
	deadListener.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go seeker.Run(ctx)

	seeker.Seed([]net.Addr{deadAddr})

	if err := seeker.WaitForFirstHandshake(200 * time.Millisecond); err == nil {
		t.Error("expected a timeout error when no seed is reachable")
	}
}
