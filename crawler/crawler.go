package crawler

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/excc-labs/zconform/internal/logging"
	"github.com/excc-labs/zconform/peer"
	"github.com/excc-labs/zconform/wire"
)

// Config parameterizes a Crawler's discovery and bookkeeping behavior.
// Defaults mirror the upstream crawler's own tuned constants.
type Config struct {
	// ListenAddr is the address the crawler's own synthetic peer listens
	// on for unsolicited inbound connections.
	ListenAddr string

	// MaxConcurrentConnections bounds the synthetic peer's simultaneous
	// connections, inbound and outbound alike; ShouldConnect refuses new
	// dials once it is reached.
	MaxConcurrentConnections int

	// DiscoveryInterval is how often the crawler re-scans its known nodes
	// for reconnection candidates and re-broadcasts GetAddr.
	DiscoveryInterval time.Duration

	// ReconnectInterval is how long a node must go unconnected before it
	// becomes eligible for another periodic reconnection attempt.
	ReconnectInterval time.Duration

	// PeriodicSampleSize bounds how many known nodes are considered per
	// DiscoveryInterval tick.
	PeriodicSampleSize int

	// PeerlistFanInCap bounds how many addresses from a single Addr
	// response are dialed.
	PeerlistFanInCap int

	// ConnectionRetention bounds how long a KnownConnection is kept before
	// being pruned as stale.
	ConnectionRetention time.Duration

	// SummaryInterval is how often the network summary is recomputed and
	// written to SummaryPath.
	SummaryInterval time.Duration

	// SummaryPath is the file the network summary is written to, fully
	// overwritten on every write.
	SummaryPath string

	// PostConnectSettle is how long the crawler waits after a successful
	// handshake before sending GetAddr, giving the remote node time to
	// finish its own connection setup.
	PostConnectSettle time.Duration
}

// DefaultConfig returns a Config matching the upstream crawler's tuned
// constants: a 5-second discovery tick, a 300-second (5-minute)
// reconnection window, 500 nodes sampled per tick, a 100-address fan-in cap
// per Addr response, and a 30-minute connection retention window.
func DefaultConfig() Config {
	return Config{
		ListenAddr:               "0.0.0.0:0",
		MaxConcurrentConnections: 1000,
		DiscoveryInterval:        5 * time.Second,
		ReconnectInterval:        5 * time.Minute,
		PeriodicSampleSize:       500,
		PeerlistFanInCap:         100,
		ConnectionRetention:      30 * time.Minute,
		SummaryInterval:          60 * time.Second,
		SummaryPath:              "crawler-log.txt",
		PostConnectSettle:        1 * time.Second,
	}
}

var log = logging.Logger("CRWL")

// Crawler connects outward across a Zcash-protocol network, following every
// Addr response it receives, and maintains a KnownNetwork describing the
// graph of nodes and connections it has observed.
type Crawler struct {
	cfg     Config
	sp      *peer.SyntheticPeer
	network *KnownNetwork

	startTime time.Time
}

// New builds a Crawler. The crawler's own synthetic peer performs a full
// Version/Verack handshake on every connection, in both directions, so that
// an unsolicited inbound connector sees its Version answered with a Verack
// exactly as a real node would, and auto-replies to
// Ping/GetAddr/GetHeaders/GetData so that remote nodes interacting with the
// crawler see ordinary protocol behavior.
func New(cfg Config) (*Crawler, error) {
	filter := peer.NewMessageFilter().
		WithPingFilter(peer.FilterAutoReply).
		WithGetAddrFilter(peer.FilterAutoReply).
		WithGetHeadersFilter(peer.FilterAutoReply).
		WithGetDataFilter(peer.FilterAutoReply)

	sp, err := peer.NewBuilder().
		WithListenAddr(cfg.ListenAddr).
		WithFullHandshake().
		WithMessageFilter(filter).
		Build()
	if err != nil {
		return nil, err
	}

	return &Crawler{
		cfg:       cfg,
		sp:        sp,
		network:   NewKnownNetwork(),
		startTime: time.Now(),
	}, nil
}

// ListenAddr returns the address the crawler's synthetic peer listens on.
func (c *Crawler) ListenAddr() net.Addr { return c.sp.ListenAddr() }

// Network returns the crawler's node/connection registry.
func (c *Crawler) Network() *KnownNetwork { return c.network }

// Seed registers addrs as known nodes and attempts to connect to each.
func (c *Crawler) Seed(addrs []net.Addr) {
	for _, addr := range addrs {
		c.network.SeedNode(addr)
		go c.connectAndDiscover(addr)
	}
}

// WaitForFirstHandshake blocks until at least one seed has completed a
// handshake, or returns an error once timeout elapses without one. It is
// meant to back a startup readiness check: a crawl with no reachable seed
// at all should fail fast rather than run forever with an empty network.
func (c *Crawler) WaitForFirstHandshake(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if c.network.NumGoodNodes() > 0 {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("crawler: no seed address became reachable within %s", timeout)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// ShouldConnect reports whether the crawler is not already connected to
// addr and connection capacity remains. It does not check that addr is a
// known node, and dials still in progress are not tracked, so an address
// whose connect has not yet completed is not refused.
func (c *Crawler) ShouldConnect(addr net.Addr) bool {
	if c.sp.NumConnected() >= c.cfg.MaxConcurrentConnections {
		return false
	}
	return !c.sp.IsConnected(addr)
}

// connect attempts a single connection to addr, recording the outcome.
func (c *Crawler) connect(addr net.Addr) error {
	start := time.Now()
	err := c.sp.Connect(addr)
	c.network.RecordConnectAttempt(addr, err == nil, time.Since(start))
	if err != nil {
		log.Debugf("connect to %s failed: %v", addr, err)
		return err
	}

	if version := c.sp.PeerVersion(addr); version != nil {
		c.network.RecordVersion(addr, version.ProtocolVersion, version.UserAgent, version.Services)
	}
	return nil
}

// connectAndDiscover connects to addr and, on success, asks it for its own
// peer list after letting the connection settle.
func (c *Crawler) connectAndDiscover(addr net.Addr) {
	if err := c.connect(addr); err != nil {
		return
	}
	time.Sleep(c.cfg.PostConnectSettle)
	if err := c.sp.Unicast(addr, wire.NewMsgGetAddr()); err != nil {
		log.Debugf("getaddr to %s failed: %v", addr, err)
	}
}

// netAddrFromWire converts a decoded wire.NetAddress into a net.Addr usable
// with net.Dial.
func netAddrFromWire(na *wire.NetAddress) net.Addr {
	return &net.TCPAddr{IP: na.IP, Port: int(na.Port)}
}

// Run starts the crawler's background loops: inbound message processing,
// periodic reconnection discovery, and periodic summary generation. It
// blocks until ctx is cancelled, then shuts down the underlying synthetic
// peer and returns.
func (c *Crawler) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.processInbound()
	}()

	discoveryTicker := time.NewTicker(c.cfg.DiscoveryInterval)
	defer discoveryTicker.Stop()
	summaryTicker := time.NewTicker(c.cfg.SummaryInterval)
	defer summaryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.sp.Shutdown()
			<-done
			return
		case <-discoveryTicker.C:
			c.discoveryTick()
		case <-summaryTicker.C:
			c.summaryTick()
		}
	}
}

// processInbound drains the synthetic peer's inbound channel, following up
// on every Addr response it sees. It exits once RecvMessage reports the
// peer has been shut down.
func (c *Crawler) processInbound() {
	for {
		msg, err := c.sp.RecvMessage()
		if err != nil {
			return
		}

		addrMsg, ok := msg.Message.(*wire.MsgAddr)
		if !ok {
			continue
		}

		log.Infof("got %d address(es) from %s", len(addrMsg.AddrList), msg.From)

		listening := make([]net.Addr, 0, len(addrMsg.AddrList))
		for _, na := range addrMsg.AddrList {
			listening = append(listening, netAddrFromWire(na))
		}
		c.network.AddAddrs(msg.From, listening)

		if len(listening) > c.cfg.PeerlistFanInCap {
			listening = listening[:c.cfg.PeerlistFanInCap]
		}
		for _, addr := range listening {
			if c.ShouldConnect(addr) {
				go c.connectAndDiscover(addr)
			}
		}

		c.sp.Disconnect(msg.From)
	}
}

// recordConnectedVersions records the advertised protocol version,
// user-agent, and services of every currently connected peer. This is the
// only place an inbound-only connector's Version is ever captured: unlike
// the outbound path, which records immediately after a successful connect,
// a peer that merely dials the crawler and sends nothing further produces
// no event for processInbound to react to.
func (c *Crawler) recordConnectedVersions() {
	for _, addr := range c.sp.ConnectedPeers() {
		if version := c.sp.PeerVersion(addr); version != nil {
			c.network.RecordVersion(addr, version.ProtocolVersion, version.UserAgent, version.Services)
		}
	}
}

// discoveryTick re-broadcasts GetAddr to every live connection and samples
// known, currently-unconnected nodes for a reconnection attempt.
func (c *Crawler) discoveryTick() {
	log.Infof("asking peers for their peers (connected to %d)", c.sp.NumConnected())
	log.Infof("known addrs: %d", c.network.NumNodes())

	c.recordConnectedVersions()

	nodeAddrs := c.network.NodeAddrs()
	candidates := make([]net.Addr, 0)
	now := time.Now()
	for key, node := range c.network.Nodes() {
		if !node.LastConnected.IsZero() && now.Sub(node.LastConnected) < c.cfg.ReconnectInterval {
			continue
		}
		candidates = append(candidates, nodeAddrs[key])
	}

	sampled := sampleAddrs(candidates, c.cfg.PeriodicSampleSize)
	for _, addr := range sampled {
		if c.ShouldConnect(addr) {
			go c.connectAndDiscover(addr)
		}
	}

	for _, addr := range c.sp.ConnectedPeers() {
		_ = c.sp.Unicast(addr, wire.NewMsgGetAddr())
	}
}

// summaryTick prunes stale connections and rewrites the network summary
// file. It does nothing while no connection is known.
func (c *Crawler) summaryTick() {
	if c.network.NumConnections() == 0 {
		return
	}
	c.network.RemoveOldConnections(c.cfg.ConnectionRetention)

	summary := NewNetworkSummary(c.network, c.startTime)
	log.Info(summary.String())
	if err := summary.WriteFile(c.cfg.SummaryPath); err != nil {
		log.Errorf("couldn't write summary to file: %v", err)
	}
}

// sampleAddrs returns up to n entries chosen at random from addrs, without
// mutating addrs.
func sampleAddrs(addrs []net.Addr, n int) []net.Addr {
	if len(addrs) <= n {
		return addrs
	}

	shuffled := make([]net.Addr, len(addrs))
	copy(shuffled, addrs)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}
