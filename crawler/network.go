// Package crawler implements a network-mapping client: it connects to a
// set of seed addresses, follows every Addr response it receives, and
// records the resulting node and connection graph for later summarization.
package crawler

import (
	"net"
	"sync"
	"time"
)

// KnownNode is everything the crawler has learned about one address. The
// address itself is not stored here; it is the owning map's key.
type KnownNode struct {
	// LastConnected is the time of the most recent successful connection,
	// or the zero value if none has succeeded yet.
	LastConnected time.Time

	// HandshakeTime is how long the most recent successful connection
	// attempt took to complete its handshake.
	HandshakeTime time.Duration

	// ConnectionFailures counts consecutive failed connection attempts
	// since the last success.
	ConnectionFailures uint8

	// ProtocolVersion, UserAgent, and Services are populated from the
	// node's Version message and overwritten each time one is recorded.
	ProtocolVersion uint32
	UserAgent       string
	Services        uint64
	hasVersionInfo  bool
}

// HasVersionInfo reports whether a Version message has ever been recorded
// for this node.
func (n KnownNode) HasVersionInfo() bool { return n.hasVersionInfo }

// IsGood reports whether the crawler has ever completed a handshake with
// this node.
func (n KnownNode) IsGood() bool { return !n.LastConnected.IsZero() }

// KnownConnection is an observed edge between two addresses: addr
// source reported addr as one of its peers. Equality and hashing are
// order-independent: KnownConnection(a, b) == KnownConnection(b, a).
type KnownConnection struct {
	A        net.Addr
	B        net.Addr
	LastSeen time.Time
}

// key returns the canonical, order-independent identity of the connection,
// used both for map storage and for equality comparisons.
func (c KnownConnection) key() string {
	a, b := c.A.String(), c.B.String()
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Equal reports whether c and other describe the same edge, regardless of
// which side is A and which is B.
func (c KnownConnection) Equal(other KnownConnection) bool {
	return c.key() == other.key()
}

// KnownNetwork is the crawler's registry of every node and connection it
// has observed. All access is safe for concurrent use.
type KnownNetwork struct {
	mu          sync.RWMutex
	nodes       map[string]*KnownNode
	nodeAddrs   map[string]net.Addr
	connections map[string]KnownConnection
}

// NewKnownNetwork returns an empty KnownNetwork.
func NewKnownNetwork() *KnownNetwork {
	return &KnownNetwork{
		nodes:       make(map[string]*KnownNode),
		nodeAddrs:   make(map[string]net.Addr),
		connections: make(map[string]KnownConnection),
	}
}

// SeedNode registers addr as known, if it is not already, without any
// connection history. Used to prime the network with configured seed
// addresses before any Addr response has named them.
func (kn *KnownNetwork) SeedNode(addr net.Addr) {
	kn.mu.Lock()
	defer kn.mu.Unlock()
	kn.addNodeLocked(addr)
}

func (kn *KnownNetwork) addNodeLocked(addr net.Addr) {
	key := addr.String()
	if _, ok := kn.nodes[key]; !ok {
		kn.nodes[key] = &KnownNode{}
		kn.nodeAddrs[key] = addr
	}
}

// AddAddrs records that source reported each of listening as one of its
// peers, and registers every address named (source included) as a known
// node.
func (kn *KnownNetwork) AddAddrs(source net.Addr, listening []net.Addr) {
	now := time.Now()

	kn.mu.Lock()
	defer kn.mu.Unlock()

	kn.addNodeLocked(source)
	for _, addr := range listening {
		kn.addNodeLocked(addr)
		conn := KnownConnection{A: source, B: addr, LastSeen: now}
		kn.connections[conn.key()] = conn
	}
}

// RecordConnectAttempt updates addr's KnownNode with the outcome of a
// connection attempt that took elapsed to resolve.
func (kn *KnownNetwork) RecordConnectAttempt(addr net.Addr, ok bool, elapsed time.Duration) {
	kn.mu.Lock()
	defer kn.mu.Unlock()

	node, present := kn.nodes[addr.String()]
	if !present {
		return
	}
	if ok {
		node.ConnectionFailures = 0
		node.LastConnected = time.Now()
		node.HandshakeTime = elapsed
	} else {
		node.ConnectionFailures++
	}
}

// RecordVersion attaches Version-derived fields to addr's KnownNode,
// registering addr as a known node first if this is the first time it has
// been seen. This is how an inbound-only connector — one that dialed the
// crawler rather than the other way around, and so was never named in an
// Addr response or seeded at startup — still ends up in the network.
func (kn *KnownNetwork) RecordVersion(addr net.Addr, protocolVersion uint32, userAgent string, services uint64) {
	kn.mu.Lock()
	defer kn.mu.Unlock()

	kn.addNodeLocked(addr)
	node := kn.nodes[addr.String()]
	node.ProtocolVersion = protocolVersion
	node.UserAgent = userAgent
	node.Services = services
	node.hasVersionInfo = true
}

// Connections returns a snapshot of every known connection.
func (kn *KnownNetwork) Connections() []KnownConnection {
	kn.mu.RLock()
	defer kn.mu.RUnlock()

	out := make([]KnownConnection, 0, len(kn.connections))
	for _, c := range kn.connections {
		out = append(out, c)
	}
	return out
}

// Nodes returns a snapshot of every known node, keyed by address string.
func (kn *KnownNetwork) Nodes() map[string]KnownNode {
	kn.mu.RLock()
	defer kn.mu.RUnlock()

	out := make(map[string]KnownNode, len(kn.nodes))
	for k, n := range kn.nodes {
		out[k] = *n
	}
	return out
}

// NodeAddrs returns the net.Addr registered for every known node, keyed the
// same way as Nodes.
func (kn *KnownNetwork) NodeAddrs() map[string]net.Addr {
	kn.mu.RLock()
	defer kn.mu.RUnlock()

	out := make(map[string]net.Addr, len(kn.nodeAddrs))
	for k, a := range kn.nodeAddrs {
		out[k] = a
	}
	return out
}

// NumNodes returns the number of known nodes.
func (kn *KnownNetwork) NumNodes() int {
	kn.mu.RLock()
	defer kn.mu.RUnlock()
	return len(kn.nodes)
}

// NumConnections returns the number of known connections.
func (kn *KnownNetwork) NumConnections() int {
	kn.mu.RLock()
	defer kn.mu.RUnlock()
	return len(kn.connections)
}

// NumGoodNodes returns the number of known nodes that have ever completed a
// handshake.
func (kn *KnownNetwork) NumGoodNodes() int {
	kn.mu.RLock()
	defer kn.mu.RUnlock()

	n := 0
	for _, node := range kn.nodes {
		if node.IsGood() {
			n++
		}
	}
	return n
}

// RemoveOldConnections drops every connection whose LastSeen is older than
// retention. It is how the crawler bounds the graph's memory of edges that
// may no longer exist.
func (kn *KnownNetwork) RemoveOldConnections(retention time.Duration) {
	cutoff := time.Now().Add(-retention)

	kn.mu.Lock()
	defer kn.mu.Unlock()

	for key, conn := range kn.connections {
		if conn.LastSeen.Before(cutoff) {
			delete(kn.connections, key)
		}
	}
}
