package crawler

import (
	"net"
	"strconv"
	"sync"
	"testing"
	"time"
)

func mustAddr(t *testing.T, s string) net.Addr {
	t.Helper()
	addr, err := net.ResolveTCPAddr("tcp", s)
	if err != nil {
		t.Fatalf("ResolveTCPAddr(%q): %v", s, err)
	}
	return addr
}

func TestKnownConnectionSymmetricEquality(t *testing.T) {
	a := mustAddr(t, "127.0.0.1:1001")
	b := mustAddr(t, "127.0.0.1:1002")

	now := time.Now()
	ab := KnownConnection{A: a, B: b, LastSeen: now}
	ba := KnownConnection{A: b, B: a, LastSeen: now}

	if !ab.Equal(ba) {
		t.Error("KnownConnection(a, b) should equal KnownConnection(b, a)")
	}
	if ab.key() != ba.key() {
		t.Errorf("key() not symmetric: %q vs %q", ab.key(), ba.key())
	}
}

func TestKnownNetworkAddAddrsDedupesSymmetricConnections(t *testing.T) {
	kn := NewKnownNetwork()
	a := mustAddr(t, "127.0.0.1:2001")
	b := mustAddr(t, "127.0.0.1:2002")

	kn.AddAddrs(a, []net.Addr{b})
	kn.AddAddrs(b, []net.Addr{a})

	if got := kn.NumConnections(); got != 1 {
		t.Errorf("NumConnections = %d, want 1 (a->b and b->a are the same edge)", got)
	}
	if got := kn.NumNodes(); got != 2 {
		t.Errorf("NumNodes = %d, want 2", got)
	}
}

func TestKnownNetworkConcurrentAccess(t *testing.T) {
	kn := NewKnownNetwork()
	addrs := make([]net.Addr, 20)
	for i := range addrs {
		addrs[i] = mustAddr(t, "127.0.0.1:"+strconv.Itoa(3000+i))
	}

	var wg sync.WaitGroup
	for i := 0; i < len(addrs); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kn.AddAddrs(addrs[i], []net.Addr{addrs[(i+1)%len(addrs)]})
			kn.RecordConnectAttempt(addrs[i], true, time.Millisecond)
			_ = kn.Nodes()
			_ = kn.Connections()
		}(i)
	}
	wg.Wait()

	if got := kn.NumNodes(); got != len(addrs) {
		t.Errorf("NumNodes = %d, want %d", got, len(addrs))
	}
}

func TestRemoveOldConnectionsPrunesStaleEdges(t *testing.T) {
	kn := NewKnownNetwork()
	a := mustAddr(t, "127.0.0.1:4001")
	b := mustAddr(t, "127.0.0.1:4002")

	kn.connections["stale"] = KnownConnection{A: a, B: b, LastSeen: time.Now().Add(-time.Hour)}
	kn.nodes[a.String()] = &KnownNode{}
	kn.nodes[b.String()] = &KnownNode{}

	kn.RemoveOldConnections(30 * time.Minute)

	if got := kn.NumConnections(); got != 0 {
		t.Errorf("expected the stale connection to be pruned, NumConnections = %d", got)
	}
}
