package peer

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/excc-labs/zconform/internal/metrics"
	"github.com/excc-labs/zconform/wire"
)

func mustBuildPeer(t *testing.T, b *Builder) *SyntheticPeer {
	t.Helper()
	sp, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(sp.Shutdown)
	return sp
}

// Scenario 1: initiator dials a Full-handshake responder; afterwards both
// sides report the connection as live.
func TestFullHandshakeRoundTrip(t *testing.T) {
	responder := mustBuildPeer(t, NewBuilder().WithFullHandshake())
	initiator := mustBuildPeer(t, NewBuilder().WithFullHandshake())

	if err := initiator.Connect(responder.ListenAddr()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	remote, err := responder.WaitForConnection(time.Second)
	if err != nil {
		t.Fatalf("responder WaitForConnection: %v", err)
	}

	if !initiator.IsConnected(responder.ListenAddr()) {
		t.Error("initiator does not consider itself connected to the responder")
	}
	if !responder.IsConnected(remote) {
		t.Error("responder does not consider itself connected to the initiator")
	}
	if responder.NumConnected() != 1 || initiator.NumConnected() != 1 {
		t.Errorf("expected exactly 1 connection on each side, got responder=%d initiator=%d",
			responder.NumConnected(), initiator.NumConnected())
	}
}

// Version-only handshakes skip Verack entirely on both sides.
func TestVersionOnlyHandshake(t *testing.T) {
	responder := mustBuildPeer(t, NewBuilder().WithVersionOnlyHandshake())
	initiator := mustBuildPeer(t, NewBuilder().WithVersionOnlyHandshake())

	if err := initiator.Connect(responder.ListenAddr()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if _, err := responder.WaitForConnection(time.Second); err != nil {
		t.Fatalf("responder WaitForConnection: %v", err)
	}
	if initiator.PeerVersion(responder.ListenAddr()) == nil {
		t.Error("expected the initiator to have captured the responder's Version")
	}
}

// Scenario 5: with auto-reply enabled, a Ping draws a matching Pong.
func TestAutoReplyPingPong(t *testing.T) {
	responder := mustBuildPeer(t, NewBuilder().WithFullHandshake().WithAllAutoReply())
	initiator := mustBuildPeer(t, NewBuilder().WithFullHandshake())

	if err := initiator.Connect(responder.ListenAddr()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := responder.WaitForConnection(time.Second); err != nil {
		t.Fatalf("WaitForConnection: %v", err)
	}

	if err := initiator.PingPong(responder.ListenAddr(), 100*time.Millisecond); err != nil {
		t.Errorf("PingPong: %v", err)
	}
}

// A message sent with no filter configured queues as an ordinary inbound
// message rather than being auto-replied to or dropped.
func TestFilterDisabledDeliversMessage(t *testing.T) {
	responder := mustBuildPeer(t, NewBuilder().WithFullHandshake())
	initiator := mustBuildPeer(t, NewBuilder().WithFullHandshake())

	if err := initiator.Connect(responder.ListenAddr()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	remote, err := responder.WaitForConnection(time.Second)
	if err != nil {
		t.Fatalf("WaitForConnection: %v", err)
	}

	if err := initiator.Unicast(responder.ListenAddr(), wire.NewMsgGetAddr()); err != nil {
		t.Fatalf("Unicast: %v", err)
	}

	got, err := responder.RecvMessageTimeout(time.Second)
	if err != nil {
		t.Fatalf("RecvMessageTimeout: %v", err)
	}
	if got.From.String() != remote.String() {
		t.Errorf("From = %v, want %v", got.From, remote)
	}
	if _, ok := got.Message.(*wire.MsgGetAddr); !ok {
		t.Errorf("expected a GetAddr message, got %T", got.Message)
	}
}

// Scenario 6: corrupting a message's checksum after encoding must cause the
// receiving side to drop the connection rather than deliver or crash on it.
func TestFuzzBadChecksumDropsConnection(t *testing.T) {
	responder := mustBuildPeer(t, NewBuilder().WithFullHandshake())
	initiator := mustBuildPeer(t, NewBuilder().WithFullHandshake())

	if err := initiator.Connect(responder.ListenAddr()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := responder.WaitForConnection(time.Second); err != nil {
		t.Fatalf("WaitForConnection: %v", err)
	}

	var buf bytes.Buffer
	if _, err := wire.WriteMessageN(&buf, wire.NewMsgGetAddr(), wire.ProtocolVersion, wire.TestnetMagic); err != nil {
		t.Fatalf("WriteMessageN: %v", err)
	}
	raw := buf.Bytes()
	// Checksum occupies the last 4 bytes of the 24-byte header.
	raw[wire.MessageHeaderSize-1] ^= 0xff

	if err := initiator.SendRawBytes(responder.ListenAddr(), raw); err != nil {
		t.Fatalf("SendRawBytes: %v", err)
	}

	if err := responder.WaitForDisconnect(initiatorAddrOf(t, initiator, responder), 5*time.Second); err != nil {
		t.Errorf("expected the responder to drop the corrupted connection: %v", err)
	}
}

// Scenario 6 (length variant): a declared body length that does not match
// the actual payload must also cause the connection to drop.
func TestFuzzBadLengthDropsConnection(t *testing.T) {
	responder := mustBuildPeer(t, NewBuilder().WithFullHandshake())
	initiator := mustBuildPeer(t, NewBuilder().WithFullHandshake())

	if err := initiator.Connect(responder.ListenAddr()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := responder.WaitForConnection(time.Second); err != nil {
		t.Fatalf("WaitForConnection: %v", err)
	}

	var buf bytes.Buffer
	if _, err := wire.WriteMessageN(&buf, wire.NewMsgGetAddr(), wire.ProtocolVersion, wire.TestnetMagic); err != nil {
		t.Fatalf("WriteMessageN: %v", err)
	}
	raw := buf.Bytes()
	// Body length is a little-endian uint32 at offset 16 (after the 4-byte
	// magic and 12-byte command). Set it far beyond MaxFrameLength so the
	// responder rejects it immediately instead of blocking on a short read.
	raw[16] = 0xff
	raw[17] = 0xff
	raw[18] = 0xff
	raw[19] = 0xff

	if err := initiator.SendRawBytes(responder.ListenAddr(), raw); err != nil {
		t.Fatalf("SendRawBytes: %v", err)
	}

	if err := responder.WaitForDisconnect(initiatorAddrOf(t, initiator, responder), 5*time.Second); err != nil {
		t.Errorf("expected the responder to drop the malformed-length connection: %v", err)
	}
}

// initiatorAddrOf returns the address the responder sees for its one
// connection back to initiator, since the initiator's ephemeral source port
// is not known in advance.
func initiatorAddrOf(t *testing.T, initiator, responder *SyntheticPeer) net.Addr {
	t.Helper()
	peers := responder.ConnectedPeers()
	if len(peers) != 1 {
		t.Fatalf("expected exactly 1 connection on the responder, got %d", len(peers))
	}
	return peers[0]
}

type countingRecorder struct {
	mu       sync.Mutex
	counters map[string]int
	observed map[string]int
}

func (r *countingRecorder) RegisterCounter(string)   {}
func (r *countingRecorder) RegisterHistogram(string) {}

func (r *countingRecorder) IncCounter(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name]++
}

func (r *countingRecorder) Observe(name string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed[name]++
}

func (r *countingRecorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}

func (r *countingRecorder) observations(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observed[name]
}

// A successful ping/pong exchange feeds the metrics sink: message counters
// on both legs and one RTT observation.
func TestPingPongRecordsMetrics(t *testing.T) {
	rec := &countingRecorder{counters: make(map[string]int), observed: make(map[string]int)}
	metrics.SetDefault(rec)
	t.Cleanup(func() { metrics.SetDefault(nil) })

	responder := mustBuildPeer(t, NewBuilder().WithFullHandshake().WithAllAutoReply())
	initiator := mustBuildPeer(t, NewBuilder().WithFullHandshake())

	if err := initiator.Connect(responder.ListenAddr()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := responder.WaitForConnection(time.Second); err != nil {
		t.Fatalf("WaitForConnection: %v", err)
	}

	if err := initiator.PingPong(responder.ListenAddr(), time.Second); err != nil {
		t.Fatalf("PingPong: %v", err)
	}

	if got := rec.observations(metrics.HistogramPingRTTSeconds); got != 1 {
		t.Errorf("RTT observations = %d, want 1", got)
	}
	if rec.count(metrics.CounterMessagesSent) == 0 {
		t.Error("expected sent-message counter to have been incremented")
	}
	if rec.count(metrics.CounterMessagesReceived) == 0 {
		t.Error("expected received-message counter to have been incremented")
	}
}

// The inbound channel is bounded; filling it beyond capacity must not drop
// messages, only delay delivery until the consumer drains it.
func TestInboundQueueBackpressure(t *testing.T) {
	responder := mustBuildPeer(t, NewBuilder().WithFullHandshake())
	initiator := mustBuildPeer(t, NewBuilder().WithFullHandshake())

	if err := initiator.Connect(responder.ListenAddr()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if _, err := responder.WaitForConnection(time.Second); err != nil {
		t.Fatalf("WaitForConnection: %v", err)
	}

	if got := cap(responder.inbound); got != 100 {
		t.Fatalf("inbound queue capacity = %d, want 100", got)
	}

	const n = 150
	for i := 0; i < n; i++ {
		if err := initiator.Unicast(responder.ListenAddr(), wire.NewMsgGetAddr()); err != nil {
			t.Fatalf("Unicast %d: %v", i, err)
		}
	}

	for i := 0; i < n; i++ {
		if _, err := responder.RecvMessageTimeout(time.Second); err != nil {
			t.Fatalf("RecvMessageTimeout %d: %v", i, err)
		}
	}
}
