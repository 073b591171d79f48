// Package peer implements a synthetic Zcash protocol peer: a node that can
// listen for and initiate connections, perform a configurable handshake,
// and exchange wire messages with a remote implementation under test.
package peer

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/excc-labs/zconform/internal/metrics"
	"github.com/excc-labs/zconform/wire"
)

var registerMetricsOnce sync.Once

func registerMetrics() {
	registerMetricsOnce.Do(func() {
		m := metrics.Default()
		m.RegisterCounter(metrics.CounterMessagesSent)
		m.RegisterCounter(metrics.CounterMessagesReceived)
		m.RegisterHistogram(metrics.HistogramPingRTTSeconds)
	})
}

// InboundMessage pairs a decoded message with the address of the connection
// it arrived on.
type InboundMessage struct {
	From    net.Addr
	Message wire.Message
}

// connState tracks a single TCP connection owned by a SyntheticPeer.
type connState struct {
	conn    net.Conn
	addr    net.Addr
	side    connSide
	version *wire.MsgVersion

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func (c *connState) close() {
	c.once.Do(func() {
		c.conn.Close()
		close(c.done)
	})
}

func (c *connState) send(cfg Config, msg wire.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := sendMessage(c.conn, cfg.ProtocolMagic, cfg.ProtocolVersion, msg); err != nil {
		return err
	}
	metrics.Default().IncCounter(metrics.CounterMessagesSent)
	return nil
}

func (c *connState) sendRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(data)
	return err
}

// SyntheticPeer is a single synthetic protocol participant: it listens on
// one address, may hold any number of simultaneous connections, and
// delivers unfiltered inbound messages through a shared bounded channel.
type SyntheticPeer struct {
	cfg      Config
	listener net.Listener

	inbound chan InboundMessage

	mu    sync.RWMutex
	conns map[string]*connState

	wg               sync.WaitGroup
	closeOnce        sync.Once
	closeInboundOnce sync.Once
	closed           chan struct{}
}

func newSyntheticPeer(cfg Config) (*SyntheticPeer, error) {
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("peer: listen on %s: %w", cfg.ListenAddr, err)
	}

	registerMetrics()

	sp := &SyntheticPeer{
		cfg:      cfg,
		listener: ln,
		inbound:  make(chan InboundMessage, cfg.InboundQueueSize),
		conns:    make(map[string]*connState),
		closed:   make(chan struct{}),
	}

	sp.wg.Add(1)
	go sp.acceptLoop()

	return sp, nil
}

// ListenAddr returns the address this peer is listening on.
func (sp *SyntheticPeer) ListenAddr() net.Addr {
	return sp.listener.Addr()
}

func (sp *SyntheticPeer) acceptLoop() {
	defer sp.wg.Done()
	for {
		conn, err := sp.listener.Accept()
		if err != nil {
			return
		}
		sp.wg.Add(1)
		go sp.handleInbound(conn)
	}
}

func (sp *SyntheticPeer) handleInbound(conn net.Conn) {
	defer sp.wg.Done()

	version, err := performHandshake(conn, sideResponder, sp.cfg)
	if err != nil {
		conn.Close()
		return
	}

	cs := &connState{conn: conn, addr: conn.RemoteAddr(), side: sideResponder, version: version, done: make(chan struct{})}
	sp.register(cs)

	sp.wg.Add(1)
	go sp.readLoop(cs)
}

// Connect dials target, performs the configured handshake as the
// initiating side, and registers the resulting connection.
func (sp *SyntheticPeer) Connect(target net.Addr) error {
	conn, err := net.Dial(target.Network(), target.String())
	if err != nil {
		return fmt.Errorf("peer: dial %s: %w", target, err)
	}

	version, err := performHandshake(conn, sideInitiator, sp.cfg)
	if err != nil {
		conn.Close()
		return err
	}

	cs := &connState{conn: conn, addr: conn.RemoteAddr(), side: sideInitiator, version: version, done: make(chan struct{})}
	sp.register(cs)

	sp.wg.Add(1)
	go sp.readLoop(cs)

	return nil
}

func (sp *SyntheticPeer) register(cs *connState) {
	sp.mu.Lock()
	sp.conns[cs.addr.String()] = cs
	sp.mu.Unlock()
}

func (sp *SyntheticPeer) unregister(cs *connState) {
	sp.mu.Lock()
	if sp.conns[cs.addr.String()] == cs {
		delete(sp.conns, cs.addr.String())
	}
	sp.mu.Unlock()
}

func (sp *SyntheticPeer) readLoop(cs *connState) {
	defer sp.wg.Done()
	defer cs.close()
	defer sp.unregister(cs)

	for {
		_, msg, _, err := wire.ReadMessageN(cs.conn, sp.cfg.ProtocolVersion, sp.cfg.ProtocolMagic, sp.cfg.MaxFrameLength)
		if err != nil {
			return
		}
		metrics.Default().IncCounter(metrics.CounterMessagesReceived)

		switch sp.cfg.Filter.actionFor(msg) {
		case FilterAutoReply:
			reply := autoReply(msg)
			if err := cs.send(sp.cfg, reply); err != nil {
				return
			}
		case FilterEnabled:
			// Dropped by the filter.
		case FilterDisabled:
			select {
			case sp.inbound <- InboundMessage{From: cs.addr, Message: msg}:
			case <-sp.closed:
				return
			}
		}
	}
}

// Unicast sends msg to the connection at target.
func (sp *SyntheticPeer) Unicast(target net.Addr, msg wire.Message) error {
	cs := sp.lookup(target)
	if cs == nil {
		return fmt.Errorf("peer: not connected to %s", target)
	}
	return cs.send(sp.cfg, msg)
}

// SendRawBytes writes data directly to the connection at target, bypassing
// the wire encoder. It exists so fuzz-style corruption cases can be sent
// without first producing a well-formed Message.
func (sp *SyntheticPeer) SendRawBytes(target net.Addr, data []byte) error {
	cs := sp.lookup(target)
	if cs == nil {
		return fmt.Errorf("peer: not connected to %s", target)
	}
	return cs.sendRaw(data)
}

func (sp *SyntheticPeer) lookup(target net.Addr) *connState {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.conns[target.String()]
}

// IsConnected reports whether target has a live registered connection.
func (sp *SyntheticPeer) IsConnected(target net.Addr) bool {
	return sp.lookup(target) != nil
}

// NumConnected returns the number of live connections.
func (sp *SyntheticPeer) NumConnected() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return len(sp.conns)
}

// ConnectedPeers returns the addresses of all live connections.
func (sp *SyntheticPeer) ConnectedPeers() []net.Addr {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	addrs := make([]net.Addr, 0, len(sp.conns))
	for _, cs := range sp.conns {
		addrs = append(addrs, cs.addr)
	}
	return addrs
}

// PeerVersion returns the Version message received from target during the
// handshake, or nil if none was captured (HandshakeNone, or target unknown).
func (sp *SyntheticPeer) PeerVersion(target net.Addr) *wire.MsgVersion {
	cs := sp.lookup(target)
	if cs == nil {
		return nil
	}
	return cs.version
}

// Disconnect closes the connection to target. It reports whether a
// connection was actually present.
func (sp *SyntheticPeer) Disconnect(target net.Addr) bool {
	cs := sp.lookup(target)
	if cs == nil {
		return false
	}
	cs.close()
	return true
}

// WaitForConnection blocks until at least one connection is registered and
// returns its address.
func (sp *SyntheticPeer) WaitForConnection(timeout time.Duration) (net.Addr, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if peers := sp.ConnectedPeers(); len(peers) > 0 {
			return peers[0], nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil, fmt.Errorf("peer: no connection after %s", timeout)
}

// RecvMessage blocks until an unfiltered inbound message arrives, or
// returns ErrConnectionDropped once the peer has been shut down and the
// inbound channel is drained.
func (sp *SyntheticPeer) RecvMessage() (InboundMessage, error) {
	msg, ok := <-sp.inbound
	if !ok {
		return InboundMessage{}, ErrConnectionDropped
	}
	return msg, nil
}

// RecvMessageTimeout behaves like RecvMessage but gives up after duration.
func (sp *SyntheticPeer) RecvMessageTimeout(duration time.Duration) (InboundMessage, error) {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case msg, ok := <-sp.inbound:
		if !ok {
			return InboundMessage{}, ErrConnectionDropped
		}
		return msg, nil
	case <-timer.C:
		return InboundMessage{}, fmt.Errorf("peer: no message received within %s", duration)
	}
}

// PingPong sends a Ping to target and waits up to duration for a Pong
// carrying a matching nonce.
func (sp *SyntheticPeer) PingPong(target net.Addr, duration time.Duration) error {
	nonce := randomNonce()
	start := time.Now()
	if err := sp.Unicast(target, wire.NewMsgPing(nonce)); err != nil {
		if !sp.IsConnected(target) {
			return &PingPongError{Kind: "aborted"}
		}
		return err
	}

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		poll := 10 * time.Millisecond
		if remaining < poll {
			poll = remaining
		}

		msg, err := sp.RecvMessageTimeout(poll)
		if err != nil {
			if !sp.IsConnected(target) {
				return &PingPongError{Kind: "aborted"}
			}
			continue
		}

		pong, ok := msg.Message.(*wire.MsgPong)
		if !ok {
			return &PingPongError{Kind: "unexpected", Got: msg.Message.Command()}
		}
		if pong.Nonce == nonce {
			metrics.Default().Observe(metrics.HistogramPingRTTSeconds, time.Since(start).Seconds())
			return nil
		}
		return &PingPongError{Kind: "unexpected", Got: wire.CmdPong}
	}

	return &PingPongError{Kind: "timeout", Timeout: duration}
}

// WaitForDisconnect sends a Ping to target and succeeds only if the
// connection drops instead of answering within duration.
func (sp *SyntheticPeer) WaitForDisconnect(target net.Addr, duration time.Duration) error {
	err := sp.PingPong(target, duration)
	if err == nil {
		return fmt.Errorf("peer: connection to %s is still active", target)
	}
	if errors.Is(err, ErrConnectionAborted) {
		return nil
	}
	return err
}

// Shutdown closes the listener and every live connection, then waits for
// all internal goroutines to exit.
func (sp *SyntheticPeer) Shutdown() {
	sp.closeOnce.Do(func() {
		close(sp.closed)
		sp.listener.Close()

		sp.mu.RLock()
		conns := make([]*connState, 0, len(sp.conns))
		for _, cs := range sp.conns {
			conns = append(conns, cs)
		}
		sp.mu.RUnlock()

		for _, cs := range conns {
			cs.close()
		}
	})

	sp.wg.Wait()
	sp.closeInboundOnce.Do(func() { close(sp.inbound) })
}
