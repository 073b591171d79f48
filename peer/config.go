package peer

import (
	"time"

	"github.com/excc-labs/zconform/wire"
)

// HandshakeKind selects which of the protocol's initial messages a
// SyntheticPeer performs before handing a connection over to the read loop.
type HandshakeKind int

const (
	// HandshakeNone performs no handshake; the connection is usable
	// immediately, which is what a resistance test harness needs when it
	// wants to probe behavior ahead of or instead of a Version exchange.
	HandshakeNone HandshakeKind = iota

	// HandshakeVersionOnly exchanges only Version messages.
	HandshakeVersionOnly

	// HandshakeFull exchanges Version and Verack in both directions.
	HandshakeFull
)

func (k HandshakeKind) String() string {
	switch k {
	case HandshakeNone:
		return "none"
	case HandshakeVersionOnly:
		return "version-only"
	case HandshakeFull:
		return "full"
	default:
		return "unknown"
	}
}

// DefaultMaxFrameLength bounds the size of a single message a SyntheticPeer
// connection will read before it is considered protocol abuse and the
// connection is dropped. It is deliberately much smaller than
// wire.DefaultMaxMessagePayload: synthetic peers exist to probe a remote
// node's behavior, not to relay full blocks.
const DefaultMaxFrameLength = 64 * 1024

// Config holds the parameters a SyntheticPeer is built with. Use Builder to
// construct one with defaults already applied.
type Config struct {
	// ListenAddr is the local address the peer listens on, e.g.
	// "127.0.0.1:0". Port 0 selects an ephemeral port.
	ListenAddr string

	// Handshake selects the handshake performed on every new connection,
	// in both the dialing and listening directions.
	Handshake HandshakeKind

	// Filter governs how inbound Ping/GetAddr/GetHeaders/GetData messages
	// are handled once past the handshake.
	Filter *MessageFilter

	// ProtocolMagic is the network magic written into every outbound
	// message header and checked on every inbound one.
	ProtocolMagic wire.ProtocolMagic

	// ProtocolVersion is reported in this peer's Version message and used
	// to select wire encoding variants for messages that depend on it.
	ProtocolVersion uint32

	// Services is the services bitfield reported in this peer's Version
	// message.
	Services uint64

	// UserAgent is reported in this peer's Version message.
	UserAgent string

	// StartHeight is reported in this peer's Version message.
	StartHeight int32

	// MaxFrameLength bounds the payload size ReadMessageN will accept on
	// any one connection owned by this peer.
	MaxFrameLength uint32

	// InboundQueueSize bounds how many unfiltered messages may sit in the
	// inbound channel before a connection's reader blocks.
	InboundQueueSize int

	// HandshakeTimeout bounds how long the Version/Verack exchange may
	// take before the connection is aborted.
	HandshakeTimeout time.Duration
}

// defaultConfig returns the Config that a Builder from NewBuilder starts with.
func defaultConfig() Config {
	return Config{
		ListenAddr:       "127.0.0.1:0",
		Handshake:        HandshakeNone,
		Filter:           NewMessageFilter(),
		ProtocolMagic:    wire.TestnetMagic,
		ProtocolVersion:  wire.ProtocolVersion,
		Services:         wire.DefaultServices,
		UserAgent:        wire.DefaultUserAgent,
		StartHeight:      0,
		MaxFrameLength:   DefaultMaxFrameLength,
		InboundQueueSize: 100,
		HandshakeTimeout: 10 * time.Second,
	}
}
