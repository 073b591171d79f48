package peer

import (
	"fmt"
	"net"
)

// Builder constructs SyntheticPeers sharing a common Config.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder populated with the harness's defaults:
// no handshake, an all-disabled message filter, the testnet protocol
// magic, and a 64KiB per-connection frame cap.
func NewBuilder() *Builder {
	return &Builder{cfg: defaultConfig()}
}

// WithListenAddr sets the local address the built peer listens on.
func (b *Builder) WithListenAddr(addr string) *Builder {
	b.cfg.ListenAddr = addr
	return b
}

// WithFullHandshake configures the built peer to perform a full
// Version/Verack exchange on every connection.
func (b *Builder) WithFullHandshake() *Builder {
	b.cfg.Handshake = HandshakeFull
	return b
}

// WithVersionOnlyHandshake configures the built peer to exchange only
// Version messages on every connection.
func (b *Builder) WithVersionOnlyHandshake() *Builder {
	b.cfg.Handshake = HandshakeVersionOnly
	return b
}

// WithHandshake sets an explicit HandshakeKind.
func (b *Builder) WithHandshake(kind HandshakeKind) *Builder {
	b.cfg.Handshake = kind
	return b
}

// WithMessageFilter sets the peer's MessageFilter.
func (b *Builder) WithMessageFilter(filter *MessageFilter) *Builder {
	b.cfg.Filter = filter
	return b
}

// WithAllAutoReply sets the peer's MessageFilter to auto-reply to every
// supported message kind.
func (b *Builder) WithAllAutoReply() *Builder {
	b.cfg.Filter = WithAllAutoReply()
	return b
}

// WithProtocolMagic overrides the network magic used on the built peer's
// connections.
func (b *Builder) WithProtocolMagic(magic [4]byte) *Builder {
	b.cfg.ProtocolMagic = magic
	return b
}

// WithMaxFrameLength overrides the per-connection payload cap.
func (b *Builder) WithMaxFrameLength(n uint32) *Builder {
	b.cfg.MaxFrameLength = n
	return b
}

// WithUserAgent overrides the user agent string reported in this peer's
// Version message.
func (b *Builder) WithUserAgent(ua string) *Builder {
	b.cfg.UserAgent = ua
	return b
}

// WithServices overrides the services bitfield reported in this peer's
// Version message.
func (b *Builder) WithServices(services uint64) *Builder {
	b.cfg.Services = services
	return b
}

// Build starts a listener using the accumulated Config and returns the
// running SyntheticPeer.
func (b *Builder) Build() (*SyntheticPeer, error) {
	return newSyntheticPeer(b.cfg)
}

// BuildN builds n SyntheticPeers sharing the accumulated Config and returns
// them alongside their listening addresses.
func (b *Builder) BuildN(n int) ([]*SyntheticPeer, []net.Addr, error) {
	peers := make([]*SyntheticPeer, 0, n)
	addrs := make([]net.Addr, 0, n)
	for i := 0; i < n; i++ {
		p, err := b.Build()
		if err != nil {
			for _, built := range peers {
				built.Shutdown()
			}
			return nil, nil, fmt.Errorf("peer: BuildN: building peer %d of %d: %w", i+1, n, err)
		}
		peers = append(peers, p)
		addrs = append(addrs, p.ListenAddr())
	}
	return peers, addrs, nil
}
