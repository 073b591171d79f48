package peer

import (
	"net"
	"time"

	"github.com/excc-labs/zconform/wire"
)

// connSide identifies which end of a TCP connection a SyntheticPeer is
// running the handshake as.
type connSide int

const (
	sideInitiator connSide = iota
	sideResponder
)

func sendMessage(conn net.Conn, magic wire.ProtocolMagic, pver uint32, msg wire.Message) error {
	_, err := wire.WriteMessageN(conn, msg, pver, magic)
	return err
}

func readMessage(conn net.Conn, magic wire.ProtocolMagic, pver uint32, maxPayload uint32) (wire.Message, error) {
	_, msg, _, err := wire.ReadMessageN(conn, pver, magic, maxPayload)
	return msg, err
}

// netAddressFromTCP converts a net.Addr into a wire.NetAddress, leaving the
// zero value if addr is not a *net.TCPAddr.
func netAddressFromTCP(addr net.Addr) wire.NetAddress {
	na := wire.NetAddress{}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		na.IP = tcp.IP
		na.Port = uint16(tcp.Port)
	}
	return na
}

// ownVersionMessage builds this peer's Version message addressed from conn's
// local side to remoteAddr.
func ownVersionMessage(cfg Config, conn net.Conn, remoteAddr wire.NetAddress) *wire.MsgVersion {
	localAddr := netAddressFromTCP(conn.LocalAddr())

	msg := wire.NewMsgVersion(remoteAddr, localAddr, randomNonce(), cfg.StartHeight)
	msg.ProtocolVersion = cfg.ProtocolVersion
	msg.Services = cfg.Services
	msg.UserAgent = cfg.UserAgent
	return msg
}

// performHandshake runs cfg.Handshake over conn from the given side and
// returns the peer's advertised Version, or nil if cfg.Handshake is
// HandshakeNone. The deadline set on conn is cleared before returning.
func performHandshake(conn net.Conn, side connSide, cfg Config) (*wire.MsgVersion, error) {
	if cfg.Handshake == HandshakeNone {
		return nil, nil
	}

	if cfg.HandshakeTimeout > 0 {
		conn.SetDeadline(time.Now().Add(cfg.HandshakeTimeout))
		defer conn.SetDeadline(time.Time{})
	}

	switch side {
	case sideInitiator:
		return handshakeInitiator(conn, cfg)
	case sideResponder:
		return handshakeResponder(conn, cfg)
	default:
		panic("peer: unknown connSide")
	}
}

func handshakeInitiator(conn net.Conn, cfg Config) (*wire.MsgVersion, error) {
	own := ownVersionMessage(cfg, conn, netAddressFromTCP(conn.RemoteAddr()))
	if err := sendMessage(conn, cfg.ProtocolMagic, cfg.ProtocolVersion, own); err != nil {
		return nil, &HandshakeError{Stage: "send version", Err: err}
	}

	peerVersion, err := readMessage(conn, cfg.ProtocolMagic, cfg.ProtocolVersion, cfg.MaxFrameLength)
	if err != nil {
		return nil, &HandshakeError{Stage: "read version", Err: err}
	}
	version, ok := peerVersion.(*wire.MsgVersion)
	if !ok {
		return nil, &HandshakeError{
			Stage: "read version",
			Err:   &UnexpectedMessageError{Stage: "read version", Wanted: wire.CmdVersion, Got: peerVersion.Command()},
		}
	}

	if cfg.Handshake == HandshakeVersionOnly {
		return version, nil
	}

	if err := sendMessage(conn, cfg.ProtocolMagic, cfg.ProtocolVersion, wire.NewMsgVerAck()); err != nil {
		return nil, &HandshakeError{Stage: "send verack", Err: err}
	}

	peerAck, err := readMessage(conn, cfg.ProtocolMagic, cfg.ProtocolVersion, cfg.MaxFrameLength)
	if err != nil {
		return nil, &HandshakeError{Stage: "read verack", Err: err}
	}
	if _, ok := peerAck.(*wire.MsgVerAck); !ok {
		return nil, &HandshakeError{
			Stage: "read verack",
			Err:   &UnexpectedMessageError{Stage: "read verack", Wanted: wire.CmdVerack, Got: peerAck.Command()},
		}
	}

	return version, nil
}

func handshakeResponder(conn net.Conn, cfg Config) (*wire.MsgVersion, error) {
	peerVersion, err := readMessage(conn, cfg.ProtocolMagic, cfg.ProtocolVersion, cfg.MaxFrameLength)
	if err != nil {
		return nil, &HandshakeError{Stage: "read version", Err: err}
	}
	version, ok := peerVersion.(*wire.MsgVersion)
	if !ok {
		return nil, &HandshakeError{
			Stage: "read version",
			Err:   &UnexpectedMessageError{Stage: "read version", Wanted: wire.CmdVersion, Got: peerVersion.Command()},
		}
	}

	// Addressed to the peer's advertised AddrFrom, not the raw TCP remote
	// address.
	own := ownVersionMessage(cfg, conn, version.AddrFrom)
	if err := sendMessage(conn, cfg.ProtocolMagic, cfg.ProtocolVersion, own); err != nil {
		return nil, &HandshakeError{Stage: "send version", Err: err}
	}

	if cfg.Handshake == HandshakeVersionOnly {
		return version, nil
	}

	peerAck, err := readMessage(conn, cfg.ProtocolMagic, cfg.ProtocolVersion, cfg.MaxFrameLength)
	if err != nil {
		return nil, &HandshakeError{Stage: "read verack", Err: err}
	}
	if _, ok := peerAck.(*wire.MsgVerAck); !ok {
		return nil, &HandshakeError{
			Stage: "read verack",
			Err:   &UnexpectedMessageError{Stage: "read verack", Wanted: wire.CmdVerack, Got: peerAck.Command()},
		}
	}

	return version, sendMessage(conn, cfg.ProtocolMagic, cfg.ProtocolVersion, wire.NewMsgVerAck())
}
