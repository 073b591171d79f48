package wire

import (
	"io"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field
// in a version message.
const MaxUserAgentLen = 256

// MsgVersion implements the Message interface and represents the first
// message exchanged on a new connection. It announces the sender's
// protocol version, services, and software identity to the peer.
type MsgVersion struct {
	ProtocolVersion uint32
	Services        uint64
	Timestamp       int64
	AddrRecv        NetAddress
	AddrFrom        NetAddress
	Nonce           uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	pv, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = pv

	services, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Services = services

	ts, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Timestamp = int64(ts)

	if err := readNetAddress(r, pver, &msg.AddrRecv, false); err != nil {
		return err
	}
	if err := readNetAddress(r, pver, &msg.AddrFrom, false); err != nil {
		return err
	}

	nonce, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Nonce = nonce

	ua, err := ReadVarString(r, pver, MaxUserAgentLen)
	if err != nil {
		return err
	}
	msg.UserAgent = ua

	height, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.StartHeight = int32(height)

	relay, err := readUint8(r)
	if err != nil {
		// The relay flag was introduced after the rest of the message
		// and is permitted to be absent on older peers.
		msg.Relay = true
		return nil
	}
	msg.Relay = relay != 0

	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.UserAgent) > MaxUserAgentLen {
		return messageErrorf("MsgVersion.BtcEncode", "user agent too long [len %d, max %d]",
			len(msg.UserAgent), MaxUserAgentLen)
	}

	if err := binarySerializer.PutUint32(w, msg.ProtocolVersion); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, msg.Services); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, uint64(msg.Timestamp)); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrRecv, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, pver, &msg.AddrFrom, false); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, msg.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, pver, msg.UserAgent); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, uint32(msg.StartHeight)); err != nil {
		return err
	}

	var relay uint8
	if msg.Relay {
		relay = 1
	}
	return binarySerializer.PutUint8(w, relay)
}

// Command returns the protocol command string for the message.
func (msg *MsgVersion) Command() string { return CmdVersion }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	return 4 + 8 + 8 + maxNetAddressPayload*2 + 8 +
		uint32(VarIntSerializeSize(MaxUserAgentLen)) + MaxUserAgentLen + 4 + 1
}

// NewMsgVersion returns a new version message populated with the given
// fields.
func NewMsgVersion(recv, from NetAddress, nonce uint64, startHeight int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: ProtocolVersion,
		Services:        DefaultServices,
		Timestamp:       0,
		AddrRecv:        recv,
		AddrFrom:        from,
		Nonce:           nonce,
		UserAgent:       DefaultUserAgent,
		StartHeight:     startHeight,
		Relay:           false,
	}
}

// ProtocolVersion is the protocol version implemented and reported by
// this harness's synthetic peers.
const ProtocolVersion uint32 = 170013

// DefaultServices is the services bitfield reported by this harness's
// synthetic peers.
const DefaultServices uint64 = 1

// DefaultUserAgent is the user agent this harness's synthetic peers report
// by default: empty, so a conformance run reports no user agent at all.
const DefaultUserAgent = ""
