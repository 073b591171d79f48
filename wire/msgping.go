package wire

import "io"

// MsgPing implements the Message interface and represents a keepalive
// probe carrying a nonce the peer is expected to echo back in a pong.
type MsgPing struct {
	Nonce uint64
}

func (msg *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	nonce, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Nonce = nonce
	return nil
}

func (msg *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	return binarySerializer.PutUint64(w, msg.Nonce)
}

func (msg *MsgPing) Command() string { return CmdPing }

func (msg *MsgPing) MaxPayloadLength(pver uint32) uint32 { return 8 }

// NewMsgPing returns a new ping message carrying nonce.
func NewMsgPing(nonce uint64) *MsgPing { return &MsgPing{Nonce: nonce} }

// MsgPong implements the Message interface and represents the reply to a
// ping, echoing back the nonce it carried.
type MsgPong struct {
	Nonce uint64
}

func (msg *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	nonce, err := readUint64(r)
	if err != nil {
		return err
	}
	msg.Nonce = nonce
	return nil
}

func (msg *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return binarySerializer.PutUint64(w, msg.Nonce)
}

func (msg *MsgPong) Command() string { return CmdPong }

func (msg *MsgPong) MaxPayloadLength(pver uint32) uint32 { return 8 }

// NewMsgPong returns a new pong message echoing nonce.
func NewMsgPong(nonce uint64) *MsgPong { return &MsgPong{Nonce: nonce} }
