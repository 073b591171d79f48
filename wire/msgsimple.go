package wire

import "io"

// MsgVerAck implements the Message interface and represents acceptance of
// a peer's version message. It carries no payload.
type MsgVerAck struct{}

func (msg *MsgVerAck) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgVerAck) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgVerAck) Command() string                          { return CmdVerack }
func (msg *MsgVerAck) MaxPayloadLength(pver uint32) uint32      { return 0 }

// NewMsgVerAck returns a new verack message.
func NewMsgVerAck() *MsgVerAck { return &MsgVerAck{} }

// MsgGetAddr implements the Message interface and represents a request for
// known active peers. It carries no payload.
type MsgGetAddr struct{}

func (msg *MsgGetAddr) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgGetAddr) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgGetAddr) Command() string                          { return CmdGetAddr }
func (msg *MsgGetAddr) MaxPayloadLength(pver uint32) uint32      { return 0 }

// NewMsgGetAddr returns a new getaddr message.
func NewMsgGetAddr() *MsgGetAddr { return &MsgGetAddr{} }

// MsgMemPool implements the Message interface and represents a request
// for the peer's transaction pool inventory. It carries no payload.
type MsgMemPool struct{}

func (msg *MsgMemPool) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgMemPool) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgMemPool) Command() string                          { return CmdMemPool }
func (msg *MsgMemPool) MaxPayloadLength(pver uint32) uint32      { return 0 }

// NewMsgMemPool returns a new mempool message.
func NewMsgMemPool() *MsgMemPool { return &MsgMemPool{} }

// MsgFilterClear implements the Message interface and requests that the
// peer clear any Bloom filter it previously loaded. It carries no payload.
type MsgFilterClear struct{}

func (msg *MsgFilterClear) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgFilterClear) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgFilterClear) Command() string                          { return CmdFilterClear }
func (msg *MsgFilterClear) MaxPayloadLength(pver uint32) uint32      { return 0 }

// NewMsgFilterClear returns a new filterclear message.
func NewMsgFilterClear() *MsgFilterClear { return &MsgFilterClear{} }
