package wire

import "io"

// MaxAddrPerMsg is the maximum number of addresses allowed in a single
// addr message.
const MaxAddrPerMsg = 1000

// MsgAddr implements the Message interface and represents a list of known
// active peers, each carrying its own last-seen timestamp.
type MsgAddr struct {
	AddrList []*NetAddress
}

func (msg *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > MaxAddrPerMsg {
		return messageErrorf("MsgAddr.BtcDecode", "too many addresses for message [count %d, max %d]",
			count, MaxAddrPerMsg)
	}

	addrList := make([]*NetAddress, 0, count)
	for i := uint64(0); i < count; i++ {
		na := &NetAddress{}
		if err := readNetAddress(r, pver, na, true); err != nil {
			return err
		}
		addrList = append(addrList, na)
	}
	msg.AddrList = addrList
	return nil
}

func (msg *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	count := len(msg.AddrList)
	if count > MaxAddrPerMsg {
		return messageErrorf("MsgAddr.BtcEncode", "too many addresses for message [count %d, max %d]",
			count, MaxAddrPerMsg)
	}

	if err := WriteVarInt(w, pver, uint64(count)); err != nil {
		return err
	}
	for _, na := range msg.AddrList {
		if err := writeNetAddress(w, pver, na, true); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgAddr) Command() string { return CmdAddr }

func (msg *MsgAddr) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(MaxAddrPerMsg)) + MaxAddrPerMsg*(maxNetAddressPayload+4)
}

// AddAddress appends na to the address list, enforcing MaxAddrPerMsg.
func (msg *MsgAddr) AddAddress(na *NetAddress) error {
	if len(msg.AddrList)+1 > MaxAddrPerMsg {
		return messageErrorf("MsgAddr.AddAddress", "too many addresses for message [max %d]", MaxAddrPerMsg)
	}
	msg.AddrList = append(msg.AddrList, na)
	return nil
}

// NewMsgAddr returns a new, empty addr message.
func NewMsgAddr() *MsgAddr {
	return &MsgAddr{AddrList: make([]*NetAddress, 0, MaxAddrPerMsg)}
}
