package wire

import (
	"io"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
)

// InvType represents the type of item referenced by an inventory vector.
type InvType uint32

// Known inventory vector types.
const (
	InvTypeError InvType = 0
	InvTypeTx    InvType = 1
	InvTypeBlock InvType = 2
)

// maxInvPerMsg is the maximum number of inventory vectors allowed in a
// single inv, getdata, or notfound message.
const maxInvPerMsg = 50000

// InvVect identifies a single piece of data by its hash and type.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

func readInvVect(r io.Reader, iv *InvVect) error {
	t, err := readUint32(r)
	if err != nil {
		return err
	}
	iv.Type = InvType(t)
	return readElement(r, &iv.Hash)
}

func writeInvVect(w io.Writer, iv *InvVect) error {
	if err := binarySerializer.PutUint32(w, uint32(iv.Type)); err != nil {
		return err
	}
	return writeElement(w, iv.Hash)
}

const invVectSize = 4 + chainhash.HashSize

func readInvList(r io.Reader, pver uint32) ([]*InvVect, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	if count > maxInvPerMsg {
		return nil, messageErrorf("readInvList", "too many inventory vectors [count %d, max %d]", count, maxInvPerMsg)
	}

	list := make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return nil, err
		}
		list = append(list, iv)
	}
	return list, nil
}

func writeInvList(w io.Writer, pver uint32, list []*InvVect) error {
	if len(list) > maxInvPerMsg {
		return messageErrorf("writeInvList", "too many inventory vectors [count %d, max %d]", len(list), maxInvPerMsg)
	}
	if err := WriteVarInt(w, pver, uint64(len(list))); err != nil {
		return err
	}
	for _, iv := range list {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}

// MsgInv implements the Message interface and announces data the sender
// has available.
type MsgInv struct {
	InvList []*InvVect
}

func (msg *MsgInv) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvList(r, pver)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

func (msg *MsgInv) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvList(w, pver, msg.InvList)
}

func (msg *MsgInv) Command() string { return CmdInv }

func (msg *MsgInv) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(maxInvPerMsg)) + maxInvPerMsg*invVectSize
}

// AddInvVect appends iv to the message's inventory list.
func (msg *MsgInv) AddInvVect(iv *InvVect) {
	msg.InvList = append(msg.InvList, iv)
}

// NewMsgInv returns a new, empty inv message.
func NewMsgInv() *MsgInv { return &MsgInv{InvList: make([]*InvVect, 0, 1)} }

// MsgGetData implements the Message interface and requests the full data
// for items previously announced in an inv message.
type MsgGetData struct {
	InvList []*InvVect
}

func (msg *MsgGetData) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvList(r, pver)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

func (msg *MsgGetData) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvList(w, pver, msg.InvList)
}

func (msg *MsgGetData) Command() string { return CmdGetData }

func (msg *MsgGetData) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(maxInvPerMsg)) + maxInvPerMsg*invVectSize
}

// AddInvVect appends iv to the message's inventory list.
func (msg *MsgGetData) AddInvVect(iv *InvVect) {
	msg.InvList = append(msg.InvList, iv)
}

// NewMsgGetData returns a new, empty getdata message.
func NewMsgGetData() *MsgGetData { return &MsgGetData{InvList: make([]*InvVect, 0, 1)} }

// MsgNotFound implements the Message interface and is returned in
// response to a getdata request for data the sender does not have.
type MsgNotFound struct {
	InvList []*InvVect
}

func (msg *MsgNotFound) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvList(r, pver)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

func (msg *MsgNotFound) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvList(w, pver, msg.InvList)
}

func (msg *MsgNotFound) Command() string { return CmdNotFound }

func (msg *MsgNotFound) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(maxInvPerMsg)) + maxInvPerMsg*invVectSize
}

// NewMsgNotFound returns a new, empty notfound message.
func NewMsgNotFound() *MsgNotFound { return &MsgNotFound{InvList: make([]*InvVect, 0, 1)} }
