package wire

import "io"

// MaxFilterAddDataSize is the maximum number of bytes a single filteradd
// message may carry.
const MaxFilterAddDataSize = 520

// MaxFilterLoadFilterSize is the maximum number of bytes the Bloom filter
// itself may occupy inside a filterload message.
const MaxFilterLoadFilterSize = 36000

// BloomUpdateFlag controls how a Bloom filter is updated as data
// matching it is observed.
type BloomUpdateFlag uint8

// Known Bloom filter update behaviors.
const (
	BloomUpdateNone         BloomUpdateFlag = 0
	BloomUpdateAll          BloomUpdateFlag = 1
	BloomUpdateP2PubkeyOnly BloomUpdateFlag = 2
)

// MsgFilterAdd implements the Message interface and adds a single data
// element to a previously loaded Bloom filter.
type MsgFilterAdd struct {
	Data []byte
}

func (msg *MsgFilterAdd) BtcDecode(r io.Reader, pver uint32) error {
	data, err := ReadVarBytes(r, pver, MaxFilterAddDataSize, "filteradd data")
	if err != nil {
		return err
	}
	msg.Data = data
	return nil
}

func (msg *MsgFilterAdd) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.Data) > MaxFilterAddDataSize {
		return messageErrorf("MsgFilterAdd.BtcEncode", "filteradd data too large [len %d, max %d]",
			len(msg.Data), MaxFilterAddDataSize)
	}
	return WriteVarBytes(w, pver, msg.Data)
}

func (msg *MsgFilterAdd) Command() string { return CmdFilterAdd }

func (msg *MsgFilterAdd) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(MaxFilterAddDataSize)) + MaxFilterAddDataSize
}

// NewMsgFilterAdd returns a new filteradd message carrying data.
func NewMsgFilterAdd(data []byte) *MsgFilterAdd { return &MsgFilterAdd{Data: data} }

// MsgFilterLoad implements the Message interface and loads a Bloom
// filter that the peer should use to decide which transactions to
// relay.
type MsgFilterLoad struct {
	Filter    []byte
	HashFuncs uint32
	Tweak     uint32
	Flags     BloomUpdateFlag
}

func (msg *MsgFilterLoad) BtcDecode(r io.Reader, pver uint32) error {
	filter, err := ReadVarBytes(r, pver, MaxFilterLoadFilterSize, "filterload filter")
	if err != nil {
		return err
	}
	msg.Filter = filter

	hashFuncs, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.HashFuncs = hashFuncs

	tweak, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.Tweak = tweak

	flags, err := readUint8(r)
	if err != nil {
		return err
	}
	msg.Flags = BloomUpdateFlag(flags)

	return nil
}

func (msg *MsgFilterLoad) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.Filter) > MaxFilterLoadFilterSize {
		return messageErrorf("MsgFilterLoad.BtcEncode", "filterload filter too large [len %d, max %d]",
			len(msg.Filter), MaxFilterLoadFilterSize)
	}

	if err := WriteVarBytes(w, pver, msg.Filter); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, msg.HashFuncs); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, msg.Tweak); err != nil {
		return err
	}
	return binarySerializer.PutUint8(w, uint8(msg.Flags))
}

func (msg *MsgFilterLoad) Command() string { return CmdFilterLoad }

// nonFilterBytes accounts for the fixed-size hash_fn_count/tweak/flags
// fields that accompany the variable-length filter bytes.
const nonFilterBytes = 4 + 4 + 1

func (msg *MsgFilterLoad) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(MaxFilterLoadFilterSize)) + MaxFilterLoadFilterSize + nonFilterBytes
}

// NewMsgFilterLoad returns a new filterload message.
func NewMsgFilterLoad(filter []byte, hashFuncs, tweak uint32, flags BloomUpdateFlag) *MsgFilterLoad {
	return &MsgFilterLoad{Filter: filter, HashFuncs: hashFuncs, Tweak: tweak, Flags: flags}
}
