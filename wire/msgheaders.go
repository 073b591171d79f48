package wire

import (
	"io"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
)

// MaxBlockHeadersPerMsg is the maximum number of headers allowed in a
// single headers message.
const MaxBlockHeadersPerMsg = 2000

// MaxBlockLocatorsPerMsg is the maximum number of locator hashes allowed
// in a single getheaders or getblocks message.
const MaxBlockLocatorsPerMsg = 500

// MsgHeaders implements the Message interface and is sent in response to
// a getheaders message, one BlockHeader per announced block.
type MsgHeaders struct {
	Headers []*BlockHeader
}

func (msg *MsgHeaders) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if count > MaxBlockHeadersPerMsg {
		return messageErrorf("MsgHeaders.BtcDecode", "too many headers for message [count %d, max %d]",
			count, MaxBlockHeadersPerMsg)
	}

	headers := make([]*BlockHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		bh := &BlockHeader{}
		if err := bh.BtcDecode(r, pver); err != nil {
			return err
		}
		headers = append(headers, bh)
	}
	msg.Headers = headers
	return nil
}

func (msg *MsgHeaders) BtcEncode(w io.Writer, pver uint32) error {
	count := len(msg.Headers)
	if count > MaxBlockHeadersPerMsg {
		return messageErrorf("MsgHeaders.BtcEncode", "too many headers for message [count %d, max %d]",
			count, MaxBlockHeadersPerMsg)
	}

	if err := WriteVarInt(w, pver, uint64(count)); err != nil {
		return err
	}
	for _, bh := range msg.Headers {
		if err := bh.BtcEncode(w, pver); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgHeaders) Command() string { return CmdHeaders }

func (msg *MsgHeaders) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(MaxBlockHeadersPerMsg)) +
		MaxBlockHeadersPerMsg*(uint32(blockHeaderLen)+1)
}

// AddBlockHeader appends bh to the message's header list.
func (msg *MsgHeaders) AddBlockHeader(bh *BlockHeader) error {
	if len(msg.Headers)+1 > MaxBlockHeadersPerMsg {
		return messageErrorf("MsgHeaders.AddBlockHeader", "too many headers for message [max %d]", MaxBlockHeadersPerMsg)
	}
	msg.Headers = append(msg.Headers, bh)
	return nil
}

// NewMsgHeaders returns a new, empty headers message.
func NewMsgHeaders() *MsgHeaders {
	return &MsgHeaders{Headers: make([]*BlockHeader, 0, MaxBlockHeadersPerMsg)}
}

func readLocatorHashes(r io.Reader, pver uint32) ([]*chainhash.Hash, *chainhash.Hash, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, nil, err
	}
	if count > MaxBlockLocatorsPerMsg {
		return nil, nil, messageErrorf("readLocatorHashes", "too many locator hashes [count %d, max %d]",
			count, MaxBlockLocatorsPerMsg)
	}

	locators := make([]*chainhash.Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		hash := &chainhash.Hash{}
		if err := readElement(r, hash); err != nil {
			return nil, nil, err
		}
		locators = append(locators, hash)
	}

	stop := &chainhash.Hash{}
	if err := readElement(r, stop); err != nil {
		return nil, nil, err
	}

	return locators, stop, nil
}

func writeLocatorHashes(w io.Writer, pver uint32, locators []*chainhash.Hash, stop *chainhash.Hash) error {
	if len(locators) > MaxBlockLocatorsPerMsg {
		return messageErrorf("writeLocatorHashes", "too many locator hashes [count %d, max %d]",
			len(locators), MaxBlockLocatorsPerMsg)
	}
	if err := WriteVarInt(w, pver, uint64(len(locators))); err != nil {
		return err
	}
	for _, hash := range locators {
		if err := writeElement(w, *hash); err != nil {
			return err
		}
	}
	return writeElement(w, *stop)
}

// MsgGetHeaders implements the Message interface and requests block
// headers starting from the best-known locator hash.
type MsgGetHeaders struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

func (msg *MsgGetHeaders) BtcDecode(r io.Reader, pver uint32) error {
	pv, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = pv

	locators, stop, err := readLocatorHashes(r, pver)
	if err != nil {
		return err
	}
	msg.BlockLocatorHashes = locators
	msg.HashStop = *stop
	return nil
}

func (msg *MsgGetHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if err := binarySerializer.PutUint32(w, msg.ProtocolVersion); err != nil {
		return err
	}
	return writeLocatorHashes(w, pver, msg.BlockLocatorHashes, &msg.HashStop)
}

func (msg *MsgGetHeaders) Command() string { return CmdGetHeaders }

func (msg *MsgGetHeaders) MaxPayloadLength(pver uint32) uint32 {
	return 4 + uint32(VarIntSerializeSize(MaxBlockLocatorsPerMsg)) +
		MaxBlockLocatorsPerMsg*uint32(chainhash.HashSize) + uint32(chainhash.HashSize)
}

// AddBlockLocatorHash appends hash to the message's locator list.
func (msg *MsgGetHeaders) AddBlockLocatorHash(hash *chainhash.Hash) error {
	if len(msg.BlockLocatorHashes)+1 > MaxBlockLocatorsPerMsg {
		return messageErrorf("MsgGetHeaders.AddBlockLocatorHash", "too many locators [max %d]", MaxBlockLocatorsPerMsg)
	}
	msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, hash)
	return nil
}

// NewMsgGetHeaders returns a new, empty getheaders message.
func NewMsgGetHeaders() *MsgGetHeaders {
	return &MsgGetHeaders{
		ProtocolVersion:    ProtocolVersion,
		BlockLocatorHashes: make([]*chainhash.Hash, 0, MaxBlockLocatorsPerMsg),
	}
}

// MsgGetBlocks implements the Message interface and requests full blocks
// starting from the best-known locator hash.
type MsgGetBlocks struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

func (msg *MsgGetBlocks) BtcDecode(r io.Reader, pver uint32) error {
	pv, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = pv

	locators, stop, err := readLocatorHashes(r, pver)
	if err != nil {
		return err
	}
	msg.BlockLocatorHashes = locators
	msg.HashStop = *stop
	return nil
}

func (msg *MsgGetBlocks) BtcEncode(w io.Writer, pver uint32) error {
	if err := binarySerializer.PutUint32(w, msg.ProtocolVersion); err != nil {
		return err
	}
	return writeLocatorHashes(w, pver, msg.BlockLocatorHashes, &msg.HashStop)
}

func (msg *MsgGetBlocks) Command() string { return CmdGetBlocks }

func (msg *MsgGetBlocks) MaxPayloadLength(pver uint32) uint32 {
	return 4 + uint32(VarIntSerializeSize(MaxBlockLocatorsPerMsg)) +
		MaxBlockLocatorsPerMsg*uint32(chainhash.HashSize) + uint32(chainhash.HashSize)
}

// AddBlockLocatorHash appends hash to the message's locator list.
func (msg *MsgGetBlocks) AddBlockLocatorHash(hash *chainhash.Hash) error {
	if len(msg.BlockLocatorHashes)+1 > MaxBlockLocatorsPerMsg {
		return messageErrorf("MsgGetBlocks.AddBlockLocatorHash", "too many locators [max %d]", MaxBlockLocatorsPerMsg)
	}
	msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, hash)
	return nil
}

// NewMsgGetBlocks returns a new, empty getblocks message.
func NewMsgGetBlocks() *MsgGetBlocks {
	return &MsgGetBlocks{
		ProtocolVersion:    ProtocolVersion,
		BlockLocatorHashes: make([]*chainhash.Hash, 0, MaxBlockLocatorsPerMsg),
	}
}
