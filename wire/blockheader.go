package wire

import (
	"io"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
)

// blockHeaderLen is the number of bytes in a serialized block header,
// not counting the trailing transaction count: 4 bytes version, three
// 32-byte hashes, 8 bytes timestamp, 4 bytes bits, 4 bytes nonce.
const blockHeaderLen = 4 + chainhash.HashSize*3 + 8 + 4 + 4

// BlockHeader defines information about a block and is used in the
// headers and block messages. The same struct serves both: in a headers
// message TxnCount is always zero (a historical placeholder), while in a
// block message it is the real count of transactions that follow.
type BlockHeader struct {
	Version         int32
	PrevBlock       chainhash.Hash
	MerkleRoot      chainhash.Hash
	LightClientRoot chainhash.Hash
	Timestamp       int64
	Bits            uint32
	Nonce           uint32
	TxnCount        uint64
}

func readBlockHeader(r io.Reader, pver uint32, bh *BlockHeader) error {
	version, err := readUint32(r)
	if err != nil {
		return err
	}
	bh.Version = int32(version)

	if err := readElement(r, &bh.PrevBlock); err != nil {
		return err
	}
	if err := readElement(r, &bh.MerkleRoot); err != nil {
		return err
	}
	if err := readElement(r, &bh.LightClientRoot); err != nil {
		return err
	}

	ts, err := readUint64(r)
	if err != nil {
		return err
	}
	bh.Timestamp = int64(ts)

	bits, err := readUint32(r)
	if err != nil {
		return err
	}
	bh.Bits = bits

	nonce, err := readUint32(r)
	if err != nil {
		return err
	}
	bh.Nonce = nonce

	return nil
}

func writeBlockHeader(w io.Writer, pver uint32, bh *BlockHeader) error {
	if err := binarySerializer.PutUint32(w, uint32(bh.Version)); err != nil {
		return err
	}
	if err := writeElement(w, bh.PrevBlock); err != nil {
		return err
	}
	if err := writeElement(w, bh.MerkleRoot); err != nil {
		return err
	}
	if err := writeElement(w, bh.LightClientRoot); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, uint64(bh.Timestamp)); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, bh.Bits); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, bh.Nonce)
}

// BtcDecode reads a header as it appears inside a headers message: the
// fixed fields followed by the trailing (always zero) transaction count.
func (bh *BlockHeader) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, pver, bh); err != nil {
		return err
	}
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	bh.TxnCount = count
	return nil
}

// BtcEncode writes a header as it appears inside a headers message.
func (bh *BlockHeader) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeader(w, pver, bh); err != nil {
		return err
	}
	return WriteVarInt(w, pver, bh.TxnCount)
}

// NewBlockHeader returns a new BlockHeader populated with the given
// fields and a zero timestamp, ready to be filled in further.
func NewBlockHeader(version int32, prevBlock, merkleRoot, lightClientRoot *chainhash.Hash, bits, nonce uint32) *BlockHeader {
	return &BlockHeader{
		Version:         version,
		PrevBlock:       *prevBlock,
		MerkleRoot:      *merkleRoot,
		LightClientRoot: *lightClientRoot,
		Bits:            bits,
		Nonce:           nonce,
	}
}
