package wire

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
)

// blockHeaderVector is a hand-assembled headers-message header: version 1,
// a prev-block hash whose first byte is 0xab, zero merkle and light-client
// roots, timestamp 1477641360 as an 8-byte little-endian integer, bits
// 0x1d00ffff, nonce 7, and a zero transaction count. Field order and
// widths are fixed by the protocol, independent of this package's encoder.
const blockHeaderVector = "01000000" + // version
	"ab00000000000000000000000000000000000000000000000000000000000000" + // prev block
	"0000000000000000000000000000000000000000000000000000000000000000" + // merkle root
	"0000000000000000000000000000000000000000000000000000000000000000" + // light client root
	"9004135800000000" + // timestamp, 8 bytes LE
	"ffff001d" + // bits
	"07000000" + // nonce
	"00" // txn count

func TestBlockHeaderWireLayout(t *testing.T) {
	want, err := hex.DecodeString(blockHeaderVector)
	if err != nil {
		t.Fatalf("decoding vector: %v", err)
	}
	if len(want) != blockHeaderLen+1 {
		t.Fatalf("vector is %d bytes, want blockHeaderLen+1 = %d", len(want), blockHeaderLen+1)
	}

	prev := &chainhash.Hash{0xab}
	hdr := NewBlockHeader(1, prev, &chainhash.Hash{}, &chainhash.Hash{}, 0x1d00ffff, 7)
	hdr.Timestamp = 1477641360

	var buf bytes.Buffer
	if err := hdr.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("encoded header does not match the fixed vector\n got %x\nwant %x", buf.Bytes(), want)
	}

	got := &BlockHeader{}
	if err := got.BtcDecode(bytes.NewReader(want), ProtocolVersion); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}
	if got.Timestamp != 1477641360 {
		t.Errorf("Timestamp = %d, want 1477641360", got.Timestamp)
	}
	if got.Nonce != 7 {
		t.Errorf("Nonce = %d, want 7", got.Nonce)
	}
	if got.PrevBlock != *prev {
		t.Errorf("PrevBlock = %v, want %v", got.PrevBlock, prev)
	}
}
