package vectors

import (
	"bytes"
	"testing"

	"github.com/excc-labs/zconform/wire"
)

// emptyBlockSize is the exact serialized size of each embedded block: a
// 4-byte version, three 32-byte hashes, an 8-byte timestamp, 4-byte bits,
// 4-byte nonce, and a single-byte zero transaction count. Pinned here as a
// literal so a codec that drifts from the protocol's field widths cannot
// silently regenerate matching-but-wrong vectors.
const emptyBlockSize = 4 + 3*32 + 8 + 4 + 4 + 1

func TestBlockRoundTripsForEveryHeight(t *testing.T) {
	for h := MinHeight; h <= MaxHeight; h++ {
		raw, err := Default.Block(h)
		if err != nil {
			t.Fatalf("height %d: Block: %v", h, err)
		}
		if len(raw) != emptyBlockSize {
			t.Fatalf("height %d: embedded block is %d bytes, want %d", h, len(raw), emptyBlockSize)
		}

		block := &wire.MsgBlock{}
		if err := block.BtcDecode(bytes.NewReader(raw), wire.ProtocolVersion); err != nil {
			t.Fatalf("height %d: BtcDecode: %v", h, err)
		}
		if len(block.Transactions) != 0 {
			t.Errorf("height %d: expected zero transactions, got %d", h, len(block.Transactions))
		}

		var reencoded bytes.Buffer
		if err := block.BtcEncode(&reencoded, wire.ProtocolVersion); err != nil {
			t.Fatalf("height %d: BtcEncode: %v", h, err)
		}
		if !bytes.Equal(reencoded.Bytes(), raw) {
			t.Errorf("height %d: re-encoding does not reproduce the embedded bytes", h)
		}
	}
}

func TestBlockRejectsOutOfRangeHeight(t *testing.T) {
	if _, err := Default.Block(MaxHeight + 1); err == nil {
		t.Error("expected an error for a height beyond MaxHeight")
	}
	if _, err := Default.Block(MinHeight - 1); err == nil {
		t.Error("expected an error for a height below MinHeight")
	}
}
