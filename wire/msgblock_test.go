package wire

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
)

func TestMsgHeadersTxnCountIsZeroPlaceholder(t *testing.T) {
	hdr := NewBlockHeader(1, &chainhash.Hash{}, &chainhash.Hash{}, &chainhash.Hash{}, 0x1d00ffff, 0)

	headers := NewMsgHeaders()
	if err := headers.AddBlockHeader(hdr); err != nil {
		t.Fatalf("AddBlockHeader: %v", err)
	}

	var buf bytes.Buffer
	if err := headers.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	got := &MsgHeaders{}
	if err := got.BtcDecode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}

	if got.Headers[0].TxnCount != 0 {
		t.Errorf("expected the placeholder transaction count to be zero, got %d", got.Headers[0].TxnCount)
	}
	if !reflect.DeepEqual(headers, got) {
		t.Errorf("mismatch - got %v, want %v", spew.Sdump(got), spew.Sdump(headers))
	}
}

func TestMsgBlockTxnCountTracksTransactions(t *testing.T) {
	hdr := NewBlockHeader(1, &chainhash.Hash{}, &chainhash.Hash{}, &chainhash.Hash{}, 0x1d00ffff, 0)
	block := NewMsgBlock(hdr)

	tx := NewMsgTx(TxVersion1, false)
	tx.LockTime = 1
	block.AddTransaction(tx)

	if block.Header.TxnCount != 1 {
		t.Fatalf("expected header transaction count to track added transactions, got %d", block.Header.TxnCount)
	}

	var buf bytes.Buffer
	if err := block.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	got := &MsgBlock{}
	if err := got.BtcDecode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}

	if len(got.Transactions) != 1 {
		t.Fatalf("expected 1 decoded transaction, got %d", len(got.Transactions))
	}
	if !reflect.DeepEqual(block.Transactions[0], got.Transactions[0]) {
		t.Errorf("transaction mismatch - got %v, want %v",
			spew.Sdump(got.Transactions[0]), spew.Sdump(block.Transactions[0]))
	}
}
