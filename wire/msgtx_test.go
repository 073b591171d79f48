package wire

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func txRoundTrip(t *testing.T, tx *MsgTx) *MsgTx {
	t.Helper()

	var buf bytes.Buffer
	if err := tx.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	got := &MsgTx{}
	if err := got.BtcDecode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}
	return got
}

func TestEmptyTxV1RoundTrip(t *testing.T) {
	tx := NewMsgTx(TxVersion1, false)
	tx.LockTime = 500000000

	got := txRoundTrip(t, tx)
	if !reflect.DeepEqual(tx, got) {
		t.Errorf("mismatch - got %v, want %v", spew.Sdump(got), spew.Sdump(tx))
	}
}

func TestEmptyTxV2RoundTrip(t *testing.T) {
	tx := NewMsgTx(TxVersion2, false)
	tx.LockTime = 500000000

	got := txRoundTrip(t, tx)
	if !reflect.DeepEqual(tx, got) {
		t.Errorf("mismatch - got %v, want %v", spew.Sdump(got), spew.Sdump(tx))
	}
}

func TestEmptyTxV3RoundTrip(t *testing.T) {
	tx := NewMsgTx(TxVersion3, true)
	tx.LockTime = 500000000
	tx.ExpiryHeight = 500000000

	got := txRoundTrip(t, tx)
	if !reflect.DeepEqual(tx, got) {
		t.Errorf("mismatch - got %v, want %v", spew.Sdump(got), spew.Sdump(tx))
	}
}

func TestEmptyTxV4RoundTrip(t *testing.T) {
	tx := NewMsgTx(TxVersion4, true)
	tx.LockTime = 500000000
	tx.ExpiryHeight = 500000000

	got := txRoundTrip(t, tx)
	if !reflect.DeepEqual(tx, got) {
		t.Errorf("mismatch - got %v, want %v", spew.Sdump(got), spew.Sdump(tx))
	}
}

func TestTxV2WithJoinSplitRoundTrip(t *testing.T) {
	tx := NewMsgTx(TxVersion2, false)
	tx.LockTime = 1

	js := &JoinSplit{ProofKind: ZKProofBCTV14, Zkproof: make([]byte, bctv14ProofSize)}
	tx.JoinSplits = append(tx.JoinSplits, js)

	got := txRoundTrip(t, tx)
	if !reflect.DeepEqual(tx, got) {
		t.Errorf("mismatch - got %v, want %v", spew.Sdump(got), spew.Sdump(tx))
	}
	if got.JoinSplits[0].ProofKind != ZKProofBCTV14 {
		t.Errorf("expected BCTV14 proof kind to be decoded for a v2 transaction")
	}
}

func TestTxV4WithSaplingRoundTrip(t *testing.T) {
	tx := NewMsgTx(TxVersion4, true)
	tx.LockTime = 1
	tx.ExpiryHeight = 2
	tx.ValueBalanceSapling = -100

	tx.SpendsSapling = append(tx.SpendsSapling, &SpendDescription{})
	tx.OutputsSapling = append(tx.OutputsSapling, &SaplingOutput{})

	js := &JoinSplit{ProofKind: ZKProofGroth16, Zkproof: make([]byte, groth16ProofSize)}
	tx.JoinSplits = append(tx.JoinSplits, js)

	got := txRoundTrip(t, tx)
	if !reflect.DeepEqual(tx, got) {
		t.Errorf("mismatch - got %v, want %v", spew.Sdump(got), spew.Sdump(tx))
	}
	if got.JoinSplits[0].ProofKind != ZKProofGroth16 {
		t.Errorf("expected Groth16 proof kind to be decoded for a v4 transaction")
	}
}

func TestDecodeUnknownVersionIsInvalidData(t *testing.T) {
	var buf bytes.Buffer
	// version 5, overwintered: not yet stabilised and therefore rejected.
	header := uint32(5) | overwinterFlag
	if err := binarySerializer.PutUint32(&buf, header); err != nil {
		t.Fatalf("PutUint32: %v", err)
	}

	tx := &MsgTx{}
	if err := tx.BtcDecode(&buf, ProtocolVersion); err == nil {
		t.Fatal("expected an unknown (version, overwintered) pair to be rejected")
	}
}
