package wire

import (
	"bytes"
	"testing"
)

func TestFilterAddBoundary(t *testing.T) {
	ok := NewMsgFilterAdd(make([]byte, MaxFilterAddDataSize))
	var buf bytes.Buffer
	if err := ok.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("encoding %d bytes should succeed: %v", MaxFilterAddDataSize, err)
	}

	tooBig := NewMsgFilterAdd(make([]byte, MaxFilterAddDataSize+1))
	buf.Reset()
	if err := tooBig.BtcEncode(&buf, ProtocolVersion); err == nil {
		t.Fatalf("encoding %d bytes should fail", MaxFilterAddDataSize+1)
	}
}

func TestFilterAddDecodeBoundary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarBytes(&buf, ProtocolVersion, make([]byte, MaxFilterAddDataSize)); err != nil {
		t.Fatalf("WriteVarBytes: %v", err)
	}
	if err := (&MsgFilterAdd{}).BtcDecode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("decoding %d bytes should succeed: %v", MaxFilterAddDataSize, err)
	}

	buf.Reset()
	if err := WriteVarBytes(&buf, ProtocolVersion, make([]byte, MaxFilterAddDataSize+1)); err != nil {
		t.Fatalf("WriteVarBytes: %v", err)
	}
	if err := (&MsgFilterAdd{}).BtcDecode(&buf, ProtocolVersion); err == nil {
		t.Fatalf("decoding %d bytes should fail", MaxFilterAddDataSize+1)
	}
}

func TestFilterLoadDecodeBoundary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarBytes(&buf, ProtocolVersion, make([]byte, MaxFilterLoadFilterSize+1)); err != nil {
		t.Fatalf("WriteVarBytes: %v", err)
	}
	if err := (&MsgFilterLoad{}).BtcDecode(&buf, ProtocolVersion); err == nil {
		t.Fatalf("decoding a %d-byte filter should fail", MaxFilterLoadFilterSize+1)
	}
}

func TestFilterLoadBoundary(t *testing.T) {
	ok := NewMsgFilterLoad(make([]byte, MaxFilterLoadFilterSize), 5, 0, BloomUpdateAll)
	var buf bytes.Buffer
	if err := ok.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("encoding %d bytes should succeed: %v", MaxFilterLoadFilterSize, err)
	}

	tooBig := NewMsgFilterLoad(make([]byte, MaxFilterLoadFilterSize+1), 5, 0, BloomUpdateAll)
	buf.Reset()
	if err := tooBig.BtcEncode(&buf, ProtocolVersion); err == nil {
		t.Fatalf("encoding %d bytes should fail", MaxFilterLoadFilterSize+1)
	}
}

func TestFilterLoadRoundTrip(t *testing.T) {
	msg := NewMsgFilterLoad([]byte{1, 2, 3, 4}, 11, 0xdeadbeef, BloomUpdateP2PubkeyOnly)

	var buf bytes.Buffer
	if err := msg.BtcEncode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcEncode: %v", err)
	}

	got := &MsgFilterLoad{}
	if err := got.BtcDecode(&buf, ProtocolVersion); err != nil {
		t.Fatalf("BtcDecode: %v", err)
	}

	if got.HashFuncs != msg.HashFuncs || got.Tweak != msg.Tweak || got.Flags != msg.Flags {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, msg)
	}
	if !bytes.Equal(got.Filter, msg.Filter) {
		t.Errorf("filter mismatch: got %x, want %x", got.Filter, msg.Filter)
	}
}
