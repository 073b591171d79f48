package wire

import (
	"io"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
)

// RejectCode represents a numeric code sent in a reject message
// explaining why a previous message was refused.
type RejectCode uint8

// Known reject codes, matching the Bitcoin-derived protocol family's
// conventions.
const (
	RejectMalformed       RejectCode = 0x01
	RejectInvalid         RejectCode = 0x10
	RejectObsolete        RejectCode = 0x11
	RejectDuplicate       RejectCode = 0x12
	RejectNonstandard     RejectCode = 0x40
	RejectDust            RejectCode = 0x41
	RejectInsufficientFee RejectCode = 0x42
	RejectCheckpoint      RejectCode = 0x43
)

const maxRejectReasonLen = 255

// maxRejectExtraLen bounds the trailing data a reject message may carry
// after its standard fields.
const maxRejectExtraLen = 1024

// MsgReject implements the Message interface and informs a peer that one
// of its messages was rejected, along with a human-readable reason.
type MsgReject struct {
	Cmd    string
	Code   RejectCode
	Reason string
	Hash   chainhash.Hash

	// ExtraData carries any bytes a peer appended after the standard
	// fields. Decoding consumes them rather than treating them as a
	// framing violation.
	ExtraData []byte
}

func (msg *MsgReject) BtcDecode(r io.Reader, pver uint32) error {
	cmd, err := ReadVarString(r, pver, CommandSize)
	if err != nil {
		return err
	}
	msg.Cmd = cmd

	code, err := readUint8(r)
	if err != nil {
		return err
	}
	msg.Code = RejectCode(code)

	reason, err := ReadVarString(r, pver, maxRejectReasonLen)
	if err != nil {
		return err
	}
	msg.Reason = reason

	if msg.Cmd == CmdBlock || msg.Cmd == CmdTx {
		if err := readElement(r, &msg.Hash); err != nil {
			return err
		}
	}

	extra, err := io.ReadAll(io.LimitReader(r, maxRejectExtraLen+1))
	if err != nil {
		return err
	}
	if len(extra) > maxRejectExtraLen {
		return messageErrorf("MsgReject.BtcDecode", "reject extra data too large [max %d]", maxRejectExtraLen)
	}
	if len(extra) > 0 {
		msg.ExtraData = extra
	}

	return nil
}

func (msg *MsgReject) BtcEncode(w io.Writer, pver uint32) error {
	if err := WriteVarString(w, pver, msg.Cmd); err != nil {
		return err
	}
	if err := binarySerializer.PutUint8(w, uint8(msg.Code)); err != nil {
		return err
	}
	if err := WriteVarString(w, pver, msg.Reason); err != nil {
		return err
	}

	if msg.Cmd == CmdBlock || msg.Cmd == CmdTx {
		if err := writeElement(w, msg.Hash); err != nil {
			return err
		}
	}

	if len(msg.ExtraData) > 0 {
		if _, err := w.Write(msg.ExtraData); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgReject) Command() string { return CmdReject }

func (msg *MsgReject) MaxPayloadLength(pver uint32) uint32 {
	return uint32(VarIntSerializeSize(CommandSize)) + CommandSize + 1 +
		uint32(VarIntSerializeSize(maxRejectReasonLen)) + maxRejectReasonLen +
		uint32(chainhash.HashSize) + maxRejectExtraLen
}

// NewMsgReject returns a new reject message.
func NewMsgReject(cmd string, code RejectCode, reason string) *MsgReject {
	return &MsgReject{Cmd: cmd, Code: code, Reason: reason}
}
