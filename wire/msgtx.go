package wire

import (
	"io"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
)

// Transaction version numbers understood by this package, keyed by
// (version, overwintered) as carried in the packed 32-bit version header.
const (
	TxVersion1 = 1
	TxVersion2 = 2
	TxVersion3 = 3
	TxVersion4 = 4
)

const overwinterFlag = 1 << 31

// maxTxInPerMessage / maxTxOutPerMessage bound the number of inputs and
// outputs a single transaction may declare, keeping a corrupt VarInt
// count from forcing an unbounded allocation.
const (
	maxTxInPerMessage      = 1_000_000
	maxTxOutPerMessage     = 1_000_000
	maxJoinSplitPerMessage = 1_000_000
	maxShieldedPerMessage  = 1_000_000
)

// OutPoint defines a reference to a previous transaction output.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

func readTxIn(r io.Reader, pver uint32, ti *TxIn) error {
	if err := readElement(r, &ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	index, err := readUint32(r)
	if err != nil {
		return err
	}
	ti.PreviousOutPoint.Index = index

	script, err := ReadVarBytes(r, pver, MaxMessagePayload, "signature script")
	if err != nil {
		return err
	}
	ti.SignatureScript = script

	seq, err := readUint32(r)
	if err != nil {
		return err
	}
	ti.Sequence = seq

	return nil
}

func writeTxIn(w io.Writer, pver uint32, ti *TxIn) error {
	if err := writeElement(w, ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, ti.PreviousOutPoint.Index); err != nil {
		return err
	}
	if err := WriteVarBytes(w, pver, ti.SignatureScript); err != nil {
		return err
	}
	return binarySerializer.PutUint32(w, ti.Sequence)
}

// TxOut defines a transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

func readTxOut(r io.Reader, pver uint32, to *TxOut) error {
	value, err := readUint64(r)
	if err != nil {
		return err
	}
	to.Value = int64(value)

	script, err := ReadVarBytes(r, pver, MaxMessagePayload, "pk script")
	if err != nil {
		return err
	}
	to.PkScript = script
	return nil
}

func writeTxOut(w io.Writer, pver uint32, to *TxOut) error {
	if err := binarySerializer.PutUint64(w, uint64(to.Value)); err != nil {
		return err
	}
	return WriteVarBytes(w, pver, to.PkScript)
}

// MaxMessagePayload bounds individual variable-length fields inside a
// transaction so a corrupt length prefix cannot force an unbounded read.
const MaxMessagePayload = DefaultMaxMessagePayload

// ZKProofKind distinguishes the two JoinSplit proof systems used across
// the supported transaction versions.
type ZKProofKind uint8

// Known proof system kinds.
const (
	ZKProofBCTV14 ZKProofKind = iota
	ZKProofGroth16
)

const (
	bctv14ProofSize  = 296
	groth16ProofSize = 192
)

// JoinSplit describes a single Sprout JoinSplit description, common to
// transaction versions 2 through 4 (with the proof system varying by
// version).
type JoinSplit struct {
	PubOld         uint64
	PubNew         uint64
	Anchor         [32]byte
	Nullifiers     [64]byte
	Commitments    [64]byte
	EphemeralKey   [32]byte
	RandomSeed     [32]byte
	Vmacs          [64]byte
	ProofKind      ZKProofKind
	Zkproof        []byte
	EncCiphertexts [1202]byte
}

func readJoinSplit(r io.Reader, kind ZKProofKind) (*JoinSplit, error) {
	js := &JoinSplit{ProofKind: kind}

	pubOld, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	js.PubOld = pubOld

	pubNew, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	js.PubNew = pubNew

	for _, field := range []([]byte){js.Anchor[:], js.Nullifiers[:], js.Commitments[:], js.EphemeralKey[:], js.RandomSeed[:], js.Vmacs[:]} {
		if _, err := io.ReadFull(r, field); err != nil {
			return nil, err
		}
	}

	proofSize := groth16ProofSize
	if kind == ZKProofBCTV14 {
		proofSize = bctv14ProofSize
	}
	proof, err := readNBytes(r, proofSize)
	if err != nil {
		return nil, err
	}
	js.Zkproof = proof

	if _, err := io.ReadFull(r, js.EncCiphertexts[:]); err != nil {
		return nil, err
	}

	return js, nil
}

func writeJoinSplit(w io.Writer, js *JoinSplit) error {
	if err := binarySerializer.PutUint64(w, js.PubOld); err != nil {
		return err
	}
	if err := binarySerializer.PutUint64(w, js.PubNew); err != nil {
		return err
	}
	for _, field := range [][]byte{js.Anchor[:], js.Nullifiers[:], js.Commitments[:], js.EphemeralKey[:], js.RandomSeed[:], js.Vmacs[:]} {
		if _, err := w.Write(field); err != nil {
			return err
		}
	}
	if _, err := w.Write(js.Zkproof); err != nil {
		return err
	}
	_, err := w.Write(js.EncCiphertexts[:])
	return err
}

// SpendDescription describes a single Sapling spend, present only in
// version 4 transactions. Its proof system is always Groth16.
type SpendDescription struct {
	CV           [32]byte
	Anchor       [32]byte
	Nullifier    [32]byte
	RK           [32]byte
	Zkproof      [groth16ProofSize]byte
	SpendAuthSig [64]byte
}

func readSpendDescription(r io.Reader, sd *SpendDescription) error {
	for _, field := range [][]byte{sd.CV[:], sd.Anchor[:], sd.Nullifier[:], sd.RK[:], sd.Zkproof[:], sd.SpendAuthSig[:]} {
		if _, err := io.ReadFull(r, field); err != nil {
			return err
		}
	}
	return nil
}

func writeSpendDescription(w io.Writer, sd *SpendDescription) error {
	for _, field := range [][]byte{sd.CV[:], sd.Anchor[:], sd.Nullifier[:], sd.RK[:], sd.Zkproof[:], sd.SpendAuthSig[:]} {
		if _, err := w.Write(field); err != nil {
			return err
		}
	}
	return nil
}

// SaplingOutput describes a single Sapling output, present only in
// version 4 transactions.
type SaplingOutput struct {
	CV            [32]byte
	CMU           [32]byte
	EphemeralKey  [32]byte
	EncCiphertext [580]byte
	OutCiphertext [80]byte
	Zkproof       [groth16ProofSize]byte
}

func readSaplingOutput(r io.Reader, so *SaplingOutput) error {
	for _, field := range [][]byte{so.CV[:], so.CMU[:], so.EphemeralKey[:], so.EncCiphertext[:], so.OutCiphertext[:], so.Zkproof[:]} {
		if _, err := io.ReadFull(r, field); err != nil {
			return err
		}
	}
	return nil
}

func writeSaplingOutput(w io.Writer, so *SaplingOutput) error {
	for _, field := range [][]byte{so.CV[:], so.CMU[:], so.EphemeralKey[:], so.EncCiphertext[:], so.OutCiphertext[:], so.Zkproof[:]} {
		if _, err := w.Write(field); err != nil {
			return err
		}
	}
	return nil
}

// MsgTx implements the Message interface and represents a single Zcash
// transaction in any of versions 1 through 4. Fields that do not apply to
// a given version are left at their zero value; BtcEncode/BtcDecode gate
// which fields are read or written based on Version/Overwintered.
type MsgTx struct {
	Version      uint32
	Overwintered bool
	GroupID      uint32

	TxIn  []*TxIn
	TxOut []*TxOut

	LockTime     uint32
	ExpiryHeight uint32

	ValueBalanceSapling int64
	SpendsSapling       []*SpendDescription
	OutputsSapling      []*SaplingOutput

	JoinSplits      []*JoinSplit
	JoinSplitPubKey [32]byte
	JoinSplitSig    [32]byte

	BindingSigSapling [64]byte
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	header, err := readUint32(r)
	if err != nil {
		return err
	}
	version := header &^ overwinterFlag
	overwintered := header&overwinterFlag != 0

	switch {
	case version == TxVersion1 && !overwintered:
	case version == TxVersion2 && !overwintered:
	case version == TxVersion3 && overwintered:
	case version == TxVersion4 && overwintered:
	default:
		return messageErrorf("MsgTx.BtcDecode", "unsupported transaction version %d (overwintered=%v)",
			version, overwintered)
	}

	msg.Version = version
	msg.Overwintered = overwintered

	if version >= TxVersion3 {
		groupID, err := readUint32(r)
		if err != nil {
			return err
		}
		msg.GroupID = groupID
	}

	txInCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if txInCount > maxTxInPerMessage {
		return messageErrorf("MsgTx.BtcDecode", "too many transaction inputs [count %d, max %d]", txInCount, maxTxInPerMessage)
	}
	msg.TxIn = make([]*TxIn, 0, txInCount)
	for i := uint64(0); i < txInCount; i++ {
		ti := &TxIn{}
		if err := readTxIn(r, pver, ti); err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, ti)
	}

	txOutCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	if txOutCount > maxTxOutPerMessage {
		return messageErrorf("MsgTx.BtcDecode", "too many transaction outputs [count %d, max %d]", txOutCount, maxTxOutPerMessage)
	}
	msg.TxOut = make([]*TxOut, 0, txOutCount)
	for i := uint64(0); i < txOutCount; i++ {
		to := &TxOut{}
		if err := readTxOut(r, pver, to); err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, to)
	}

	lockTime, err := readUint32(r)
	if err != nil {
		return err
	}
	msg.LockTime = lockTime

	if version >= TxVersion3 {
		expiry, err := readUint32(r)
		if err != nil {
			return err
		}
		msg.ExpiryHeight = expiry
	}

	if version == TxVersion4 {
		valueBalance, err := readUint64(r)
		if err != nil {
			return err
		}
		msg.ValueBalanceSapling = int64(valueBalance)

		spendCount, err := ReadVarInt(r, pver)
		if err != nil {
			return err
		}
		if spendCount > maxShieldedPerMessage {
			return messageErrorf("MsgTx.BtcDecode", "too many sapling spends [count %d, max %d]", spendCount, maxShieldedPerMessage)
		}
		msg.SpendsSapling = make([]*SpendDescription, 0, spendCount)
		for i := uint64(0); i < spendCount; i++ {
			sd := &SpendDescription{}
			if err := readSpendDescription(r, sd); err != nil {
				return err
			}
			msg.SpendsSapling = append(msg.SpendsSapling, sd)
		}

		outputCount, err := ReadVarInt(r, pver)
		if err != nil {
			return err
		}
		if outputCount > maxShieldedPerMessage {
			return messageErrorf("MsgTx.BtcDecode", "too many sapling outputs [count %d, max %d]", outputCount, maxShieldedPerMessage)
		}
		msg.OutputsSapling = make([]*SaplingOutput, 0, outputCount)
		for i := uint64(0); i < outputCount; i++ {
			so := &SaplingOutput{}
			if err := readSaplingOutput(r, so); err != nil {
				return err
			}
			msg.OutputsSapling = append(msg.OutputsSapling, so)
		}
	}

	if version >= TxVersion2 {
		joinSplitCount, err := ReadVarInt(r, pver)
		if err != nil {
			return err
		}
		if joinSplitCount > maxJoinSplitPerMessage {
			return messageErrorf("MsgTx.BtcDecode", "too many joinsplits [count %d, max %d]", joinSplitCount, maxJoinSplitPerMessage)
		}

		proofKind := ZKProofGroth16
		if version < TxVersion4 {
			proofKind = ZKProofBCTV14
		}

		msg.JoinSplits = make([]*JoinSplit, 0, joinSplitCount)
		for i := uint64(0); i < joinSplitCount; i++ {
			js, err := readJoinSplit(r, proofKind)
			if err != nil {
				return err
			}
			msg.JoinSplits = append(msg.JoinSplits, js)
		}

		if len(msg.JoinSplits) > 0 {
			if _, err := io.ReadFull(r, msg.JoinSplitPubKey[:]); err != nil {
				return err
			}
			if _, err := io.ReadFull(r, msg.JoinSplitSig[:]); err != nil {
				return err
			}
		}
	}

	if version == TxVersion4 && (len(msg.SpendsSapling) > 0 || len(msg.OutputsSapling) > 0) {
		if _, err := io.ReadFull(r, msg.BindingSigSapling[:]); err != nil {
			return err
		}
	}

	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	header := msg.Version
	if msg.Overwintered {
		header |= overwinterFlag
	}
	if err := binarySerializer.PutUint32(w, header); err != nil {
		return err
	}

	if msg.Version >= TxVersion3 {
		if err := binarySerializer.PutUint32(w, msg.GroupID); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, pver, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeTxOut(w, pver, to); err != nil {
			return err
		}
	}

	if err := binarySerializer.PutUint32(w, msg.LockTime); err != nil {
		return err
	}

	if msg.Version >= TxVersion3 {
		if err := binarySerializer.PutUint32(w, msg.ExpiryHeight); err != nil {
			return err
		}
	}

	if msg.Version == TxVersion4 {
		if err := binarySerializer.PutUint64(w, uint64(msg.ValueBalanceSapling)); err != nil {
			return err
		}

		if err := WriteVarInt(w, pver, uint64(len(msg.SpendsSapling))); err != nil {
			return err
		}
		for _, sd := range msg.SpendsSapling {
			if err := writeSpendDescription(w, sd); err != nil {
				return err
			}
		}

		if err := WriteVarInt(w, pver, uint64(len(msg.OutputsSapling))); err != nil {
			return err
		}
		for _, so := range msg.OutputsSapling {
			if err := writeSaplingOutput(w, so); err != nil {
				return err
			}
		}
	}

	if msg.Version >= TxVersion2 {
		if err := WriteVarInt(w, pver, uint64(len(msg.JoinSplits))); err != nil {
			return err
		}
		for _, js := range msg.JoinSplits {
			if err := writeJoinSplit(w, js); err != nil {
				return err
			}
		}

		if len(msg.JoinSplits) > 0 {
			if _, err := w.Write(msg.JoinSplitPubKey[:]); err != nil {
				return err
			}
			if _, err := w.Write(msg.JoinSplitSig[:]); err != nil {
				return err
			}
		}
	}

	if msg.Version == TxVersion4 && (len(msg.SpendsSapling) > 0 || len(msg.OutputsSapling) > 0) {
		if _, err := w.Write(msg.BindingSigSapling[:]); err != nil {
			return err
		}
	}

	return nil
}

// Command returns the protocol command string for the message.
func (msg *MsgTx) Command() string { return CmdTx }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 {
	return DefaultMaxMessagePayload
}

// TxHash returns the double-SHA256 hash of the transaction's encoded
// form, matching the convention used throughout the Bitcoin-derived
// protocol family for transaction identifiers.
func (msg *MsgTx) TxHash() (chainhash.Hash, error) {
	var buf writeCounter
	if err := msg.BtcEncode(&buf, 0); err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.HashH(buf.bytes), nil
}

type writeCounter struct {
	bytes []byte
}

func (wc *writeCounter) Write(p []byte) (int, error) {
	wc.bytes = append(wc.bytes, p...)
	return len(p), nil
}

// NewMsgTx returns a new transaction message of the given version. Only
// the fields that version actually serializes are given a non-nil
// zero-value slice, matching what BtcDecode produces for an empty
// message of the same version.
func NewMsgTx(version uint32, overwintered bool) *MsgTx {
	tx := &MsgTx{
		Version:      version,
		Overwintered: overwintered,
		TxIn:         make([]*TxIn, 0),
		TxOut:        make([]*TxOut, 0),
	}

	if version >= TxVersion2 {
		tx.JoinSplits = make([]*JoinSplit, 0)
	}
	if version == TxVersion4 {
		tx.SpendsSapling = make([]*SpendDescription, 0)
		tx.OutputsSapling = make([]*SaplingOutput, 0)
	}

	return tx
}
