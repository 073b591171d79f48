package wire

import "io"

// MsgBlock implements the Message interface and represents a full block:
// a BlockHeader whose trailing count is the real number of transactions
// that immediately follow it.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// BtcDecode decodes r using the wire protocol encoding into the receiver.
func (msg *MsgBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, pver, &msg.Header); err != nil {
		return err
	}

	txCount, err := ReadVarInt(r, pver)
	if err != nil {
		return err
	}
	msg.Header.TxnCount = txCount

	if txCount > maxTxInPerMessage {
		return messageErrorf("MsgBlock.BtcDecode", "too many transactions for message [count %d, max %d]",
			txCount, maxTxInPerMessage)
	}

	msg.Transactions = make([]*MsgTx, 0, txCount)
	for i := uint64(0); i < txCount; i++ {
		tx := &MsgTx{}
		if err := tx.BtcDecode(r, pver); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, tx)
	}

	return nil
}

// BtcEncode encodes the receiver to w using the wire protocol encoding.
func (msg *MsgBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeader(w, pver, &msg.Header); err != nil {
		return err
	}

	if err := WriteVarInt(w, pver, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.BtcEncode(w, pver); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for the message.
func (msg *MsgBlock) Command() string { return CmdBlock }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver.
func (msg *MsgBlock) MaxPayloadLength(pver uint32) uint32 {
	return DefaultMaxMessagePayload
}

// AddTransaction appends tx to the block, keeping Header.TxnCount in
// sync.
func (msg *MsgBlock) AddTransaction(tx *MsgTx) {
	msg.Transactions = append(msg.Transactions, tx)
	msg.Header.TxnCount = uint64(len(msg.Transactions))
}

// NewMsgBlock returns a new block message built around the given header.
func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{
		Header:       *header,
		Transactions: make([]*MsgTx, 0),
	}
}
