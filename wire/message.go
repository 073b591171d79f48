package wire

import (
	"bytes"
	"crypto/sha256"
	"io"
)

// CommandSize is the fixed width, in bytes, of a message's command field.
const CommandSize = 12

// MessageHeaderSize is the number of bytes in a wire message header: 4
// bytes magic, 12 bytes command, 4 bytes payload length, 4 bytes checksum.
const MessageHeaderSize = 4 + CommandSize + 4 + 4

// DefaultMaxMessagePayload is the default maximum payload size, in bytes,
// accepted by ReadMessageN for any single message.
const DefaultMaxMessagePayload = 2 * 1024 * 1024

// Command strings for every message kind this module encodes or decodes.
const (
	CmdVersion     = "version"
	CmdVerack      = "verack"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdGetAddr     = "getaddr"
	CmdAddr        = "addr"
	CmdGetHeaders  = "getheaders"
	CmdHeaders     = "headers"
	CmdGetBlocks   = "getblocks"
	CmdBlock       = "block"
	CmdGetData     = "getdata"
	CmdInv         = "inv"
	CmdNotFound    = "notfound"
	CmdMemPool     = "mempool"
	CmdTx          = "tx"
	CmdReject      = "reject"
	CmdFilterLoad  = "filterload"
	CmdFilterAdd   = "filteradd"
	CmdFilterClear = "filterclear"
)

// ProtocolMagic identifies the network a message belongs to.
type ProtocolMagic [4]byte

// TestnetMagic is the magic value used on the Zcash testnet.
var TestnetMagic = ProtocolMagic{0xfa, 0x1a, 0xf9, 0xbf}

// Message is implemented by every wire protocol message. It mirrors the
// BtcEncode/BtcDecode contract used throughout this codebase's wire
// package.
type Message interface {
	BtcEncode(w io.Writer, pver uint32) error
	BtcDecode(r io.Reader, pver uint32) error
	Command() string
	MaxPayloadLength(pver uint32) uint32
}

func checksum(payload []byte) [4]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	var out [4]byte
	copy(out[:], second[:4])
	return out
}

func encodeCommand(command string) ([CommandSize]byte, error) {
	var buf [CommandSize]byte
	if len(command) > CommandSize {
		return buf, messageErrorf("encodeCommand", "command %q longer than %d bytes", command, CommandSize)
	}
	copy(buf[:], command)
	return buf, nil
}

func decodeCommand(buf [CommandSize]byte) string {
	i := 0
	for i < CommandSize && buf[i] != 0 {
		i++
	}
	return string(buf[:i])
}

// writeMessageHeader writes a complete message header to w.
func writeMessageHeader(w io.Writer, magic ProtocolMagic, command string, length uint32, chksum [4]byte) error {
	cmdBuf, err := encodeCommand(command)
	if err != nil {
		return err
	}

	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if _, err := w.Write(cmdBuf[:]); err != nil {
		return err
	}
	if err := binarySerializer.PutUint32(w, length); err != nil {
		return err
	}
	_, err = w.Write(chksum[:])
	return err
}

// Header is the parsed form of the fixed 24-byte prefix framing every
// wire message.
type Header struct {
	Magic    ProtocolMagic
	Command  string
	Length   uint32
	Checksum [4]byte
}

// readMessageHeader reads and parses a message header from r without
// validating it against a particular network.
func readMessageHeader(r io.Reader) (*Header, error) {
	var magic ProtocolMagic
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}

	var cmdBuf [CommandSize]byte
	if _, err := io.ReadFull(r, cmdBuf[:]); err != nil {
		return nil, err
	}

	length, err := readUint32(r)
	if err != nil {
		return nil, err
	}

	var chksum [4]byte
	if _, err := io.ReadFull(r, chksum[:]); err != nil {
		return nil, err
	}

	return &Header{
		Magic:    magic,
		Command:  decodeCommand(cmdBuf),
		Length:   length,
		Checksum: chksum,
	}, nil
}

// DecodeHeader parses a message header from buf and verifies its network
// magic against magic.
func DecodeHeader(buf [MessageHeaderSize]byte, magic ProtocolMagic) (*Header, error) {
	hdr, err := readMessageHeader(bytes.NewReader(buf[:]))
	if err != nil {
		return nil, err
	}
	if hdr.Magic != magic {
		return nil, messageErrorf("DecodeHeader", "unexpected network magic %x, expected %x", hdr.Magic, magic)
	}
	return hdr, nil
}

// WriteMessageN writes a wire message to w, returning the number of bytes
// written. The message is framed with the given network magic.
func WriteMessageN(w io.Writer, msg Message, pver uint32, magic ProtocolMagic) (int, error) {
	var payload bytes.Buffer
	if err := msg.BtcEncode(&payload, pver); err != nil {
		return 0, err
	}

	body := payload.Bytes()
	maxPayload := msg.MaxPayloadLength(pver)
	if uint32(len(body)) > maxPayload {
		return 0, messageErrorf("WriteMessageN", "message payload is too large - encoded %d bytes, but maximum message payload is %d bytes",
			len(body), maxPayload)
	}

	var header bytes.Buffer
	if err := writeMessageHeader(&header, magic, msg.Command(), uint32(len(body)), checksum(body)); err != nil {
		return 0, err
	}

	n1, err := w.Write(header.Bytes())
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(body)
	return n1 + n2, err
}

// ReadMessageN reads, validates, and decodes the next wire message from r.
// It returns the number of bytes read, the decoded message, and the raw
// payload bytes (useful for checksum-sensitive fuzz/resistance tests).
func ReadMessageN(r io.Reader, pver uint32, magic ProtocolMagic, maxPayload uint32) (int, Message, []byte, error) {
	hdr, err := readMessageHeader(r)
	if err != nil {
		return 0, nil, nil, err
	}

	if hdr.Magic != magic {
		return MessageHeaderSize, nil, nil, messageErrorf("ReadMessageN", "unexpected network magic %x, expected %x", hdr.Magic, magic)
	}

	if maxPayload == 0 {
		maxPayload = DefaultMaxMessagePayload
	}
	if hdr.Length > maxPayload {
		return MessageHeaderSize, nil, nil, messageErrorf("ReadMessageN", "message payload is too large - header indicates %d bytes, but maximum message payload is %d bytes",
			hdr.Length, maxPayload)
	}

	payload, err := readNBytes(r, int(hdr.Length))
	if err != nil {
		return MessageHeaderSize, nil, nil, err
	}

	gotChecksum := checksum(payload)
	if gotChecksum != hdr.Checksum {
		return MessageHeaderSize + len(payload), nil, nil, messageErrorf("ReadMessageN", "payload checksum failed - header indicates %x, but actual checksum is %x",
			hdr.Checksum, gotChecksum)
	}

	msg, err := makeEmptyMessage(hdr.Command)
	if err != nil {
		return MessageHeaderSize + len(payload), nil, payload, err
	}

	if uint32(len(payload)) > msg.MaxPayloadLength(pver) {
		return MessageHeaderSize + len(payload), nil, payload, messageErrorf("ReadMessageN", "payload exceeds max length for command %q", hdr.Command)
	}

	payloadReader := bytes.NewReader(payload)
	if err := msg.BtcDecode(payloadReader, pver); err != nil {
		return MessageHeaderSize + len(payload), nil, payload, err
	}
	if payloadReader.Len() > 0 {
		return MessageHeaderSize + len(payload), nil, payload, messageErrorf("ReadMessageN", "payload for command %q has %d trailing byte(s) beyond the decoded message",
			hdr.Command, payloadReader.Len())
	}

	return MessageHeaderSize + len(payload), msg, payload, nil
}
