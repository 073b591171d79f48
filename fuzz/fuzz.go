// Package fuzz generates corrupted and malformed wire messages for the
// resistance properties exercised against a synthetic peer connection: bad
// checksums, bad declared lengths, random noise standing in for a message,
// and messages with a valid header wrapped around a random payload.
package fuzz

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"net"

	"github.com/excc-labs/zconform/wire"
)

// CorruptionProbability is the per-byte chance that SlightlyCorrupt replaces
// a byte with a random one.
const CorruptionProbability = 0.5

// maxRandomPayload bounds the length of payloads generated by RandomBytes
// and MetadataCompliantRandomBytes.
const maxRandomPayload = 64 * 1024

// New returns a *rand.Rand seeded with seed, so a fuzz run can be replayed
// by logging the seed that produced it.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// DefaultMessages returns the pool of message kinds used by the resistance
// properties: Version, MemPool, Verack, Ping, Pong, GetAddr, Addr, Headers,
// GetHeaders, GetBlocks, GetData, Inv, NotFound, each carrying the emptiest
// payload its type allows.
func DefaultMessages() []wire.Message {
	recv := wire.NetAddress{IP: net.IPv4(127, 0, 0, 1)}
	from := wire.NetAddress{IP: net.IPv4(127, 0, 0, 1)}

	return []wire.Message{
		wire.NewMsgVersion(recv, from, 0, 0),
		wire.NewMsgMemPool(),
		wire.NewMsgVerAck(),
		wire.NewMsgPing(0),
		wire.NewMsgPong(0),
		wire.NewMsgGetAddr(),
		wire.NewMsgAddr(),
		wire.NewMsgHeaders(),
		wire.NewMsgGetHeaders(),
		wire.NewMsgGetBlocks(),
		wire.NewMsgGetData(),
		wire.NewMsgInv(),
		wire.NewMsgNotFound(),
	}
}

// Zeroes returns n byte slices of random length (1 up to twice the default
// max message payload), each entirely zero-filled.
func Zeroes(rng *rand.Rand, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		length := 1 + rng.Intn(2*wire.DefaultMaxMessagePayload-1)
		out[i] = make([]byte, length)
	}
	return out
}

// RandomBytes returns n byte slices of random length (1 up to 64 KiB) filled
// with uniformly random bytes.
func RandomBytes(rng *rand.Rand, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		length := 1 + rng.Intn(maxRandomPayload-1)
		buf := make([]byte, length)
		rng.Read(buf)
		out[i] = buf
	}
	return out
}

// MetadataCompliantRandomBytes returns n encoded messages whose header
// declares a command drawn from commands and a correct length and checksum
// for a payload of random bytes rather than an encoding of that command's
// message type.
func MetadataCompliantRandomBytes(rng *rand.Rand, n int, commands []string, magic wire.ProtocolMagic) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		length := 1 + rng.Intn(maxRandomPayload-1)
		payload := make([]byte, length)
		rng.Read(payload)

		command := commands[rng.Intn(len(commands))]
		out[i] = encodeRaw(magic, command, payload)
	}
	return out
}

// SlightlyCorrupt encodes n messages chosen at random from messages, then
// replaces roughly half of each one's bytes (header and payload alike) with
// random bytes.
func SlightlyCorrupt(rng *rand.Rand, n int, messages []wire.Message, pver uint32, magic wire.ProtocolMagic) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		msg := messages[rng.Intn(len(messages))]

		var buf bytes.Buffer
		if _, err := wire.WriteMessageN(&buf, msg, pver, magic); err != nil {
			panic(err)
		}
		out[i] = corruptBytes(rng, buf.Bytes())
	}
	return out
}

func corruptBytes(rng *rand.Rand, b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	for i := range out {
		if rng.Float64() < CorruptionProbability {
			out[i] = byte(rng.Intn(256))
		}
	}
	return out
}

// CorruptChecksum encodes msg and replaces its checksum with a different,
// still well-formed 4-byte value.
func CorruptChecksum(rng *rand.Rand, msg wire.Message, pver uint32, magic wire.ProtocolMagic) []byte {
	var buf bytes.Buffer
	if _, err := wire.WriteMessageN(&buf, msg, pver, magic); err != nil {
		panic(err)
	}
	raw := buf.Bytes()

	offset := 4 + wire.CommandSize + 4
	valid := binary.LittleEndian.Uint32(raw[offset:])
	binary.LittleEndian.PutUint32(raw[offset:], randomNotEqual(rng, valid))
	return raw
}

// CorruptLength encodes msg and replaces its declared body length with a
// different value, either too small, too large, or simply wrong relative to
// the actual payload that follows.
func CorruptLength(rng *rand.Rand, msg wire.Message, pver uint32, magic wire.ProtocolMagic) []byte {
	var buf bytes.Buffer
	if _, err := wire.WriteMessageN(&buf, msg, pver, magic); err != nil {
		panic(err)
	}
	raw := buf.Bytes()

	offset := 4 + wire.CommandSize
	actual := uint32(len(raw) - wire.MessageHeaderSize)
	binary.LittleEndian.PutUint32(raw[offset:], randomNotEqual(rng, actual))
	return raw
}

func randomNotEqual(rng *rand.Rand, value uint32) uint32 {
	candidate := rng.Uint32()
	if candidate == value {
		candidate++
	}
	return candidate
}

func encodeRaw(magic wire.ProtocolMagic, command string, payload []byte) []byte {
	var cmdBuf [wire.CommandSize]byte
	copy(cmdBuf[:], command)

	buf := make([]byte, 0, wire.MessageHeaderSize+len(payload))
	buf = append(buf, magic[:]...)
	buf = append(buf, cmdBuf[:]...)

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	buf = append(buf, lenBuf[:]...)

	buf = append(buf, checksumOf(payload)...)
	buf = append(buf, payload...)
	return buf
}

func checksumOf(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}
