package wire

import (
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/EXCCoin/exccd/chaincfg/chainhash"
)

// binarySerializer provides helpers for writing fixed-width integers in
// little-endian byte order.
type binarySerializerType struct{}

var binarySerializer binarySerializerType

func (binarySerializerType) PutUint8(w io.Writer, val uint8) error {
	var buf [1]byte
	buf[0] = val
	_, err := w.Write(buf[:])
	return err
}

func (binarySerializerType) PutUint16(w io.Writer, val uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], val)
	_, err := w.Write(buf[:])
	return err
}

func (binarySerializerType) PutUint32(w io.Writer, val uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], val)
	_, err := w.Write(buf[:])
	return err
}

func (binarySerializerType) PutUint64(w io.Writer, val uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], val)
	_, err := w.Write(buf[:])
	return err
}

func readUint8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *bool:
		v, err := readUint8(r)
		if err != nil {
			return err
		}
		*e = v != 0
		return nil

	case *int32:
		v, err := readUint32(r)
		if err != nil {
			return err
		}
		*e = int32(v)
		return nil

	case *uint32:
		v, err := readUint32(r)
		if err != nil {
			return err
		}
		*e = v
		return nil

	case *int64:
		v, err := readUint64(r)
		if err != nil {
			return err
		}
		*e = int64(v)
		return nil

	case *uint64:
		v, err := readUint64(r)
		if err != nil {
			return err
		}
		*e = v
		return nil

	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return err

	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	}

	return messageError("readElement", "unsupported type")
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case bool:
		var v uint8
		if e {
			v = 1
		}
		return binarySerializer.PutUint8(w, v)

	case int32:
		return binarySerializer.PutUint32(w, uint32(e))

	case uint32:
		return binarySerializer.PutUint32(w, e)

	case int64:
		return binarySerializer.PutUint64(w, uint64(e))

	case uint64:
		return binarySerializer.PutUint64(w, e)

	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err

	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return err

	case [4]byte:
		_, err := w.Write(e[:])
		return err
	}

	return messageError("writeElement", "unsupported type")
}

// VarInt encoding follows the CompactSize convention shared by the
// Bitcoin-derived wire formats: values below 0xfd are a single byte,
// values up to 0xffff are prefixed with 0xfd, up to 0xffffffff with
// 0xfe, and the full uint64 range with 0xff.
const (
	varIntPrefix16 = 0xfd
	varIntPrefix32 = 0xfe
	varIntPrefix64 = 0xff
)

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64.
func ReadVarInt(r io.Reader, pver uint32) (uint64, error) {
	discriminant, err := readUint8(r)
	if err != nil {
		return 0, err
	}

	switch discriminant {
	case varIntPrefix64:
		v, err := readUint64(r)
		if err != nil {
			return 0, err
		}
		if v <= 0xffffffff {
			return 0, messageError("ReadVarInt", "non-canonical varint")
		}
		return v, nil

	case varIntPrefix32:
		v, err := readUint32(r)
		if err != nil {
			return 0, err
		}
		if uint64(v) <= 0xffff {
			return 0, messageError("ReadVarInt", "non-canonical varint")
		}
		return uint64(v), nil

	case varIntPrefix16:
		v, err := readUint16(r)
		if err != nil {
			return 0, err
		}
		if uint64(v) < varIntPrefix16 {
			return 0, messageError("ReadVarInt", "non-canonical varint")
		}
		return uint64(v), nil

	default:
		return uint64(discriminant), nil
	}
}

// WriteVarInt writes val to w using the variable length integer encoding.
func WriteVarInt(w io.Writer, pver uint32, val uint64) error {
	if val < varIntPrefix16 {
		return binarySerializer.PutUint8(w, uint8(val))
	}

	if val <= 0xffff {
		if err := binarySerializer.PutUint8(w, varIntPrefix16); err != nil {
			return err
		}
		return binarySerializer.PutUint16(w, uint16(val))
	}

	if val <= 0xffffffff {
		if err := binarySerializer.PutUint8(w, varIntPrefix32); err != nil {
			return err
		}
		return binarySerializer.PutUint32(w, uint32(val))
	}

	if err := binarySerializer.PutUint8(w, varIntPrefix64); err != nil {
		return err
	}
	return binarySerializer.PutUint64(w, val)
}

// VarIntSerializeSize returns the number of bytes it would take to
// serialize val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	if val < varIntPrefix16 {
		return 1
	}
	if val <= 0xffff {
		return 3
	}
	if val <= 0xffffffff {
		return 5
	}
	return 9
}

// ReadVarBytes reads a variable length byte array prefixed with its
// length as a VarInt, enforcing maxAllowed as an upper bound so a hostile
// peer cannot force an unbounded allocation.
func ReadVarBytes(r io.Reader, pver uint32, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r, pver)
	if err != nil {
		return nil, err
	}
	if count > uint64(maxAllowed) {
		return nil, messageErrorf("ReadVarBytes", "%s is larger than the max allowed size [count %d, max %d]",
			fieldName, count, maxAllowed)
	}

	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes writes a variable length byte array prefixed with its
// length as a VarInt.
func WriteVarBytes(w io.Writer, pver uint32, data []byte) error {
	if err := WriteVarInt(w, pver, uint64(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadVarString reads a variable length string prefixed with its length
// as a VarInt.
func ReadVarString(r io.Reader, pver uint32, maxAllowed uint32) (string, error) {
	b, err := ReadVarBytes(r, pver, maxAllowed, "variable length string")
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", messageErrorf("ReadVarString", "variable length string is not valid utf-8")
	}
	return string(b), nil
}

// WriteVarString writes a variable length string prefixed with its length
// as a VarInt.
func WriteVarString(w io.Writer, pver uint32, s string) error {
	return WriteVarBytes(w, pver, []byte(s))
}

// readNBytes reads exactly n bytes from r into a freshly allocated slice.
func readNBytes(r io.Reader, n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
