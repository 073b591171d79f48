package wire

import (
	"encoding/binary"
	"io"
	"net"
	"time"
)

// maxNetAddressPayload is the number of bytes a NetAddress occupies when
// serialized without a leading timestamp: 8 bytes services, 16 bytes
// IP, 2 bytes port.
const maxNetAddressPayload = 8 + 16 + 2

// NetAddress represents a network peer address as carried in version and
// addr messages: a services bitfield and an IPv4-mapped IPv6 address with
// a big-endian port, matching the wire encoding shared by the whole
// Bitcoin-derived protocol family.
type NetAddress struct {
	Timestamp time.Time
	Services  uint64
	IP        net.IP
	Port      uint16
}

func writeNetAddress(w io.Writer, pver uint32, na *NetAddress, withTimestamp bool) error {
	if withTimestamp {
		if err := binarySerializer.PutUint32(w, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}

	if err := binarySerializer.PutUint64(w, na.Services); err != nil {
		return err
	}

	var ip [16]byte
	if v4 := na.IP.To4(); v4 != nil {
		copy(ip[10:], []byte{0xff, 0xff})
		copy(ip[12:], v4)
	} else if v6 := na.IP.To16(); v6 != nil {
		copy(ip[:], v6)
	}
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}

	var portBuf [2]byte
	binary.BigEndian.PutUint16(portBuf[:], na.Port)
	_, err := w.Write(portBuf[:])
	return err
}

func readNetAddress(r io.Reader, pver uint32, na *NetAddress, withTimestamp bool) error {
	if withTimestamp {
		ts, err := readUint32(r)
		if err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(ts), 0)
	}

	services, err := readUint64(r)
	if err != nil {
		return err
	}
	na.Services = services

	var ip [16]byte
	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}
	if isIPv4Mapped(ip) {
		na.IP = net.IP(ip[12:16])
	} else {
		addr := make(net.IP, 16)
		copy(addr, ip[:])
		na.IP = addr
	}

	var portBuf [2]byte
	if _, err := io.ReadFull(r, portBuf[:]); err != nil {
		return err
	}
	na.Port = binary.BigEndian.Uint16(portBuf[:])

	return nil
}

func isIPv4Mapped(ip [16]byte) bool {
	for i := 0; i < 10; i++ {
		if ip[i] != 0 {
			return false
		}
	}
	return ip[10] == 0xff && ip[11] == 0xff
}
