package peer

import (
	"crypto/rand"
	"encoding/binary"
)

// randomNonce returns a cryptographically random uint64 suitable for a
// Version or Ping nonce.
func randomNonce() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("peer: failed to read random nonce: " + err.Error())
	}
	return binary.LittleEndian.Uint64(b[:])
}
