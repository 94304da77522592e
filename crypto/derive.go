package crypto

import (
	"encoding/binary"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// DeriveAddress computes the storage address of a named record. Each segment is
// length-prefixed before hashing so distinct (namespace, owners) tuples never
// collide on concatenation.
func DeriveAddress(namespace string, owners ...[]byte) [32]byte {
	size := 4 + len(namespace)
	for _, owner := range owners {
		size += 4 + len(owner)
	}
	buf := make([]byte, 0, size)
	buf = appendSegment(buf, []byte(namespace))
	for _, owner := range owners {
		buf = appendSegment(buf, owner)
	}
	return ethcrypto.Keccak256Hash(buf)
}

// DeriveIdentity returns a 20-byte identity owned by no key, such as the
// platform treasury.
func DeriveIdentity(namespace string, owners ...[]byte) [20]byte {
	hash := DeriveAddress(namespace, owners...)
	var id [20]byte
	copy(id[:], hash[12:])
	return id
}

// Uint64Bytes encodes a numeric record id as an owner segment.
func Uint64Bytes(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func appendSegment(buf, segment []byte) []byte {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(segment)))
	buf = append(buf, length[:]...)
	return append(buf, segment...)
}
