// Package id implements the 160-bit node and key identifiers used throughout
// the Kademlia DHT: RIPEMD-160 generation, XOR distance, and the
// differing-bit-position bucket index.
package id

import (
	"encoding/hex"
	"math/big"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ripemd160 is the wire-compatible hash this DHT is built on.
)

// ByteLength is the size of an Id in bytes (160 bits).
const ByteLength = 20

// BitLength is the size of an Id in bits.
const BitLength = 8 * ByteLength

// Id is a 160-bit RIPEMD-160 digest identifying a node or a key.
type Id struct {
	bytes [ByteLength]byte
}

// KeyId distinguishes key-space identities from node-space identities at the
// type level. Both are 160-bit RIPEMD-160 digests.
type KeyId = Id

// GenerateFromBytes hashes content with RIPEMD-160 to produce an Id.
func GenerateFromBytes(content []byte) Id {
	hasher := ripemd160.New()
	hasher.Write(content) //nolint:errcheck // ripemd160.digest.Write never returns an error.

	var out Id
	copy(out.bytes[:], hasher.Sum(nil))
	return out
}

// FromBytes constructs an Id directly from exactly ByteLength bytes, for
// wire-decoded sources and tests. Panics if the length is wrong — a
// malformed frame is a decode error caught earlier, not an Id-construction
// concern.
func FromBytes(b []byte) Id {
	if len(b) != ByteLength {
		panic("id: wrong byte length for Id")
	}
	var out Id
	copy(out.bytes[:], b)
	return out
}

// Bytes returns the 20 raw identifier bytes.
func (i Id) Bytes() []byte {
	b := make([]byte, ByteLength)
	copy(b, i.bytes[:])
	return b
}

// Equal reports whether two ids are byte-identical.
func (i Id) Equal(other Id) bool {
	return i.bytes == other.bytes
}

// String renders the id as lowercase hex.
func (i Id) String() string {
	return hex.EncodeToString(i.bytes[:])
}

// DistanceFrom returns the XOR distance between i and other as a big-endian
// non-negative big integer.
func (i Id) DistanceFrom(other Id) *big.Int {
	var xored [ByteLength]byte
	for idx := range i.bytes {
		xored[idx] = i.bytes[idx] ^ other.bytes[idx]
	}
	return new(big.Int).SetBytes(xored[:])
}

// DifferingBitPosition returns the position, counted from the least
// significant bit (0) up to the most significant bit (BitLength-1), of the
// highest-order bit at which i and other differ: for the first differing
// byte i with leading differing bit b (from its MSB), BitLength-(8i+b)-1.
// Returns 0 if the ids are equal.
func (i Id) DifferingBitPosition(other Id) uint {
	for byteIndex := 0; byteIndex < ByteLength; byteIndex++ {
		x := i.bytes[byteIndex] ^ other.bytes[byteIndex]
		if x == 0 {
			continue
		}
		bitIndex := leadingZeroBit(x)
		return uint(BitLength - (8*byteIndex + bitIndex) - 1)
	}
	return 0
}

// leadingZeroBit returns the zero-based index, from the MSB, of the first
// set bit in a non-zero byte.
func leadingZeroBit(x byte) int {
	for b := 0; b < 8; b++ {
		if x&(0x80>>uint(b)) != 0 {
			return b
		}
	}
	return 7
}
