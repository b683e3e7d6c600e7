package object

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashSize is the length of a hex-encoded object hash.
const HashSize = 2 * sha1.Size

// Encode returns the stored representation of an object: the type tag, a
// NUL separator and the payload.
func Encode(objType ObjectType, data []byte) []byte {
	raw := make([]byte, 0, len(objType)+1+len(data))
	raw = append(raw, string(objType)...)
	raw = append(raw, 0)
	return append(raw, data...)
}

// HashBytes computes the SHA-1 of data as a lowercase hex Hash.
func HashBytes(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the hash of the envelope "type\0content".
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha1.New()
	h.Write([]byte(objType))
	h.Write([]byte{0})
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// IsHash reports whether s looks like a full object hash.
func IsHash(s string) bool {
	return len(s) == HashSize && isHex(s)
}

// IsHashPrefix reports whether s is a plausible abbreviated hash.
func IsHashPrefix(s string) bool {
	return len(s) >= 4 && len(s) <= HashSize && isHex(s)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
