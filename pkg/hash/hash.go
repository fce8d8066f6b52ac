package hash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

// Size is the byte length of a Hash.
const Size = 32

// Hash is a 32 byte identifier. All identifiers in the custody engine
// (holder ids, withdraw ids, category hashes, virtual user ids) are derived
// with sha256 so they can be recomputed by any party from the same inputs.
type Hash [Size]byte

var zero Hash

// New returns a Hash from raw bytes.
func New(b []byte) (*Hash, error) {
	if len(b) != Size {
		return nil, errors.Errorf("Wrong byte length : %d", len(b))
	}
	result := Hash{}
	copy(result[:], b)
	return &result, nil
}

// Compute returns the sha256 digest of the data.
func Compute(b []byte) Hash {
	return Hash(sha256.Sum256(b))
}

// FromString returns the hash of the UTF-8 bytes of the string.
func FromString(s string) Hash {
	return Compute([]byte(s))
}

// Concat hashes the concatenation of the two hashes. Concat(a, b) is not
// Concat(b, a), which keeps derived ids bound to their ordered inputs.
func Concat(a, b Hash) Hash {
	data := make([]byte, 0, Size*2)
	data = append(data, a[:]...)
	data = append(data, b[:]...)
	return Compute(data)
}

// Xor combines two hashes byte-wise.
func (h Hash) Xor(o Hash) Hash {
	result := Hash{}
	for i := 0; i < Size; i++ {
		result[i] = h[i] ^ o[i]
	}
	return result
}

// Bytes returns the data for the hash.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Equal returns true if the parameter has the same value.
func (h Hash) Equal(o Hash) bool {
	return bytes.Equal(h[:], o[:])
}

// IsZero returns true for an unset hash.
func (h Hash) IsZero() bool {
	return h == zero
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// FromHex parses a hex encoded hash.
func FromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return zero, errors.Wrap(err, "decode hex")
	}
	result, err := New(b)
	if err != nil {
		return zero, err
	}
	return *result, nil
}

// MarshalText converts to hex. Value receiver so Hash works as a JSON map key.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h[:])), nil
}

// UnmarshalText converts from hex.
func (h *Hash) UnmarshalText(data []byte) error {
	if len(data) != Size*2 {
		return errors.Errorf("Wrong size hex data for Hash : %d", len(data))
	}
	_, err := hex.Decode(h[:], data)
	return err
}
