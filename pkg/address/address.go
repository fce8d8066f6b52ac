package address

import (
	"bytes"
	"crypto/sha256"

	"github.com/vaultlane/custody/pkg/hash"

	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
)

// Size is the byte length of an Address.
const Size = 32

// version is the base58check version byte for text encoded addresses.
const version = 0x17

// virtualTag namespaces addresses converted from virtual identities so a
// virtual id hash and its address never share a byte representation.
const virtualTag = "custody.virtual"

// Address is the canonical identity of an account. It is a fixed value type
// so it can be used directly as a map key.
type Address [Size]byte

var zero Address

// New returns an Address from raw bytes.
func New(b []byte) (*Address, error) {
	if len(b) != Size {
		return nil, errors.Errorf("Wrong byte length : %d", len(b))
	}
	result := Address{}
	copy(result[:], b)
	return &result, nil
}

// FromVirtual converts a virtual identity hash into the address that holds
// value for it. The conversion is deterministic and collision resistant, so
// the same virtual id always maps to the same deposit address.
func FromVirtual(id hash.Hash) Address {
	data := make([]byte, 0, len(virtualTag)+hash.Size)
	data = append(data, []byte(virtualTag)...)
	data = append(data, id.Bytes()...)
	return Address(sha256.Sum256(data))
}

// Bytes returns the raw address data.
func (a Address) Bytes() []byte {
	return a[:]
}

// Equal returns true if the parameter has the same value.
func (a Address) Equal(o Address) bool {
	return bytes.Equal(a[:], o[:])
}

// IsZero returns true for an unset address.
func (a Address) IsZero() bool {
	return a == zero
}

// String returns the base58check text form of the address.
func (a Address) String() string {
	return base58.CheckEncode(a[:], version)
}

// DecodeString parses a base58check encoded address.
func DecodeString(s string) (Address, error) {
	b, v, err := base58.CheckDecode(s)
	if err != nil {
		return zero, errors.Wrap(err, "base58 decode")
	}
	if v != version {
		return zero, errors.Errorf("Wrong address version : %d", v)
	}
	result, err := New(b)
	if err != nil {
		return zero, err
	}
	return *result, nil
}

// MarshalText converts to the base58check form. Value receiver so Address
// works as a JSON map key.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText converts from the base58check form.
func (a *Address) UnmarshalText(data []byte) error {
	result, err := DecodeString(string(data))
	if err != nil {
		return err
	}
	*a = result
	return nil
}
