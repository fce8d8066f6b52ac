package tests

import (
	"math/rand"

	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"
)

var testHelperRand = rand.New(rand.NewSource(1))

// RandomHash returns a pseudo random hash value.
func RandomHash() hash.Hash {
	data := make([]byte, hash.Size)
	for i := range data {
		data[i] = byte(testHelperRand.Intn(256))
	}
	result, _ := hash.New(data)
	return *result
}

// RandomAddress returns a pseudo random address.
func RandomAddress() address.Address {
	data := make([]byte, address.Size)
	for i := range data {
		data[i] = byte(testHelperRand.Intn(256))
	}
	result, _ := address.New(data)
	return *result
}
