// Package vaddress derives the deterministic virtual addresses used to
// segregate deposits per user and category, and the holder main address.
//
// Derivation is a pure function of (holder id, user token, category hash);
// the same inputs always yield the same address. Virtual addresses carry no
// secret, so depositors can be told where to send funds.
package vaddress

import (
	"context"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/registry"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/hash"
)

// VirtualID computes the virtual identity hash for a user under a holder.
// A zero category hash means the plain deposit address.
func VirtualID(holderID hash.Hash, userToken string, category hash.Hash) hash.Hash {
	base := hash.FromString(userToken)
	if !category.IsZero() {
		base = base.Xor(category)
	}
	return hash.Concat(holderID, base)
}

// MainAddress converts a holder id into the holder's main address.
func MainAddress(holderID hash.Hash) address.Address {
	return address.FromVirtual(holderID)
}

// Derive computes a user virtual address. When a category is given, its
// whitelist must exist and be non empty; an uninitialized category would
// produce addresses whose funds cannot be operated on.
func Derive(ctx context.Context, dbConn *db.DB, holderID hash.Hash,
	userToken string, category hash.Hash) (address.Address, error) {

	var zero address.Address

	if len(userToken) == 0 {
		return zero, errs.Precondition("User token required.")
	}

	if !category.IsZero() {
		wl, err := registry.FetchWhitelist(ctx, dbConn, category)
		if err != nil && !errs.IsNotFound(err) {
			return zero, err
		}
		if err != nil || wl.IsEmpty() {
			return zero, errs.Precondition("This category has no contract call list, maybe not initialized.")
		}
	}

	return address.FromVirtual(VirtualID(holderID, userToken, category)), nil
}
