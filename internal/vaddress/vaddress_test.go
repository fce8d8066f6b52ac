package vaddress

import (
	"context"
	"testing"

	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/internal/platform/tests"
	"github.com/vaultlane/custody/internal/registry"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/hash"
)

func TestVirtualID(t *testing.T) {
	holderID := hash.FromString("holder")
	category := registry.CategoryHash("vault")

	plain := VirtualID(holderID, "user-1", hash.Hash{})
	if !plain.Equal(VirtualID(holderID, "user-1", hash.Hash{})) {
		t.Fatalf("Derivation must be deterministic")
	}

	scoped := VirtualID(holderID, "user-1", category)
	if plain.Equal(scoped) {
		t.Fatalf("Category scoped id must differ from the plain id")
	}

	if plain.Equal(VirtualID(holderID, "user-2", hash.Hash{})) {
		t.Fatalf("Different user tokens must derive different ids")
	}
	if plain.Equal(VirtualID(hash.FromString("other holder"), "user-1", hash.Hash{})) {
		t.Fatalf("Different holders must derive different ids")
	}
}

func TestMainAddress(t *testing.T) {
	holderID := hash.FromString("holder")
	if !MainAddress(holderID).Equal(address.FromVirtual(holderID)) {
		t.Fatalf("Main address must be the holder id's virtual address")
	}
}

func TestDerive(t *testing.T) {
	defer tests.Recover(t)

	ctx := context.Background()
	test := tests.New(ctx)
	defer test.Close(ctx)

	operator := tests.RandomAddress()
	target := tests.RandomAddress()
	holderID := tests.RandomHash()

	whitelists := map[string]*state.CallWhitelist{
		"vault": {Entries: []*state.WhitelistEntry{
			{Target: target, Methods: []string{"Transfer"}},
		}},
		"empty": {},
	}
	if err := registry.Initialize(test.Context(ctx, operator), test.DB, whitelists); err != nil {
		t.Fatalf("\t%s\tFailed to initialize registry : %v", tests.Failed, err)
	}

	// The plain deposit address needs no category.
	addr, err := Derive(ctx, test.DB, holderID, "user-1", hash.Hash{})
	if err != nil {
		t.Fatalf("\t%s\tFailed to derive : %v", tests.Failed, err)
	}
	want := address.FromVirtual(VirtualID(holderID, "user-1", hash.Hash{}))
	if !addr.Equal(want) {
		t.Fatalf("\t%s\tgot %s, want %s", tests.Failed, addr, want)
	}
	t.Logf("\t%s\tPlain deposit address derived", tests.Success)

	// An initialized category derives a distinct address.
	scoped, err := Derive(ctx, test.DB, holderID, "user-1", registry.CategoryHash("vault"))
	if err != nil {
		t.Fatalf("\t%s\tFailed to derive scoped : %v", tests.Failed, err)
	}
	if scoped.Equal(addr) {
		t.Fatalf("\t%s\tScoped address must differ from plain", tests.Failed)
	}
	t.Logf("\t%s\tCategory scoped address derived", tests.Success)

	if _, err := Derive(ctx, test.DB, holderID, "", hash.Hash{}); !errs.IsPrecondition(err) {
		t.Fatalf("\t%s\tExpected precondition for empty token, got %v", tests.Failed, err)
	}

	// Unknown and empty categories are both unusable.
	for _, category := range []string{"unknown", "empty"} {
		_, err := Derive(ctx, test.DB, holderID, "user-1", registry.CategoryHash(category))
		if !errs.IsPrecondition(err) {
			t.Fatalf("\t%s\tExpected precondition for %s category, got %v", tests.Failed, category, err)
		}
		if err.Error() != "This category has no contract call list, maybe not initialized.: precondition failed" {
			t.Fatalf("\t%s\tWrong message : %v", tests.Failed, err)
		}
	}
	t.Logf("\t%s\tUninitialized categories rejected", tests.Success)
}
