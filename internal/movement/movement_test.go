package movement

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/vaultlane/custody/internal/holder"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/internal/platform/tests"
	"github.com/vaultlane/custody/internal/registry"
	"github.com/vaultlane/custody/internal/vaddress"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/events"
	"github.com/vaultlane/custody/pkg/hash"
	"github.com/vaultlane/custody/pkg/ledger"
)

// TestMovement is the entry point for testing fund movement and delegated
// virtual calls.
func TestMovement(t *testing.T) {
	t.Run("toMain", moveToMain)
	t.Run("fromMain", moveFromMain)
	t.Run("shutdown", movementWhileShutdown)
	t.Run("virtualCall", sendByVirtualAddress)
}

// fixture is the environment movement tests run against: an initialized
// registry with a "vault" category targeting the memory ledger, and a holder
// with one management key.
type fixture struct {
	test     *tests.Test
	operator address.Address
	owner    address.Address
	key      address.Address
	holder   *state.Holder
}

func newFixture(t *testing.T, ctx context.Context) *fixture {
	test := tests.New(ctx)

	f := &fixture{
		test:     test,
		operator: tests.RandomAddress(),
		owner:    tests.RandomAddress(),
		key:      tests.RandomAddress(),
	}

	whitelists := map[string]*state.CallWhitelist{
		"vault": {Entries: []*state.WhitelistEntry{
			{Target: test.Ledger.Identity(), Methods: []string{"Transfer", "Lock", "Unlock"}},
		}},
	}
	if err := registry.Initialize(test.Context(ctx, f.operator), test.DB, whitelists); err != nil {
		t.Fatalf("\t%s\tFailed to initialize registry : %v", tests.Failed, err)
	}

	test.Ledger.RegisterToken("TOK", "Test Token", 1000000, f.operator)

	nu := &holder.NewHolder{
		Symbol: "TOK",
		ManagementAddresses: []*state.ManagementAddress{
			{Address: f.key, Amount: 1000, LimitAmount: 500, TotalRequired: 1},
		},
		OwnerAddress:    f.owner,
		ShutdownAddress: tests.RandomAddress(),
	}

	h, err := holder.Create(test.Context(ctx, f.owner), test.DB, test.Ledger, test.Events, nu)
	if err != nil {
		t.Fatalf("\t%s\tFailed to mock up holder : %v", tests.Failed, err)
	}
	f.holder = h
	test.Events.Reset()
	return f
}

// fund simulates a user deposit to their virtual address.
func (f *fixture) fund(t *testing.T, ctx context.Context, userToken string, amount int64) address.Address {
	addr, err := vaddress.Derive(ctx, f.test.DB, f.holder.ID, userToken, hash.Hash{})
	if err != nil {
		t.Fatalf("\t%s\tFailed to derive deposit address : %v", tests.Failed, err)
	}
	if err := f.test.Ledger.Transfer(ctx, f.operator, addr, "TOK", amount); err != nil {
		t.Fatalf("\t%s\tFailed to fund deposit address : %v", tests.Failed, err)
	}
	return addr
}

func moveToMain(t *testing.T) {
	defer tests.Recover(t)

	ctx := context.Background()
	f := newFixture(t, ctx)
	defer f.test.Close(ctx)

	deposit := f.fund(t, ctx, "user-1", 700)

	// Only registered management keys may sweep deposits.
	err := ToMain(f.test.Context(ctx, tests.RandomAddress()), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-1", hash.Hash{}, 700)
	if !errs.IsUnauthorized(err) {
		t.Fatalf("\t%s\tExpected unauthorized, got %v", tests.Failed, err)
	}

	err = ToMain(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-1", hash.Hash{}, 0)
	if !errs.IsPrecondition(err) {
		t.Fatalf("\t%s\tExpected precondition for zero amount, got %v", tests.Failed, err)
	}

	if err := ToMain(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-1", hash.Hash{}, 700); err != nil {
		t.Fatalf("\t%s\tFailed to move to main : %v", tests.Failed, err)
	}

	balance, _ := f.test.Ledger.GetBalance(ctx, f.holder.MainAddress, "TOK")
	if balance != 700 {
		t.Fatalf("\t%s\tWrong main balance : %d", tests.Failed, balance)
	}
	balance, _ = f.test.Ledger.GetBalance(ctx, deposit, "TOK")
	if balance != 0 {
		t.Fatalf("\t%s\tWrong deposit balance : %d", tests.Failed, balance)
	}
	t.Logf("\t%s\tDeposit swept to main address", tests.Success)

	emitted := f.test.Events.Named("AssetMovedToMainAddress")
	if len(emitted) != 1 {
		t.Fatalf("\t%s\tExpected 1 event, got %d", tests.Failed, len(emitted))
	}
	moved := emitted[0].(events.AssetMovedToMainAddress)
	if !moved.From.Equal(deposit) || moved.Amount != 700 {
		t.Fatalf("\t%s\tWrong event payload : %+v", tests.Failed, moved)
	}

	// The ledger refuses a second sweep of the emptied address.
	if err := ToMain(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-1", hash.Hash{}, 1); err == nil {
		t.Fatalf("\t%s\tExpected ledger error for empty deposit address", tests.Failed)
	}
}

func moveFromMain(t *testing.T) {
	defer tests.Recover(t)

	ctx := context.Background()
	f := newFixture(t, ctx)
	defer f.test.Close(ctx)

	f.fund(t, ctx, "user-1", 900)
	if err := ToMain(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-1", hash.Hash{}, 900); err != nil {
		t.Fatalf("\t%s\tFailed to move to main : %v", tests.Failed, err)
	}

	// The key's ceiling is 1000; moving more is refused even though the
	// main address could cover it.
	err := FromMain(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-2", hash.Hash{}, 1001)
	if !errs.IsUnauthorized(err) {
		t.Fatalf("\t%s\tExpected unauthorized, got %v", tests.Failed, err)
	}
	if err.Error() != "Current management address can not move this asset.: unauthorized" {
		t.Fatalf("\t%s\tWrong message : %v", tests.Failed, err)
	}
	t.Logf("\t%s\tCeiling enforced", tests.Success)

	if err := FromMain(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-2", hash.Hash{}, 300); err != nil {
		t.Fatalf("\t%s\tFailed to move from main : %v", tests.Failed, err)
	}

	target, _ := vaddress.Derive(ctx, f.test.DB, f.holder.ID, "user-2", hash.Hash{})
	balance, _ := f.test.Ledger.GetBalance(ctx, target, "TOK")
	if balance != 300 {
		t.Fatalf("\t%s\tWrong target balance : %d", tests.Failed, balance)
	}
	balance, _ = f.test.Ledger.GetBalance(ctx, f.holder.MainAddress, "TOK")
	if balance != 600 {
		t.Fatalf("\t%s\tWrong main balance : %d", tests.Failed, balance)
	}
	t.Logf("\t%s\tFunds returned to a user virtual address", tests.Success)

	if len(f.test.Events.Named("AssetMovedFromMainAddress")) != 1 {
		t.Fatalf("\t%s\tExpected 1 AssetMovedFromMainAddress event", tests.Failed)
	}
}

func movementWhileShutdown(t *testing.T) {
	defer tests.Recover(t)

	ctx := context.Background()
	f := newFixture(t, ctx)
	defer f.test.Close(ctx)

	f.fund(t, ctx, "user-1", 100)

	if err := holder.Shutdown(f.test.Context(ctx, f.owner), f.test.DB, f.holder.ID); err != nil {
		t.Fatalf("\t%s\tFailed to shut down : %v", tests.Failed, err)
	}

	err := ToMain(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-1", hash.Hash{}, 100)
	if !errs.IsPrecondition(err) {
		t.Fatalf("\t%s\tExpected precondition, got %v", tests.Failed, err)
	}
	if err.Error() != "Holder is shut down.: precondition failed" {
		t.Fatalf("\t%s\tWrong message : %v", tests.Failed, err)
	}

	err = FromMain(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.test.Events, f.holder.ID, "user-1", hash.Hash{}, 100)
	if !errs.IsPrecondition(err) {
		t.Fatalf("\t%s\tExpected precondition, got %v", tests.Failed, err)
	}

	err = SendByVirtualAddress(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.holder.ID, "user-1", registry.CategoryHash("vault"),
		f.test.Ledger.Identity(), "Transfer", nil)
	if !errs.IsPrecondition(err) {
		t.Fatalf("\t%s\tExpected precondition, got %v", tests.Failed, err)
	}
	t.Logf("\t%s\tAll movement blocked while shut down", tests.Success)
}

func sendByVirtualAddress(t *testing.T) {
	defer tests.Recover(t)

	ctx := context.Background()
	f := newFixture(t, ctx)
	defer f.test.Close(ctx)

	category := registry.CategoryHash("vault")

	// Fund the category scoped virtual address directly.
	virtualID := vaddress.VirtualID(f.holder.ID, "user-1", category)
	scoped := address.FromVirtual(virtualID)
	if err := f.test.Ledger.Transfer(ctx, f.operator, scoped, "TOK", 500); err != nil {
		t.Fatalf("\t%s\tFailed to fund scoped address : %v", tests.Failed, err)
	}

	receiver := tests.RandomAddress()
	args, _ := json.Marshal(ledger.TransferArgs{To: receiver, Symbol: "TOK", Amount: 200})

	// Input validation.
	err := SendByVirtualAddress(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.holder.ID, "user-1", hash.Hash{}, f.test.Ledger.Identity(), "Transfer", args)
	if !errs.IsPrecondition(err) {
		t.Fatalf("\t%s\tExpected precondition for zero category, got %v", tests.Failed, err)
	}
	err = SendByVirtualAddress(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.holder.ID, "", category, f.test.Ledger.Identity(), "Transfer", args)
	if !errs.IsPrecondition(err) {
		t.Fatalf("\t%s\tExpected precondition for empty token, got %v", tests.Failed, err)
	}
	err = SendByVirtualAddress(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.holder.ID, "user-1", category, f.test.Ledger.Identity(), "", args)
	if !errs.IsPrecondition(err) {
		t.Fatalf("\t%s\tExpected precondition for empty method, got %v", tests.Failed, err)
	}

	// A method outside the whitelist is refused before it reaches the
	// target.
	err = SendByVirtualAddress(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.holder.ID, "user-1", category, f.test.Ledger.Identity(), "Burn", args)
	if !errs.IsUnauthorized(err) {
		t.Fatalf("\t%s\tExpected unauthorized, got %v", tests.Failed, err)
	}

	// So is a whitelisted method on an unknown target.
	err = SendByVirtualAddress(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.holder.ID, "user-1", category, tests.RandomAddress(), "Transfer", args)
	if !errs.IsUnauthorized(err) {
		t.Fatalf("\t%s\tExpected unauthorized, got %v", tests.Failed, err)
	}
	t.Logf("\t%s\tNon whitelisted calls rejected", tests.Success)

	if err := SendByVirtualAddress(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.holder.ID, "user-1", category, f.test.Ledger.Identity(), "Transfer", args); err != nil {
		t.Fatalf("\t%s\tFailed to send transfer : %v", tests.Failed, err)
	}

	balance, _ := f.test.Ledger.GetBalance(ctx, receiver, "TOK")
	if balance != 200 {
		t.Fatalf("\t%s\tWrong receiver balance : %d", tests.Failed, balance)
	}
	balance, _ = f.test.Ledger.GetBalance(ctx, scoped, "TOK")
	if balance != 300 {
		t.Fatalf("\t%s\tWrong scoped balance : %d", tests.Failed, balance)
	}
	t.Logf("\t%s\tWhitelisted transfer executed as the virtual address", tests.Success)

	// The lock methods work through the same path.
	lockArgs, _ := json.Marshal(ledger.LockArgs{Symbol: "TOK", Amount: 100})
	if err := SendByVirtualAddress(f.test.Context(ctx, f.key), f.test.DB, f.test.Ledger,
		f.holder.ID, "user-1", category, f.test.Ledger.Identity(), "Lock", lockArgs); err != nil {
		t.Fatalf("\t%s\tFailed to lock : %v", tests.Failed, err)
	}
	if locked := f.test.Ledger.LockedBalance(scoped, "TOK"); locked != 100 {
		t.Fatalf("\t%s\tWrong locked balance : %d", tests.Failed, locked)
	}
	t.Logf("\t%s\tLock executed as the virtual address", tests.Success)
}
