// Package movement orchestrates fund moves between virtual addresses and a
// holder's main address, and the whitelisted delegated virtual call.
package movement

import (
	"context"

	"github.com/vaultlane/custody/internal/holder"
	"github.com/vaultlane/custody/internal/permission"
	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/node"
	"github.com/vaultlane/custody/internal/registry"
	"github.com/vaultlane/custody/internal/vaddress"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/events"
	"github.com/vaultlane/custody/pkg/hash"
	"github.com/vaultlane/custody/pkg/ledger"

	"go.opencensus.io/trace"
)

// ToMain moves funds from a user virtual address into the holder's main
// address. Any registered management key may trigger it; the asset only moves
// deeper into custody. Ledger failures propagate unchanged.
func ToMain(ctx context.Context, dbConn *db.DB, l ledger.Ledger, sink events.Sink,
	holderID hash.Hash, userToken string, category hash.Hash, amount int64) error {

	ctx, span := trace.StartSpan(ctx, "internal.movement.ToMain")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return errs.Precondition("Amount required.")
	}

	h, err := holder.Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return err
	}
	if err := permission.RequireActive(h); err != nil {
		return err
	}
	if _, err := permission.Resolve(h, v.Caller); err != nil {
		return err
	}

	from, err := vaddress.Derive(ctx, dbConn, holderID, userToken, category)
	if err != nil {
		return err
	}

	if err := l.Transfer(ctx, from, h.MainAddress, h.Symbol, amount); err != nil {
		return err
	}

	sink.Emit(ctx, events.AssetMovedToMainAddress{
		HolderID: h.ID,
		From:     from,
		Amount:   amount,
	})

	return nil
}

// FromMain moves funds from the holder's main address out to a user virtual
// address. The caller's single transaction ceiling must cover the amount.
func FromMain(ctx context.Context, dbConn *db.DB, l ledger.Ledger, sink events.Sink,
	holderID hash.Hash, userToken string, category hash.Hash, amount int64) error {

	ctx, span := trace.StartSpan(ctx, "internal.movement.FromMain")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return errs.Precondition("Amount required.")
	}

	h, err := holder.Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return err
	}
	if err := permission.RequireActive(h); err != nil {
		return err
	}
	if _, err := permission.AuthorizeMove(h, v.Caller, amount); err != nil {
		return err
	}

	to, err := vaddress.Derive(ctx, dbConn, holderID, userToken, category)
	if err != nil {
		return err
	}

	if err := l.Transfer(ctx, h.MainAddress, to, h.Symbol, amount); err != nil {
		return err
	}

	sink.Emit(ctx, events.AssetMovedFromMainAddress{
		HolderID: h.ID,
		To:       to,
		Amount:   amount,
	})

	return nil
}

// SendByVirtualAddress executes a whitelisted call as the user's virtual
// address in a category. The exact (target, method) pair must be on the
// category's whitelist; nothing else is callable through this path.
func SendByVirtualAddress(ctx context.Context, dbConn *db.DB, sender ledger.VirtualSender,
	holderID hash.Hash, userToken string, category hash.Hash,
	target address.Address, method string, args []byte) error {

	ctx, span := trace.StartSpan(ctx, "internal.movement.SendByVirtualAddress")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	if category.IsZero() {
		return errs.Precondition("Category required.")
	}
	if len(userToken) == 0 {
		return errs.Precondition("User token required.")
	}
	if len(method) == 0 {
		return errs.Precondition("Method required.")
	}

	h, err := holder.Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return err
	}
	if err := permission.RequireActive(h); err != nil {
		return err
	}
	if _, err := permission.Resolve(h, v.Caller); err != nil {
		return err
	}

	wl, err := registry.FetchWhitelist(ctx, dbConn, category)
	if err != nil {
		return err
	}
	if !wl.Allows(target, method) {
		return errs.Unauthorized("Contract call not allowed in this category.")
	}

	virtualID := vaddress.VirtualID(holderID, userToken, category)

	node.LogVerbose(ctx, "Delegated call %s on %s as virtual %s", method, target, virtualID)
	return sender.SendAsVirtual(ctx, virtualID, target, method, args)
}
