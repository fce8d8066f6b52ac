package holder

import (
	"context"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/node"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/internal/registry"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/hash"

	"go.opencensus.io/trace"
)

// Shutdown disables a holder. The holder owner and the dedicated shutdown
// address may both trigger it. Any pending settings update is discarded so an
// in flight change cannot land on a holder that was locked down.
func Shutdown(ctx context.Context, dbConn *db.DB, holderID hash.Hash) error {
	ctx, span := trace.StartSpan(ctx, "internal.holder.Shutdown")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	h, err := Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return err
	}
	if !h.OwnerAddress.Equal(v.Caller) && !h.ShutdownAddress.Equal(v.Caller) {
		return errs.Unauthorized("No permission.")
	}

	h.IsShutdown = true
	h.PendingUpdate = nil
	h.UpdatedAt = v.Now

	if err := Save(ctx, dbConn, h); err != nil {
		return err
	}

	node.LogWarn(ctx, "Holder %s shut down by %s", h.ID, v.Caller)
	return nil
}

// Reboot reactivates a shut down holder. Only the registry owner may call it;
// it is the operator assisted recovery path. All management keys are wiped
// and a new holder owner is installed, so the holder comes back with no
// spending authority until keys are registered again.
func Reboot(ctx context.Context, dbConn *db.DB, holderID hash.Hash,
	newOwner address.Address) error {

	ctx, span := trace.StartSpan(ctx, "internal.holder.Reboot")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	r, err := registry.Fetch(ctx, dbConn)
	if err != nil {
		return err
	}
	if !r.Owner.Equal(v.Caller) {
		return errs.Unauthorized("No permission.")
	}

	if newOwner.IsZero() {
		return errs.Precondition("Holder owner cannot be null.")
	}

	h, err := Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return err
	}

	h.IsShutdown = false
	h.ManagementAddresses = map[address.Address]*state.ManagementAddress{}
	h.PendingUpdate = nil
	h.OwnerAddress = newOwner
	h.UpdatedAt = v.Now

	if err := Save(ctx, dbConn, h); err != nil {
		return err
	}

	node.LogWarn(ctx, "Holder %s rebooted, new owner %s", h.ID, newOwner)
	return nil
}
