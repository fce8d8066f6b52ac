package holder

import (
	"context"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/node"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/hash"

	"go.opencensus.io/trace"
)

// RequestUpdate stores a proposed configuration change on the holder. Only
// the holder owner may call this. A new request overwrites any pending one.
func RequestUpdate(ctx context.Context, dbConn *db.DB, holderID hash.Hash,
	upd *UpdateHolder) error {

	ctx, span := trace.StartSpan(ctx, "internal.holder.RequestUpdate")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	h, err := Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return err
	}
	if !h.OwnerAddress.Equal(v.Caller) {
		return errs.Unauthorized("No permission.")
	}

	h.PendingUpdate = &state.PendingUpdate{
		ManagementAddresses:   upd.ManagementAddresses,
		OwnerAddress:          upd.OwnerAddress,
		ShutdownAddress:       upd.ShutdownAddress,
		SettingsEffectiveTime: upd.SettingsEffectiveTime,
		RequestedAt:           v.Now,
	}
	h.UpdatedAt = v.Now

	return Save(ctx, dbConn, h)
}

// UpdateEligible reports whether the pending update has waited out the
// holder's settings effective delay at the given time.
func UpdateEligible(h *state.Holder, now state.Timestamp) bool {
	if h.PendingUpdate == nil {
		return false
	}
	return now.SecondsSince(h.PendingUpdate.RequestedAt) >= h.SettingsEffectiveTime
}

// ApproveUpdate commits a pending configuration change. Only the holder owner
// may call this, and only after the settings delay has elapsed. The proposed
// management set is validated again before it replaces the current one.
func ApproveUpdate(ctx context.Context, dbConn *db.DB, holderID hash.Hash) error {
	ctx, span := trace.StartSpan(ctx, "internal.holder.ApproveUpdate")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	h, err := Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return err
	}
	if !h.OwnerAddress.Equal(v.Caller) {
		return errs.Unauthorized("No permission.")
	}
	if h.PendingUpdate == nil {
		return errs.NotFound("No pending update.")
	}
	if !UpdateEligible(h, v.Now) {
		return errs.Precondition("Effective time not arrived.")
	}

	managementAddresses, err := buildManagementMap(h.PendingUpdate.ManagementAddresses)
	if err != nil {
		return err
	}
	if err := ValidateManagementAddresses(managementAddresses); err != nil {
		return err
	}

	h.ManagementAddresses = managementAddresses
	h.OwnerAddress = h.PendingUpdate.OwnerAddress
	h.ShutdownAddress = h.PendingUpdate.ShutdownAddress
	h.SettingsEffectiveTime = h.PendingUpdate.SettingsEffectiveTime
	h.PendingUpdate = nil
	h.UpdatedAt = v.Now

	if err := Save(ctx, dbConn, h); err != nil {
		return err
	}

	node.Log(ctx, "Approved settings update for holder %s", h.ID)
	return nil
}
