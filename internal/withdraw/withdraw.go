// Package withdraw implements the threshold approved withdrawal lifecycle:
// request, approve until the threshold releases the funds, lazy expiry and
// explicit cancellation.
package withdraw

import (
	"context"

	"github.com/vaultlane/custody/internal/holder"
	"github.com/vaultlane/custody/internal/permission"
	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/node"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/events"
	"github.com/vaultlane/custody/pkg/hash"
	"github.com/vaultlane/custody/pkg/ledger"

	"go.opencensus.io/trace"
)

// ExpiryWindowSeconds is how long a request stays approvable. There is no
// timer; expiry is evaluated on the next approval attempt.
const ExpiryWindowSeconds = 86400

// Status reports the outcome of an approval attempt.
type Status string

const (
	// StatusApproving means the approval counted but the threshold is not
	// reached yet.
	StatusApproving Status = "approving"

	// StatusApproved means the threshold was reached and the funds
	// transferred out.
	StatusApproved Status = "approved"

	// StatusExpired means the request outlived the expiry window and was
	// deleted without a transfer.
	StatusExpired Status = "expired"
)

// ApproveResult is returned by Approve. Callers must inspect Status; expiry
// is a result, not an error.
type ApproveResult struct {
	Status        Status
	ApprovedCount int
	TotalRequired int32
}

// Request opens a withdrawal from the holder's main address. The requesting
// key's ceiling must cover the amount and its approval total must be above
// zero; the threshold and limit are snapshotted onto the request so later
// holder changes cannot weaken it.
func Request(ctx context.Context, dbConn *db.DB, l ledger.Ledger, sink events.Sink,
	holderID hash.Hash, to address.Address, amount int64) (*state.Withdraw, error) {

	ctx, span := trace.StartSpan(ctx, "internal.withdraw.Request")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if to.IsZero() {
		return nil, errs.Precondition("Address required.")
	}
	if amount <= 0 {
		return nil, errs.Precondition("Amount required.")
	}

	h, err := holder.Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return nil, err
	}
	if err := permission.RequireActive(h); err != nil {
		return nil, err
	}

	entry, err := permission.AuthorizeMove(h, v.Caller, amount)
	if err != nil {
		return nil, err
	}
	if entry.TotalRequired <= 0 {
		return nil, errs.Unauthorized("Current key cannot make withdraw request.")
	}

	balance, err := l.GetBalance(ctx, h.MainAddress, h.Symbol)
	if err != nil {
		return nil, err
	}
	if balance < amount {
		return nil, errs.Precondition("Insufficient balance to withdraw.")
	}

	withdrawID := hash.Concat(v.TxID, holderID)
	if _, err := Fetch(ctx, dbConn, withdrawID); err == nil {
		return nil, errs.Conflict("Already have a withdraw.")
	} else if err != db.ErrNotFound {
		return nil, err
	}

	w := &state.Withdraw{
		ID:                withdrawID,
		HolderID:          holderID,
		Address:           to,
		Amount:            amount,
		TotalRequired:     entry.TotalRequired,
		LimitAmount:       entry.LimitAmount,
		ApprovedAddresses: []address.Address{v.Caller},
		AddedTime:         v.Now,
	}

	if err := Save(ctx, dbConn, w); err != nil {
		return nil, err
	}

	sink.Emit(ctx, events.WithdrawRequested{
		HolderID:        holderID,
		WithdrawID:      withdrawID,
		Amount:          amount,
		RequestAddress:  v.Caller,
		WithdrawAddress: to,
	})

	node.Log(ctx, "Withdraw %s requested on holder %s, 1 of %d approvals",
		withdrawID, holderID, w.TotalRequired)
	return w, nil
}

// Approve counts the caller's approval on a pending withdrawal. The supplied
// amount and destination must match the stored request exactly so an approver
// cannot be tricked into sanctioning a different payload under a reused id.
// Approval is idempotent per key. When the approver set reaches the snapshotted
// threshold, the funds transfer out and the request is deleted.
func Approve(ctx context.Context, dbConn *db.DB, l ledger.Ledger, sink events.Sink,
	withdrawID hash.Hash, amount int64, to address.Address) (*ApproveResult, error) {

	ctx, span := trace.StartSpan(ctx, "internal.withdraw.Approve")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	w, err := Fetch(ctx, dbConn, withdrawID)
	if err == db.ErrNotFound {
		return nil, errs.NotFound("Withdraw not exists.")
	} else if err != nil {
		return nil, err
	}

	if w.Amount != amount || !w.Address.Equal(to) {
		return nil, errs.Precondition("Withdraw data not matched.")
	}

	h, err := holder.Retrieve(ctx, dbConn, w.HolderID)
	if err != nil {
		return nil, err
	}
	if err := permission.RequireActive(h); err != nil {
		return nil, err
	}

	entry, err := permission.Resolve(h, v.Caller)
	if err != nil {
		return nil, err
	}
	if entry.Amount < w.LimitAmount {
		return nil, errs.Unauthorized("Current management address cannot approve, amount limited.")
	}

	if v.Now.SecondsSince(w.AddedTime) >= ExpiryWindowSeconds {
		if err := Remove(ctx, dbConn, withdrawID); err != nil {
			return nil, err
		}
		node.LogWarn(ctx, "Withdraw %s expired after %d approvals",
			withdrawID, len(w.ApprovedAddresses))
		return &ApproveResult{
			Status:        StatusExpired,
			ApprovedCount: len(w.ApprovedAddresses),
			TotalRequired: w.TotalRequired,
		}, nil
	}

	if !w.HasApproved(v.Caller) {
		w.ApprovedAddresses = append(w.ApprovedAddresses, v.Caller)
	}

	if len(w.ApprovedAddresses) >= int(w.TotalRequired) {
		if err := l.Transfer(ctx, h.MainAddress, w.Address, h.Symbol, w.Amount); err != nil {
			return nil, err
		}
		if err := Remove(ctx, dbConn, withdrawID); err != nil {
			return nil, err
		}

		sink.Emit(ctx, events.WithdrawReleased{
			HolderID:        w.HolderID,
			WithdrawID:      withdrawID,
			Amount:          w.Amount,
			WithdrawAddress: w.Address,
		})

		node.Log(ctx, "Withdraw %s released to %s", withdrawID, w.Address)
		return &ApproveResult{
			Status:        StatusApproved,
			ApprovedCount: len(w.ApprovedAddresses),
			TotalRequired: w.TotalRequired,
		}, nil
	}

	if err := Save(ctx, dbConn, w); err != nil {
		return nil, err
	}

	return &ApproveResult{
		Status:        StatusApproving,
		ApprovedCount: len(w.ApprovedAddresses),
		TotalRequired: w.TotalRequired,
	}, nil
}

// Cancel removes pending withdrawals of a holder. Any registered management
// key may cancel regardless of approval count; removing a request is strictly
// safer than approving one. Ids that do not exist are skipped, but an id
// belonging to a different holder fails the whole call.
func Cancel(ctx context.Context, dbConn *db.DB, holderID hash.Hash, ids []hash.Hash) error {
	ctx, span := trace.StartSpan(ctx, "internal.withdraw.Cancel")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	h, err := holder.Retrieve(ctx, dbConn, holderID)
	if err != nil {
		return err
	}
	if _, err := permission.Resolve(h, v.Caller); err != nil {
		return err
	}

	for _, id := range ids {
		w, err := Fetch(ctx, dbConn, id)
		if err == db.ErrNotFound {
			continue
		} else if err != nil {
			return err
		}

		if !w.HolderID.Equal(holderID) {
			return errs.Precondition("Holder not matched.")
		}

		if err := Remove(ctx, dbConn, id); err != nil {
			return err
		}
		node.Log(ctx, "Withdraw %s cancelled by %s", id, v.Caller)
	}

	return nil
}

// GetPending returns the pending withdraw for an id, or a zero value record
// when none exists. The read never fails on an unknown id; callers check for
// the zero record.
func GetPending(ctx context.Context, dbConn *db.DB, withdrawID hash.Hash) (*state.Withdraw, error) {
	w, err := Fetch(ctx, dbConn, withdrawID)
	if err == db.ErrNotFound {
		return &state.Withdraw{}, nil
	} else if err != nil {
		return nil, err
	}
	return w, nil
}
