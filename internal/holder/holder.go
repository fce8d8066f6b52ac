// Package holder implements the holder store: creation, validation and the
// time delayed settings change and shutdown workflows.
package holder

import (
	"context"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/node"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/events"
	"github.com/vaultlane/custody/pkg/hash"
	"github.com/vaultlane/custody/pkg/ledger"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"
)

// Create validates and persists a new holder. The holder id is derived from
// the transaction id and the previous block hash, so it cannot be predicted
// before the creating transaction is submitted.
func Create(ctx context.Context, dbConn *db.DB, l ledger.Ledger, sink events.Sink,
	nu *NewHolder) (*state.Holder, error) {

	ctx, span := trace.StartSpan(ctx, "internal.holder.Create")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if len(nu.Symbol) == 0 {
		return nil, errs.Precondition("Symbol required.")
	}
	if _, err := l.GetTokenInfo(ctx, nu.Symbol); err != nil {
		return nil, errors.Wrap(errs.ErrPrecondition, "Symbol is not registered in the token ledger.")
	}

	holderID := hash.Concat(v.TxID, v.PrevBlock)

	if _, err := Fetch(ctx, dbConn, holderID); err == nil {
		return nil, errs.Conflict("Already have a holder.")
	} else if err != db.ErrNotFound {
		return nil, err
	}

	managementAddresses, err := buildManagementMap(nu.ManagementAddresses)
	if err != nil {
		return nil, err
	}
	if err := ValidateManagementAddresses(managementAddresses); err != nil {
		return nil, err
	}

	h := &state.Holder{
		ID:                    holderID,
		MainAddress:           address.FromVirtual(holderID),
		Symbol:                nu.Symbol,
		OwnerAddress:          nu.OwnerAddress,
		ShutdownAddress:       nu.ShutdownAddress,
		ManagementAddresses:   managementAddresses,
		SettingsEffectiveTime: nu.SettingsEffectiveTime,
		CreatedAt:             v.Now,
		UpdatedAt:             v.Now,
	}

	if err := Save(ctx, dbConn, h); err != nil {
		return nil, err
	}

	sink.Emit(ctx, events.HolderCreated{
		HolderID:     h.ID,
		Symbol:       h.Symbol,
		OwnerAddress: h.OwnerAddress,
	})

	node.Log(ctx, "Created holder %s for %s", h.ID, h.Symbol)
	return h, nil
}

// Retrieve gets the specified holder from the database.
func Retrieve(ctx context.Context, dbConn *db.DB, holderID hash.Hash) (*state.Holder, error) {
	if holderID.IsZero() {
		return nil, errs.NotFound("Holder is not initialized.")
	}

	h, err := Fetch(ctx, dbConn, holderID)
	if err == db.ErrNotFound {
		return nil, errs.NotFound("Holder is not initialized.")
	}
	return h, err
}

// buildManagementMap keys the entries by address, rejecting duplicates.
func buildManagementMap(entries []*state.ManagementAddress) (map[address.Address]*state.ManagementAddress, error) {
	result := make(map[address.Address]*state.ManagementAddress, len(entries))
	for _, entry := range entries {
		if entry.Address.IsZero() {
			return nil, errs.Precondition("Management address required.")
		}
		if _, exists := result[entry.Address]; exists {
			return nil, errs.Conflict("The same management address exists.")
		}
		result[entry.Address] = entry
	}
	return result, nil
}

// ValidateManagementAddresses enforces the threshold achievability invariant:
// for every management address, the number of keys whose ceiling covers its
// limit amount must reach its declared approval total. Without this a key
// could open withdraw requests that can never collect enough approvals, or
// declare a threshold no qualifying key set can meet.
func ValidateManagementAddresses(entries map[address.Address]*state.ManagementAddress) error {
	for _, entry := range entries {
		if entry.Amount < 0 || entry.LimitAmount < 0 || entry.TotalRequired < 0 {
			return errs.Invariant("Invalid management address.")
		}

		qualified := int32(0)
		for _, other := range entries {
			if other.Amount >= entry.LimitAmount {
				qualified++
			}
		}
		if qualified < entry.TotalRequired {
			return errs.Invariant("Invalid management address.")
		}
	}
	return nil
}
