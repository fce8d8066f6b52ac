// Package permission resolves a caller against a holder's management keys and
// enforces spending ceilings.
package permission

import (
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
)

// Resolve returns the caller's management entry on the holder. Presence is
// the minimum authority for custody operations.
func Resolve(h *state.Holder, caller address.Address) (*state.ManagementAddress, error) {
	entry := h.Management(caller)
	if entry == nil {
		return nil, errs.Unauthorized("Sender is not registered as management address in the holder.")
	}
	return entry, nil
}

// AuthorizeMove resolves the caller and checks the amount against the key's
// single transaction ceiling.
func AuthorizeMove(h *state.Holder, caller address.Address, amount int64) (*state.ManagementAddress, error) {
	entry, err := Resolve(h, caller)
	if err != nil {
		return nil, err
	}
	if amount > entry.Amount {
		return nil, errs.Unauthorized("Current management address can not move this asset.")
	}
	return entry, nil
}

// RequireActive refuses fund movement on a shut down holder. Every operation
// that moves or releases funds invokes this single check.
func RequireActive(h *state.Holder) error {
	if h.IsShutdown {
		return errs.Precondition("Holder is shut down.")
	}
	return nil
}
