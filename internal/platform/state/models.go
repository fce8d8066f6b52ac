// Package state contains the persisted record types of the custody engine.
package state

import (
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"
)

// ManagementAddress is an authorized signer for a holder.
type ManagementAddress struct {
	// Address identifies the management key.
	Address address.Address `json:"address"`

	// Amount is this key's single transaction spending ceiling.
	Amount int64 `json:"amount"`

	// LimitAmount is the per approval amount this key's presence can
	// sanction. A key may only approve withdraws whose snapshotted limit
	// is covered by its own Amount.
	LimitAmount int64 `json:"limit_amount"`

	// TotalRequired is the number of approving keys required for withdraw
	// requests this key initiates. Zero bars the key from requesting.
	TotalRequired int32 `json:"total_required"`
}

// PendingUpdate is a proposed holder configuration waiting out the settings
// effective delay. At most one exists per holder.
type PendingUpdate struct {
	ManagementAddresses   []*ManagementAddress `json:"management_addresses"`
	OwnerAddress          address.Address      `json:"owner_address"`
	ShutdownAddress       address.Address      `json:"shutdown_address"`
	SettingsEffectiveTime int64                `json:"settings_effective_time"`
	RequestedAt           Timestamp            `json:"requested_at"`
}

// Holder is the custody account abstraction. It owns one asset symbol, a main
// address and a set of management keys.
type Holder struct {
	ID          hash.Hash       `json:"id"`
	MainAddress address.Address `json:"main_address"`
	Symbol      string          `json:"symbol"`

	OwnerAddress    address.Address `json:"owner_address"`
	ShutdownAddress address.Address `json:"shutdown_address"`

	// ManagementAddresses is keyed by the canonical address value.
	ManagementAddresses map[address.Address]*ManagementAddress `json:"management_addresses"`

	IsShutdown            bool  `json:"is_shutdown"`
	SettingsEffectiveTime int64 `json:"settings_effective_time"`

	PendingUpdate *PendingUpdate `json:"pending_update,omitempty"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Management returns the management entry for an address, or nil.
func (h *Holder) Management(addr address.Address) *ManagementAddress {
	if h.ManagementAddresses == nil {
		return nil
	}
	return h.ManagementAddresses[addr]
}

// Withdraw is a pending withdrawal request waiting for threshold approval.
type Withdraw struct {
	ID       hash.Hash `json:"id"`
	HolderID hash.Hash `json:"holder_id"`

	// Address is the destination the funds release to.
	Address address.Address `json:"address"`
	Amount  int64           `json:"amount"`

	// TotalRequired and LimitAmount are snapshotted from the requesting
	// key so later changes to the holder cannot weaken an open request.
	TotalRequired int32 `json:"total_required"`
	LimitAmount   int64 `json:"limit_amount"`

	// ApprovedAddresses is insertion ordered and starts with the requester.
	ApprovedAddresses []address.Address `json:"approved_addresses"`

	AddedTime Timestamp `json:"added_time"`
}

// HasApproved returns true if the address already approved this withdraw.
func (w *Withdraw) HasApproved(addr address.Address) bool {
	for _, a := range w.ApprovedAddresses {
		if a.Equal(addr) {
			return true
		}
	}
	return false
}

// IsZero returns true for an empty record, which is what reads of unknown
// withdraw ids return.
func (w *Withdraw) IsZero() bool {
	return w.ID.IsZero() && w.HolderID.IsZero() && len(w.ApprovedAddresses) == 0
}

// WhitelistEntry allows a set of methods on one target identity.
type WhitelistEntry struct {
	Target  address.Address `json:"target"`
	Methods []string        `json:"methods"`
}

// CallWhitelist is the allow list of (target, method) pairs a category's
// virtual addresses may invoke.
type CallWhitelist struct {
	Entries []*WhitelistEntry `json:"entries"`
}

// Allows returns true when the exact (target, method) pair is whitelisted.
func (wl *CallWhitelist) Allows(target address.Address, method string) bool {
	for _, entry := range wl.Entries {
		if !entry.Target.Equal(target) {
			continue
		}
		for _, m := range entry.Methods {
			if m == method {
				return true
			}
		}
	}
	return false
}

// IsEmpty returns true when the whitelist has no entries.
func (wl *CallWhitelist) IsEmpty() bool {
	return wl == nil || len(wl.Entries) == 0
}

// Registry is the engine wide singleton configuration: the operator identity
// and the registered category names.
type Registry struct {
	Owner      address.Address `json:"owner"`
	Categories []string        `json:"categories"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// HasCategory returns true when the category name is registered.
func (r *Registry) HasCategory(name string) bool {
	for _, c := range r.Categories {
		if c == name {
			return true
		}
	}
	return false
}
