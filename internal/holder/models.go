package holder

import (
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/address"
)

// NewHolder contains the data needed to create a holder.
type NewHolder struct {
	Symbol                string                     `json:"symbol"`
	ManagementAddresses   []*state.ManagementAddress `json:"management_addresses"`
	OwnerAddress          address.Address            `json:"owner_address"`
	ShutdownAddress       address.Address            `json:"shutdown_address"`
	SettingsEffectiveTime int64                      `json:"settings_effective_time"`
}

// UpdateHolder is a proposed configuration change. It replaces the management
// set and authority addresses atomically once the settings delay has passed.
type UpdateHolder struct {
	ManagementAddresses   []*state.ManagementAddress `json:"management_addresses"`
	OwnerAddress          address.Address            `json:"owner_address"`
	ShutdownAddress       address.Address            `json:"shutdown_address"`
	SettingsEffectiveTime int64                      `json:"settings_effective_time"`
}
