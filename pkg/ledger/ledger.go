// Package ledger defines the external token ledger the custody engine moves
// value through. The engine never keeps balances of its own; it instructs the
// ledger and propagates its failures unchanged.
package ledger

import (
	"context"

	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"
)

// TokenInfo describes a registered asset.
type TokenInfo struct {
	Symbol      string `json:"symbol"`
	TokenName   string `json:"token_name"`
	Decimals    int32  `json:"decimals"`
	TotalSupply int64  `json:"total_supply"`
}

// Ledger is the transfer primitive collaborator.
type Ledger interface {
	// Transfer moves amount of symbol between addresses. Fails loudly on
	// insufficient balance or unknown symbol.
	Transfer(ctx context.Context, from, to address.Address, symbol string, amount int64) error

	// GetBalance returns the balance an address holds of a symbol.
	GetBalance(ctx context.Context, owner address.Address, symbol string) (int64, error)

	// GetTokenInfo returns the token registration for a symbol, or an
	// error when the symbol is unknown.
	GetTokenInfo(ctx context.Context, symbol string) (*TokenInfo, error)
}

// VirtualSender executes a call against a target as if it was sent by the
// address of a virtual identity. The engine gates every use of this behind a
// category whitelist.
type VirtualSender interface {
	SendAsVirtual(ctx context.Context, virtualID hash.Hash, target address.Address,
		method string, args []byte) error
}
