// Package node carries the per call execution context. Every operation of the
// engine runs inside one transactional call; the surrounding environment
// provides the caller identity, the transaction id, the previous block hash
// and the block time through Values.
package node

import (
	"context"

	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"

	"github.com/pkg/errors"
)

// ctxKey represents the type of value for the context key.
type ctxKey int

// KeyValues is how call values are stored/retrieved.
const KeyValues ctxKey = 1

// ErrNoValues is returned when an operation runs without call values.
var ErrNoValues = errors.New("Call values missing from context")

// Values represent state for each call.
type Values struct {
	TraceID string

	// Caller is the identity the call was signed by.
	Caller address.Address

	// TxID is the identifier of the current transaction. Combined with
	// PrevBlock it makes derived ids unpredictable before submission.
	TxID      hash.Hash
	PrevBlock hash.Hash

	// Now is the block time the call executes at.
	Now state.Timestamp
}

// ContextWithValues returns a context carrying the call values.
func ContextWithValues(ctx context.Context, v *Values) context.Context {
	return context.WithValue(ctx, KeyValues, v)
}

// FromContext retrieves the call values.
func FromContext(ctx context.Context) (*Values, error) {
	v, ok := ctx.Value(KeyValues).(*Values)
	if !ok || v == nil {
		return nil, ErrNoValues
	}
	return v, nil
}
