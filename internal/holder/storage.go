package holder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"
)

const storageKey = "custody/holders"

// Save puts a single holder in storage.
func Save(ctx context.Context, dbConn *db.DB, h *state.Holder) error {
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}

	return dbConn.Put(ctx, buildStoragePath(h.ID), b)
}

// Fetch a single holder from storage.
func Fetch(ctx context.Context, dbConn *db.DB, holderID hash.Hash) (*state.Holder, error) {
	b, err := dbConn.Fetch(ctx, buildStoragePath(holderID))
	if err != nil {
		return nil, err
	}

	h := state.Holder{}
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, err
	}

	if h.ManagementAddresses == nil {
		h.ManagementAddresses = map[address.Address]*state.ManagementAddress{}
	}

	return &h, nil
}

// buildStoragePath returns the storage path for a holder id.
func buildStoragePath(holderID hash.Hash) string {
	return fmt.Sprintf("%s/%s", storageKey, holderID)
}
