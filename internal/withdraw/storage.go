package withdraw

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/hash"
)

const storageKey = "custody/withdraws"

// Save puts a single withdraw request in storage.
func Save(ctx context.Context, dbConn *db.DB, w *state.Withdraw) error {
	b, err := json.Marshal(w)
	if err != nil {
		return err
	}

	return dbConn.Put(ctx, buildStoragePath(w.ID), b)
}

// Fetch a single withdraw request from storage.
func Fetch(ctx context.Context, dbConn *db.DB, withdrawID hash.Hash) (*state.Withdraw, error) {
	b, err := dbConn.Fetch(ctx, buildStoragePath(withdrawID))
	if err != nil {
		return nil, err
	}

	w := state.Withdraw{}
	if err := json.Unmarshal(b, &w); err != nil {
		return nil, err
	}

	return &w, nil
}

// Remove deletes a withdraw request from storage.
func Remove(ctx context.Context, dbConn *db.DB, withdrawID hash.Hash) error {
	return dbConn.Remove(ctx, buildStoragePath(withdrawID))
}

// List returns the storage keys of all pending withdraw requests.
func List(ctx context.Context, dbConn *db.DB) ([]string, error) {
	return dbConn.List(ctx, storageKey)
}

// buildStoragePath returns the storage path for a withdraw id.
func buildStoragePath(withdrawID hash.Hash) string {
	return fmt.Sprintf("%s/%s", storageKey, withdrawID)
}
