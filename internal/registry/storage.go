package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/hash"
)

const (
	registryKey  = "custody/registry"
	whitelistKey = "custody/whitelists"
)

// Save puts the singleton registry in storage.
func Save(ctx context.Context, dbConn *db.DB, r *state.Registry) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return dbConn.Put(ctx, registryKey, b)
}

func fetchRegistry(ctx context.Context, dbConn *db.DB) (*state.Registry, error) {
	b, err := dbConn.Fetch(ctx, registryKey)
	if err != nil {
		return nil, err
	}

	r := state.Registry{}
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}

	return &r, nil
}

// SaveWhitelist puts a category whitelist in storage.
func SaveWhitelist(ctx context.Context, dbConn *db.DB, category hash.Hash,
	wl *state.CallWhitelist) error {

	b, err := json.Marshal(wl)
	if err != nil {
		return err
	}

	return dbConn.Put(ctx, buildWhitelistPath(category), b)
}

func fetchWhitelist(ctx context.Context, dbConn *db.DB, category hash.Hash) (*state.CallWhitelist, error) {
	b, err := dbConn.Fetch(ctx, buildWhitelistPath(category))
	if err != nil {
		return nil, err
	}

	wl := state.CallWhitelist{}
	if err := json.Unmarshal(b, &wl); err != nil {
		return nil, err
	}

	return &wl, nil
}

// buildWhitelistPath returns the storage path for a category hash.
func buildWhitelistPath(category hash.Hash) string {
	return fmt.Sprintf("%s/%s", whitelistKey, category)
}
