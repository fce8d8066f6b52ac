// Package registry owns the engine wide singleton configuration: the operator
// identity and the category whitelists that gate delegated virtual calls.
package registry

import (
	"context"
	"sort"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/node"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/errs"
	"github.com/vaultlane/custody/pkg/hash"

	"go.opencensus.io/trace"
)

// Initialize creates the singleton registry and the initial category
// whitelists. It can only succeed once.
func Initialize(ctx context.Context, dbConn *db.DB,
	whitelists map[string]*state.CallWhitelist) error {

	ctx, span := trace.StartSpan(ctx, "internal.registry.Initialize")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	if v.Caller.IsZero() {
		return errs.Precondition("Contract owner cannot be null.")
	}

	if _, err := fetchRegistry(ctx, dbConn); err == nil {
		return errs.Conflict("Already initialized.")
	} else if err != db.ErrNotFound {
		return err
	}

	categories := make([]string, 0, len(whitelists))
	for category := range whitelists {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		if err := SaveWhitelist(ctx, dbConn, CategoryHash(category), whitelists[category]); err != nil {
			return err
		}
	}

	r := &state.Registry{
		Owner:      v.Caller,
		Categories: categories,
		CreatedAt:  v.Now,
		UpdatedAt:  v.Now,
	}

	if err := Save(ctx, dbConn, r); err != nil {
		return err
	}

	node.Log(ctx, "Registry initialized with %d categories", len(categories))
	return nil
}

// Fetch returns the singleton registry.
func Fetch(ctx context.Context, dbConn *db.DB) (*state.Registry, error) {
	r, err := fetchRegistry(ctx, dbConn)
	if err == db.ErrNotFound {
		return nil, errs.NotFound("Registry is not initialized.")
	}
	return r, err
}

// AddCategory merges entries into a category whitelist, creating the category
// when it is new. Only the registry owner may call this.
func AddCategory(ctx context.Context, dbConn *db.DB, category string,
	entries []*state.WhitelistEntry) error {

	ctx, span := trace.StartSpan(ctx, "internal.registry.AddCategory")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	r, err := Fetch(ctx, dbConn)
	if err != nil {
		return err
	}
	if !r.Owner.Equal(v.Caller) {
		return errs.Unauthorized("No permission.")
	}

	if len(category) == 0 {
		return errs.Precondition("Category required.")
	}
	if len(entries) == 0 {
		return errs.Precondition("Whitelist entries required.")
	}

	categoryHash := CategoryHash(category)

	wl, err := fetchWhitelist(ctx, dbConn, categoryHash)
	if err == db.ErrNotFound {
		wl = &state.CallWhitelist{}
	} else if err != nil {
		return err
	}
	wl.Entries = append(wl.Entries, entries...)

	if err := SaveWhitelist(ctx, dbConn, categoryHash, wl); err != nil {
		return err
	}

	if !r.HasCategory(category) {
		r.Categories = append(r.Categories, category)
		sort.Strings(r.Categories)
	}
	r.UpdatedAt = v.Now

	return Save(ctx, dbConn, r)
}

// ChangeOwner transfers the registry owner identity. Only the current owner
// may call this.
func ChangeOwner(ctx context.Context, dbConn *db.DB, newOwner address.Address) error {
	ctx, span := trace.StartSpan(ctx, "internal.registry.ChangeOwner")
	defer span.End()

	v, err := node.FromContext(ctx)
	if err != nil {
		return err
	}

	if newOwner.IsZero() {
		return errs.Precondition("Contract owner cannot be null.")
	}

	r, err := Fetch(ctx, dbConn)
	if err != nil {
		return err
	}
	if !r.Owner.Equal(v.Caller) {
		return errs.Unauthorized("No permission.")
	}

	r.Owner = newOwner
	r.UpdatedAt = v.Now

	return Save(ctx, dbConn, r)
}

// CategoryHash returns the identifier of a category name.
func CategoryHash(name string) hash.Hash {
	return hash.FromString(name)
}

// FetchWhitelist returns a category whitelist by hash.
func FetchWhitelist(ctx context.Context, dbConn *db.DB, category hash.Hash) (*state.CallWhitelist, error) {
	wl, err := fetchWhitelist(ctx, dbConn, category)
	if err == db.ErrNotFound {
		return nil, errs.NotFound("Category is not initialized.")
	}
	return wl, err
}
