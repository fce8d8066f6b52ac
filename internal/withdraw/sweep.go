package withdraw

import (
	"context"
	"strings"

	"github.com/vaultlane/custody/internal/platform/db"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/pkg/hash"

	"github.com/tokenized/pkg/logger"
	"go.opencensus.io/trace"
)

// Sweep removes every pending withdraw request that has outlived the expiry
// window. Expiry normally happens lazily on the next approval attempt; the
// sweep is the operator path that clears requests nobody ever touches again.
// It returns the ids it removed.
func Sweep(ctx context.Context, dbConn *db.DB, now state.Timestamp) ([]hash.Hash, error) {
	ctx, span := trace.StartSpan(ctx, "internal.withdraw.Sweep")
	defer span.End()

	keys, err := List(ctx, dbConn)
	if err != nil {
		return nil, err
	}

	var removed []hash.Hash
	for _, key := range keys {
		parts := strings.Split(key, "/")

		withdrawID, err := hash.FromHex(parts[len(parts)-1])
		if err != nil {
			continue
		}

		w, err := Fetch(ctx, dbConn, withdrawID)
		if err == db.ErrNotFound {
			continue
		} else if err != nil {
			return removed, err
		}

		if now.SecondsSince(w.AddedTime) < ExpiryWindowSeconds {
			continue
		}

		if err := Remove(ctx, dbConn, withdrawID); err != nil {
			return removed, err
		}
		removed = append(removed, withdrawID)

		logger.Info(ctx, "Swept expired withdraw %s on holder %s", withdrawID, w.HolderID)
	}

	return removed, nil
}
