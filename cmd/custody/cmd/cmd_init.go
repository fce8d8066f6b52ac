package cmd

import (
	"context"
	"encoding/json"
	"io/ioutil"

	"github.com/vaultlane/custody/cmd/custody/bootstrap"
	"github.com/vaultlane/custody/internal/platform/node"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/internal/registry"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// initFile is the JSON layout of the seed file.
type initFile struct {
	Owner      address.Address                     `json:"owner"`
	Whitelists map[string][]*state.WhitelistEntry `json:"whitelists"`
}

var cmdInit = &cobra.Command{
	Use:   "init <file>",
	Short: "Initialize the registry and category whitelists from a JSON file.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("Missing seed file")
		}

		ctx := bootstrap.NewContextWithDevelopmentLogger()
		cfg := bootstrap.NewConfigFromEnv(ctx)
		masterDB := bootstrap.NewMasterDB(ctx, cfg)
		defer masterDB.Close()

		b, err := ioutil.ReadFile(args[0])
		if err != nil {
			return err
		}

		seed := initFile{}
		if err := json.Unmarshal(b, &seed); err != nil {
			return errors.Wrap(err, "parse seed file")
		}

		whitelists := make(map[string]*state.CallWhitelist, len(seed.Whitelists))
		for category, entries := range seed.Whitelists {
			whitelists[category] = &state.CallWhitelist{Entries: entries}
		}

		ctx = contextWithCallValues(ctx, seed.Owner)
		return registry.Initialize(ctx, masterDB, whitelists)
	},
}

// contextWithCallValues builds call values for a locally signed operation.
func contextWithCallValues(ctx context.Context, caller address.Address) context.Context {
	uid, _ := uuid.NewRandom()
	prev, _ := uuid.NewRandom()
	now := clock.NewDefaultClock().Now()

	return node.ContextWithValues(ctx, &node.Values{
		TraceID:   uid.String(),
		Caller:    caller,
		TxID:      hash.Compute(uid[:]),
		PrevBlock: hash.Compute(prev[:]),
		Now:       state.NewTimestamp(now),
	})
}
