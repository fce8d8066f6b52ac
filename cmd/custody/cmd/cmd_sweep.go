package cmd

import (
	"github.com/vaultlane/custody/cmd/custody/bootstrap"
	"github.com/vaultlane/custody/internal/platform/state"
	"github.com/vaultlane/custody/internal/withdraw"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/spf13/cobra"
)

var cmdSweep = &cobra.Command{
	Use:   "sweep",
	Short: "Remove withdraw requests that have outlived the expiry window.",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := bootstrap.NewContextWithDevelopmentLogger()
		cfg := bootstrap.NewConfigFromEnv(ctx)
		masterDB := bootstrap.NewMasterDB(ctx, cfg)
		defer masterDB.Close()

		now := state.NewTimestamp(clock.NewDefaultClock().Now())

		removed, err := withdraw.Sweep(ctx, masterDB, now)
		if err != nil {
			return err
		}

		return dumpJSON(map[string]interface{}{
			"removed": removed,
		})
	},
}
