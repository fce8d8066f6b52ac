package cmd

import (
	"strings"

	"github.com/vaultlane/custody/cmd/custody/bootstrap"
	"github.com/vaultlane/custody/internal/holder"
	"github.com/vaultlane/custody/internal/withdraw"
	"github.com/vaultlane/custody/pkg/hash"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var cmdState = &cobra.Command{
	Use:   "state <holder-id>",
	Short: "Display a holder and its pending withdraw requests.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("Missing holder id")
		}

		holderID, err := hash.FromHex(args[0])
		if err != nil {
			return errors.Wrap(err, "parse holder id")
		}

		ctx := bootstrap.NewContextWithDevelopmentLogger()
		cfg := bootstrap.NewConfigFromEnv(ctx)
		masterDB := bootstrap.NewMasterDB(ctx, cfg)
		defer masterDB.Close()

		h, err := holder.Retrieve(ctx, masterDB, holderID)
		if err != nil {
			return err
		}

		if err := dumpJSON(h); err != nil {
			return err
		}

		keys, err := withdraw.List(ctx, masterDB)
		if err != nil {
			return err
		}

		for _, key := range keys {
			parts := strings.Split(key, "/")

			withdrawID, err := hash.FromHex(parts[len(parts)-1])
			if err != nil {
				continue
			}

			w, err := withdraw.Fetch(ctx, masterDB, withdrawID)
			if err != nil {
				return err
			}

			if !w.HolderID.Equal(holderID) {
				continue
			}

			if err := dumpJSON(w); err != nil {
				return err
			}
		}

		return nil
	},
}
