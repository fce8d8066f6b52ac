package cmd

import (
	"github.com/vaultlane/custody/cmd/custody/bootstrap"
	"github.com/vaultlane/custody/internal/registry"

	"github.com/spf13/cobra"
)

var cmdCategories = &cobra.Command{
	Use:   "categories",
	Short: "Display the registry owner and registered call categories.",
	RunE: func(c *cobra.Command, args []string) error {
		ctx := bootstrap.NewContextWithDevelopmentLogger()
		cfg := bootstrap.NewConfigFromEnv(ctx)
		masterDB := bootstrap.NewMasterDB(ctx, cfg)
		defer masterDB.Close()

		r, err := registry.Fetch(ctx, masterDB)
		if err != nil {
			return err
		}

		if err := dumpJSON(r); err != nil {
			return err
		}

		for _, category := range r.Categories {
			wl, err := registry.FetchWhitelist(ctx, masterDB, registry.CategoryHash(category))
			if err != nil {
				return err
			}

			if err := dumpJSON(map[string]interface{}{
				"category":  category,
				"whitelist": wl,
			}); err != nil {
				return err
			}
		}

		return nil
	},
}
