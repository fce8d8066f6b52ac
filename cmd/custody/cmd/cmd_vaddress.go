package cmd

import (
	"github.com/vaultlane/custody/internal/registry"
	"github.com/vaultlane/custody/internal/vaddress"
	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	flagCategory = "category"
)

var cmdVAddress = &cobra.Command{
	Use:   "vaddress <holder-id> <user-token>",
	Short: "Derive the virtual address for a holder and user token.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) != 2 {
			return errors.New("Holder id and user token required")
		}

		holderID, err := hash.FromHex(args[0])
		if err != nil {
			return errors.Wrap(err, "parse holder id")
		}

		category := hash.Hash{}
		if name, _ := c.Flags().GetString(flagCategory); len(name) > 0 {
			category = registry.CategoryHash(name)
		}

		id := vaddress.VirtualID(holderID, args[1], category)

		return dumpJSON(map[string]interface{}{
			"virtual_id":   id,
			"address":      address.FromVirtual(id),
			"main_address": vaddress.MainAddress(holderID),
		})
	},
}

func init() {
	cmdVAddress.Flags().String(flagCategory, "", "category name scoping the virtual address")
}
