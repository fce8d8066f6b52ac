package cmd

import (
	"github.com/spf13/cobra"
)

var custodyCmd = &cobra.Command{
	Use:   "custody",
	Short: "Asset custody engine CLI",
}

func Execute() {
	custodyCmd.AddCommand(cmdInit)
	custodyCmd.AddCommand(cmdCategories)
	custodyCmd.AddCommand(cmdState)
	custodyCmd.AddCommand(cmdVAddress)
	custodyCmd.AddCommand(cmdSweep)
	custodyCmd.Execute()
}
