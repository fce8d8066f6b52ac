package main

import (
	"github.com/vaultlane/custody/cmd/custody/cmd"
)

func main() {
	cmd.Execute()
}
