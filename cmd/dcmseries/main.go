package main

import (
	"os"

	"github.com/odincare/dcmseries/cmd/dcmseries/cmd"
)

func main() {
	if err := cmd.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
