package main

import (
	"os"

	"github.com/pbinitiative/zenflow/cmd/zenflow/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
