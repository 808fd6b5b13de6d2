package main

import (
	"os"

	"github.com/mealhub-dev/mealhub/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
