package main

import (
	"os"

	"github.com/kitrader/kitrader/cmd/kitrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
