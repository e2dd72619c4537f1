package main

import (
	"os"

	"fiberwatch.sh/cmd/fiberwatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
