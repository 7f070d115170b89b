package main

import (
	"os"

	"github.com/ignite/kcheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
