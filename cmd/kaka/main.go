package main

import (
	"os"

	"github.com/kakasub/kaka/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
