package main

import (
	"os"

	"github.com/drgo/bibdoc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
