package main

import (
	"os"

	"github.com/diunito/Oasis/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
