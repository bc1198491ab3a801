package main

import (
	"os"

	"github.com/starledger/starledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
