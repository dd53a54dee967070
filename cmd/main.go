package main

import (
	"os"

	"github.com/duograph/duograph/cmd/duograph"
)

func main() {
	if err := duograph.Execute(); err != nil {
		os.Exit(1)
	}
}
