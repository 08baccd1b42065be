package main

import (
	"os"

	"github.com/wkalt/mohair/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
