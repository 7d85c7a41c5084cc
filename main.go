package main

import (
	"os"

	"github.com/ronitrai27/clario-career-platform-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
