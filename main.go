package main

import (
	"os"

	"github.com/stagewatch/stagewatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
