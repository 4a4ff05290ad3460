// main is the entry point for the mrpulse CLI.
package main

import (
	"github.com/mrpulse/mrpulse/cmd"
	"github.com/mrpulse/mrpulse/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
