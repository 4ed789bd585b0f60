// main is the entry point for the epitrend CLI.
package main

import (
	"github.com/epiforge/epitrend/cmd"
	"github.com/epiforge/epitrend/internal/contract"
	"github.com/epiforge/epitrend/internal/runstore"
)

func main() {
	defer runstore.CloseStore()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
