// SPDX-License-Identifier: MIT

// Command vcest fits the shared random-effects covariance V of
// θᵢ ~ N(0, V + Sᵢ) from a file of observations, computes jackknife standard
// errors, and simulates datasets.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/pterm/pterm"

	"github.com/katalvlaran/varcomp/cmd/vcest/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := commands.NewRootCmd().ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
