// Command xlinear evaluates linear, label-tree and tree-ensemble models on
// LIBSVM data and plots metric histories.
//
// Usage:
//
//	xlinear [flags] <command> [args]
//
// Commands:
//
//	predict    - Score a test set, report metrics, save predictions
//	inspect    - Summarize a checkpoint or a dataset
//	plot       - Compare metric curves of several runs
package main

import (
	"fmt"
	"os"

	"github.com/YuminosukeSato/xlinear/cmd/xlinear/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
