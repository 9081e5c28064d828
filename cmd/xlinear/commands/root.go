package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlinear",
		Short: "Batch inference for large-label-space linear classifiers",
		Long: `xlinear - evaluate flat, label-tree and tree-ensemble linear models.

Examples:
  # Evaluate a checkpoint with a YAML config
  xlinear predict -c eval.yml

  # Override options from the command line
  xlinear predict --checkpoint model.gob --test-file test.svm --beam-width 20 \
      --save-k 5 --out pred.txt.zst

  # Summarize a checkpoint
  xlinear inspect model model.gob

  # Compare training runs
  xlinear plot --log-dirs runs/adam runs/sgd --names adam sgd`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPredictCommand(), newInspectCommand(), newPlotCommand())
	return root
}

// Execute runs the CLI until completion or interrupt. An interrupt stops a
// prediction run at the next batch boundary.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
