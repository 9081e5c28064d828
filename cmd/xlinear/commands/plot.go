package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/xlinear/pkg/errors"
	"github.com/YuminosukeSato/xlinear/pkg/log"
	"github.com/YuminosukeSato/xlinear/plotting"
)

func newPlotCommand() *cobra.Command {
	var (
		logDirs []string
		names   []string
		outDir  string
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Compare loss, Micro-F1 and RP@5 curves of several runs",
		Long: `Read the per-epoch logs of every run directory and draw one PNG per
metric with one line per run. Each directory may contain train_log.json
and val_log.json (JSON lines, one record per epoch).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return errors.SafeExecute("plot", func() error {
				if len(names) == 0 {
					names = logDirs
				}
				if len(names) != len(logDirs) {
					return errors.NewValidationError("names", "must match the number of log directories", len(names))
				}

				runs := make([]plotting.Run, len(logDirs))
				for i, dir := range logDirs {
					h, err := plotting.LoadHistory(dir)
					if err != nil {
						return err
					}
					runs[i] = plotting.Run{Name: names[i], History: h}
				}
				files, err := plotting.PlotComparison(runs, outDir)
				if err != nil {
					return err
				}
				log.GetLoggerWithName("cli").Info("Plots saved",
					log.OperationKey, log.OperationPlot,
					log.PathKey, outDir,
				)
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&logDirs, "log-dirs", nil, "run directories holding epoch logs")
	cmd.Flags().StringSliceVar(&names, "names", nil, "legend names (default: the directories)")
	cmd.Flags().StringVar(&outDir, "output-dir", "plots", "directory for the PNG files")
	_ = cmd.MarkFlagRequired("log-dirs")
	return cmd
}
