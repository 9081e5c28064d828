package commands

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/xlinear/core/fileio"
	"github.com/YuminosukeSato/xlinear/core/model"
	"github.com/YuminosukeSato/xlinear/dataset"
	"github.com/YuminosukeSato/xlinear/pkg/errors"
)

func newInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a checkpoint or a dataset",
	}
	cmd.AddCommand(newInspectModelCommand(), newInspectDataCommand())
	return cmd
}

func newInspectModelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "model <checkpoint>",
		Short: "Print the model summary as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.SafeExecute("inspect model", func() error {
				m, err := model.Load(args[0])
				if err != nil {
					return err
				}
				data, err := m.Summarize().ToJSON()
				if err != nil {
					return errors.Wrap(err, "encode summary")
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newInspectDataCommand() *cobra.Command {
	var (
		head      int
		labelFile string
	)
	cmd := &cobra.Command{
		Use:   "data <file>",
		Short: "Print dataset statistics as JSON",
		Long: `Parse a LIBSVM file and print instance, feature and label statistics.
With --head n the first n raw lines are printed before the statistics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.SafeExecute("inspect data", func() error {
				path := args[0]
				out := cmd.OutOrStdout()
				if head > 0 {
					if err := printHead(cmd, path, head); err != nil {
						return err
					}
				}

				var opts []dataset.Option
				if labelFile != "" {
					names, err := dataset.ReadLabelFile(labelFile)
					if err != nil {
						return err
					}
					opts = append(opts, dataset.WithLabelMapping(names))
				}
				ds, err := dataset.Load(path, opts...)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(ds.Describe(), "", "  ")
				if err != nil {
					return errors.Wrap(err, "encode stats")
				}
				fmt.Fprintln(out, string(data))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&head, "head", 0, "print the first n lines")
	cmd.Flags().StringVar(&labelFile, "label-file", "", "label names, one per line")
	return cmd
}

func printHead(cmd *cobra.Command, path string, n int) error {
	r, err := fileio.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	out := cmd.OutOrStdout()
	for i := 0; i < n && sc.Scan(); i++ {
		fmt.Fprintln(out, sc.Text())
	}
	return errors.Wrapf(sc.Err(), "read %s", path)
}
