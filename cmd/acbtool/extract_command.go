package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thefrozenfishy/acb"
)

func newExtractCommand() *cobra.Command {
	var outFlag string
	var awbFlag string
	var encodingFlag string

	cmd := &cobra.Command{
		Use:   "extract <file.acb>...",
		Short: "Extract every track into a directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := openOptions(awbFlag, encodingFlag)
			if err != nil {
				return err
			}
			if stat, err := os.Stat(outFlag); err != nil {
				return fmt.Errorf("output directory: %w", err)
			} else if !stat.IsDir() {
				return fmt.Errorf("output path %s is not a directory", outFlag)
			}

			if err := acb.ExtractMany(cmd.Context(), args, outFlag, opts...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d container(s) to %s\n", len(args), outFlag)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFlag, "out", "o", ".", "Output directory (must exist)")
	cmd.Flags().StringVar(&awbFlag, "awb", "", "Path to the external AWB archive")
	cmd.Flags().StringVar(&encodingFlag, "encoding", "", "Cue name encoding: shift-jis or utf-8 (default: auto)")

	return cmd
}
