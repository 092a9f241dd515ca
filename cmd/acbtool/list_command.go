package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/thefrozenfishy/acb"
)

func newListCommand() *cobra.Command {
	var awbFlag string
	var encodingFlag string

	cmd := &cobra.Command{
		Use:   "list <file.acb>",
		Short: "List the tracks in a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := openOptions(awbFlag, encodingFlag)
			if err != nil {
				return err
			}

			f, err := acb.Open(args[0], opts...)
			if err != nil {
				return err
			}
			defer f.Close()

			fmt.Fprintln(cmd.OutOrStdout(), renderTrackTable(f.Tracks))
			fmt.Fprintf(cmd.OutOrStdout(), "%d tracks (%s)\n", len(f.Tracks), f.Encoding)
			return nil
		},
	}

	cmd.Flags().StringVar(&awbFlag, "awb", "", "Path to the external AWB archive")
	cmd.Flags().StringVar(&encodingFlag, "encoding", "", "Cue name encoding: shift-jis or utf-8 (default: auto)")

	return cmd
}

func renderTrackTable(tracks []acb.Track) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Name", "Codec", "Source", "Filename"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	for _, t := range tracks {
		source := "embedded"
		if t.Streaming {
			source = "stream"
		}
		tw.AppendRow(table.Row{t.ID, t.Name, codecName(t.EncodeType), source, acb.TrackFilename(t)})
	}
	return tw.Render()
}

func openOptions(awb, encoding string) ([]acb.Option, error) {
	var opts []acb.Option
	if awb != "" {
		opts = append(opts, acb.WithExternalAWB(awb))
	}
	switch encoding {
	case "":
	case "shift-jis", "sjis":
		opts = append(opts, acb.WithEncoding(acb.EncodingShiftJIS))
	case "utf-8", "utf8":
		opts = append(opts, acb.WithEncoding(acb.EncodingUTF8))
	default:
		return nil, fmt.Errorf("unknown encoding %q (want shift-jis or utf-8)", encoding)
	}
	return opts, nil
}

func codecName(encodeType uint8) string {
	switch encodeType {
	case acb.EncodeTypeADX:
		return "ADX"
	case acb.EncodeTypeHCA:
		return "HCA"
	case acb.EncodeTypeVAG:
		return "VAG"
	case acb.EncodeTypeATRAC3:
		return "ATRAC3"
	case acb.EncodeTypeBCWAV:
		return "BCWAV"
	case acb.EncodeTypeNintendoDSP:
		return "DSP"
	default:
		return strconv.Itoa(int(encodeType))
	}
}
