package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/extract"
	"github.com/joseph-ayodele/awb-extractor/internal/schema"
)

type rootOptions struct {
	timezone string
	verbose  bool
	now      func() time.Time
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{now: time.Now}
	root := &cobra.Command{
		Use:   "awbctl",
		Short: "Inspect AWB shipping-label extraction from the command line",
		Long: `awbctl runs the label extraction engine on local text files.

Usage:
  awbctl extract <file|-> [flags]
  awbctl detect <file|->
  awbctl schema`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.timezone, "tz", "Asia/Kuala_Lumpur", "Timezone used for the default ship date")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log rule decisions to stderr")

	root.AddCommand(newExtractCmd(opts), newDetectCmd(opts), newSchemaCmd())
	return root
}

func (o *rootOptions) assembler(cmd *cobra.Command) (*extract.Assembler, error) {
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", o.timezone, err)
	}
	asmOpts := []extract.Option{extract.WithLocation(loc), extract.WithClock(o.now)}
	if o.verbose {
		h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		asmOpts = append(asmOpts, extract.WithLogger(slog.New(h)))
	}
	return extract.NewAssembler(asmOpts...), nil
}

// readInput reads a file, or stdin when name is "-".
func readInput(cmd *cobra.Command, name string) (string, error) {
	var (
		b   []byte
		err error
	)
	if name == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type diagnostics struct {
	Status    constants.DocumentStatus   `json:"status"`
	Defaulted []constants.Field          `json:"defaulted"`
	Rules     map[constants.Field]string `json:"rules"`
	Warnings  []string                   `json:"warnings"`
}

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var withDiagnostics bool
	cmd := &cobra.Command{
		Use:   "extract <file|->",
		Short: "Extract a structured record from a label text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			asm, err := opts.assembler(cmd)
			if err != nil {
				return err
			}
			res, err := asm.AssembleDetailed(text)
			if err != nil {
				return err
			}

			var out any = res.Record
			if withDiagnostics {
				d := diagnostics{
					Status:    res.Status(),
					Defaulted: res.DefaultedFields(),
					Rules:     res.Rules,
				}
				for _, w := range res.Warnings {
					d.Warnings = append(d.Warnings, w.Error())
				}
				out = struct {
					Record      any         `json:"record"`
					Diagnostics diagnostics `json:"diagnostics"`
				}{res.Record, d}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&withDiagnostics, "diagnostics", false, "Include defaulted fields, matched rules and warnings")
	return cmd
}

func newDetectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file|->",
		Short: "Print the marketplace a label belongs to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			asm, err := opts.assembler(cmd)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), asm.Classify(text))
			return err
		},
	}
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of an extracted record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(schema.BuildRecordJSONSchema())
		},
	}
}
