package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nconklindev/sweeper/internal/config"
	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/logging"
	"github.com/nconklindev/sweeper/internal/types"
	"github.com/nconklindev/sweeper/internal/ui"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type convertOptions struct {
	to        string
	dedupe    bool
	fill      bool
	fillFirst bool
	columns   []string
	outDir    string
	workers   int
}

func newConvertCmd() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Clean and convert one or more files",
		Long: `Convert CSV and XLSX files to the target format.

Each file is processed on its own: a file that fails is reported and the
rest still run. Output goes next to each input unless --out is given.

Examples:
  sweeper convert --to excel data.csv
  sweeper convert --dedupe --fill --columns id,score --out converted/ *.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			return runConvert(cmd, cfg, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.to, "to", "t", "", "target format: csv or excel (default from config)")
	f.BoolVar(&opts.dedupe, "dedupe", false, "remove duplicate rows")
	f.BoolVar(&opts.fill, "fill", false, "fill missing numeric cells with the column mean")
	f.BoolVar(&opts.fillFirst, "fill-first", false, "fill missing values before removing duplicates")
	f.StringSliceVar(&opts.columns, "columns", nil, "columns to keep (default all)")
	f.StringVarP(&opts.outDir, "out", "o", "", "output directory (default next to each input)")
	f.IntVarP(&opts.workers, "workers", "w", 0, "files converted in parallel (default from config)")

	return cmd
}

// loadCommandConfig loads the config and points logging at stderr.
func loadCommandConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	return cfg, nil
}

// buildRequest merges flags over config defaults.
func buildRequest(cmd *cobra.Command, cfg *config.Config, opts *convertOptions) (converter.Request, error) {
	req := converter.Request{
		Cleaning: cfg.CleaningChoice(),
		Target:   cfg.TargetFormat(),
	}

	f := cmd.Flags()
	if opts.to != "" {
		target, err := types.ParseFormat(opts.to)
		if err != nil {
			return req, err
		}
		req.Target = target
	}
	if f.Changed("dedupe") {
		req.Cleaning.RemoveDuplicates = opts.dedupe
	}
	if f.Changed("fill") {
		req.Cleaning.FillMissingNumeric = opts.fill
	}
	if f.Changed("fill-first") {
		req.Cleaning.FillFirst = opts.fillFirst
	}
	if f.Changed("columns") {
		req.Columns = opts.columns
		if req.Columns == nil {
			req.Columns = []string{}
		}
	}
	return req, nil
}

func runConvert(cmd *cobra.Command, cfg *config.Config, opts *convertOptions, paths []string) error {
	req, err := buildRequest(cmd, cfg, opts)
	if err != nil {
		return err
	}

	workers := cfg.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}
	outDir := cfg.Output.Dir
	if opts.outDir != "" {
		outDir = opts.outDir
	}

	out := cmd.OutOrStdout()
	failed := 0

	// Unreadable paths are reported up front; the rest run as one batch.
	var uploads []converter.Upload
	var uploadPaths []string
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			printFailure(out, path, err)
			failed++
			continue
		}
		uploads = append(uploads, converter.Upload{Name: path, Data: data})
		uploadPaths = append(uploadPaths, path)
	}

	results := converter.ProcessBatch(context.Background(), uploads, req, workers)
	for i, res := range results {
		if res.Err == nil {
			res.Err = converter.WriteOutput(res.Output, uploadPaths[i], outDir)
		}
		if res.Err != nil {
			printFailure(out, res.Name, res.Err)
			failed++
			continue
		}
		fmt.Fprintln(out, ui.SuccessStyle.Render(fmt.Sprintf("✓ %s → %s", res.Name, res.Output.OutputFile))+
			fmt.Sprintf(" (%d rows, %d columns)", res.Output.RowsWritten, len(res.Output.Columns)))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(paths))
	}
	return nil
}

func printFailure(w io.Writer, name string, err error) {
	fmt.Fprintln(w, ui.ErrorStyle.Render(fmt.Sprintf("✗ %s: %v", name, err)))
}

func newInspectCmd() *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show a file's size, columns and first rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCommandConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("rows") {
				rows = cfg.Preview.Rows
			}

			info, err := converter.ReadFile(args[0])
			if err != nil {
				return err
			}
			printInspect(cmd.OutOrStdout(), info, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 5, "number of rows to preview")
	return cmd
}

func printInspect(w io.Writer, info *types.FileInfo, rows int) {
	t := info.Table

	fmt.Fprintln(w, ui.TitleStyle.Render(info.Name))
	fmt.Fprintf(w, "Format: %s\n", info.Format)
	fmt.Fprintf(w, "Size:   %s\n", humanize.Bytes(uint64(info.SizeBytes)))
	fmt.Fprintf(w, "Rows:   %d\n", info.RowCount())
	fmt.Fprintln(w)

	columns := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42"))).
		Headers("COLUMN", "KIND")
	for _, c := range t.Columns {
		columns.Row(c.Name, c.Kind.String())
	}
	fmt.Fprintln(w, columns.Render())

	if numeric := converter.NumericColumns(t); len(numeric) > 0 {
		fmt.Fprintf(w, "Numeric columns: %s\n", strings.Join(numeric, ", "))
	}

	if len(t.Columns) == 0 || rows == 0 {
		return
	}

	preview := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42"))).
		Headers(t.ColumnNames()...)
	for _, row := range t.Head(rows) {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.String()
		}
		preview.Row(cells...)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, preview.Render())
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported file formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, f := range converter.ListSupportedFormats() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s %-6s %s\n", f, f.Ext(), f.MediaType())
			}
		},
	}
}
