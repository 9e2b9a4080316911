package main

import (
	"fmt"
	"os"

	"github.com/nconklindev/sweeper/internal/config"
	"github.com/nconklindev/sweeper/internal/logging"
	"github.com/nconklindev/sweeper/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sweeper",
		Short: "Preview, clean and convert CSV and Excel files",
		Long: `Sweeper converts tabular files between CSV and Excel (.xlsx), with
duplicate removal, mean-fill of missing numbers and column selection.

Run without arguments for the interactive file browser, or use the
convert command for batches.

Examples:
  sweeper
  sweeper inspect data.xlsx
  sweeper convert --to excel --dedupe --fill data.csv other.csv`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runInteractive,
	}
	root.SetVersionTemplate(fmt.Sprintf("sweeper %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/sweeper/config.yaml)")

	root.AddCommand(newConvertCmd(), newInspectCmd(), newFormatsCmd())
	return root
}

func runInteractive(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	closer, err := logging.SetupFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closer.Close()

	p := tea.NewProgram(ui.InitialModel(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}
