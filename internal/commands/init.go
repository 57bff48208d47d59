package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/SilasRoe/raccolta-dati/internal/config"
	"github.com/SilasRoe/raccolta-dati/internal/corrections"
)

func newInitCommand() *cobra.Command {
	var ledgerPath string
	var archiveDir string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default raccolta.yaml setup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, ledgerPath, archiveDir)
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "path of the xlsx order book")
	cmd.Flags().StringVar(&archiveDir, "archive-dir", "processed", "directory for processed source files")

	return cmd
}

func runInit(dir, ledgerPath, archiveDir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfg := config.Default()
	cfg.Ledger.Path = ledgerPath
	cfg.Archive.Dir = archiveDir
	cfg.Corrections.Path = filepath.Join(dir, "corrections.json")
	cfg.RunLog.Path = filepath.Join(dir, "runs.csv")

	if err := config.Save(filepath.Join(dir, "raccolta.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := corrections.Save(cfg.Corrections.Path, corrections.Table{}); err != nil {
		return fmt.Errorf("writing corrections: %w", err)
	}

	if archiveDir != "" {
		if err := os.MkdirAll(filepath.Join(dir, archiveDir), 0o755); err != nil {
			return fmt.Errorf("creating archive dir: %w", err)
		}
	}

	fmt.Printf("Initialized raccolta setup at %s\n", dir)
	return nil
}
