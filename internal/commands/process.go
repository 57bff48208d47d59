package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/SilasRoe/raccolta-dati/internal/archive"
	"github.com/SilasRoe/raccolta-dati/internal/config"
	"github.com/SilasRoe/raccolta-dati/internal/corrections"
	"github.com/SilasRoe/raccolta-dati/internal/reconcile"
	"github.com/SilasRoe/raccolta-dati/internal/records"
	"github.com/SilasRoe/raccolta-dati/internal/runlog"
)

func newProcessCommand() *cobra.Command {
	var ledgerPath string
	var configPath string

	cmd := &cobra.Command{
		Use:   "process <records.json>",
		Short: "Merge extracted records into the order book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(args[0], ledgerPath, configPath)
		},
	}

	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "path to the xlsx order book (overrides config)")
	cmd.Flags().StringVar(&configPath, "config", "raccolta.yaml", "path to the configuration file")

	return cmd
}

func runProcess(recordsPath, ledgerPath, configPath string) error {
	cfg := loadConfigOrDefault(configPath)

	recs, err := records.Load(recordsPath)
	if err != nil {
		return err
	}

	table, err := corrections.Load(cfg.Corrections.Path)
	if err != nil {
		return err
	}
	if applied := table.Apply(recs); applied > 0 {
		fmt.Printf("Applied %d learned product corrections\n", applied)
	}

	if ledgerPath == "" {
		ledgerPath = cfg.Ledger.Path
	}
	if ledgerPath == "" {
		return errors.New("no ledger path: pass --ledger or set ledger.path in the config")
	}

	start := time.Now()
	res, err := reconcile.Run(recs, reconcile.Options{
		Path:        ledgerPath,
		MarkerLabel: cfg.Ledger.MarkerLabel,
		Progress: func(current, total int) {
			fmt.Printf("processed %d/%d\n", current, total)
		},
	})
	if err != nil {
		return err
	}

	fmt.Println(res.Summary)
	if res.Cancelled {
		return nil
	}

	entry := runlog.Entry{
		RunID:     uuid.NewString(),
		Timestamp: time.Now(),
		File:      ledgerPath,
		Updated:   res.Updated,
		Inserted:  res.Inserted,
		Duration:  time.Since(start),
	}
	if err := runlog.Append(cfg.RunLog.Path, entry); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not write run log: %v\n", err)
	}

	if cfg.Archive.Dir != "" {
		if err := archive.Move([]string{recordsPath}, cfg.Archive.Dir); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not archive records file: %v\n", err)
		}
	}

	return nil
}

// loadConfigOrDefault falls back to defaults when no config file
// exists, so the tool works out of the box.
func loadConfigOrDefault(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Default()
	}
	return cfg
}
