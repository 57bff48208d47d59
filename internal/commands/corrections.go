package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SilasRoe/raccolta-dati/internal/corrections"
)

func newCorrectionsCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Manage the learned product rename table",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "raccolta.yaml", "path to the configuration file")

	list := &cobra.Command{
		Use:   "list",
		Short: "List learned corrections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := loadConfigOrDefault(configPath).Corrections.Path
			table, err := corrections.Load(path)
			if err != nil {
				return err
			}
			for _, wrong := range table.Keys() {
				fmt.Printf("%s -> %s\n", wrong, table[wrong])
			}
			return nil
		},
	}

	learn := &cobra.Command{
		Use:   "learn <wrong> <correct>",
		Short: "Record a product name correction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := loadConfigOrDefault(configPath).Corrections.Path
			table, err := corrections.Load(path)
			if err != nil {
				return err
			}
			table.Learn(args[0], args[1])
			return corrections.Save(path, table)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <wrong>",
		Short: "Forget a learned correction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := loadConfigOrDefault(configPath).Corrections.Path
			table, err := corrections.Load(path)
			if err != nil {
				return err
			}
			if !table.Remove(args[0]) {
				return fmt.Errorf("no correction recorded for %q", args[0])
			}
			return corrections.Save(path, table)
		},
	}

	cmd.AddCommand(list, learn, remove)
	return cmd
}
