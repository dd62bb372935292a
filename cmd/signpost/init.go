// Init command for the signpost CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/signpost/internal/sqlite"
)

var flagDemo bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize signpost storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if err := ensureConfigDir(configDir); err != nil {
			return fmt.Errorf("init: %w", err)
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return fmt.Errorf("init: %w", err)
		}

		// Attach creates the data directory and database schema.
		store, err := attachBackend()
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}
		defer store.Detach()

		dataDir, err := resolveDataDir()
		if err != nil {
			return fmt.Errorf("init: %w", err)
		}

		fmt.Println("Signpost initialized successfully")
		fmt.Println("  config:", configDir)
		fmt.Println("  data:  ", dataDir)

		if flagDemo {
			bundle, err := sqlite.Seed(store, flagUser)
			if err != nil {
				return fmt.Errorf("seed demo template: %w", err)
			}
			fmt.Println("  demo template:", bundle.Template.TemplateID)
		}
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&flagDemo, "demo", false, "seed the built-in demo template")
}
