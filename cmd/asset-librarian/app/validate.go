package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/asset-librarian/internal/library"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file and build its libraries without fetching the catalog.
Shared filter references and filter patterns are checked.`,
	RunE: runValidate,
}

func init() {
	addConfigFlag(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	libs, err := library.Build(cfg)
	if err != nil {
		return fmt.Errorf("invalid libraries: %w", err)
	}

	w := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(w, "Valid configuration\n  Name: %s\n  Source type: %s\n  Libraries: %d\n",
		cfg.GetName(), cfg.Catalog.GetType(), len(libs)); err != nil {
		return err
	}
	if interval := cfg.GetSyncInterval(); interval > 0 {
		_, err = fmt.Fprintf(w, "  Sync interval: %s\n", interval)
	}
	return err
}
