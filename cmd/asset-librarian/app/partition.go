package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/asset-librarian/internal/app"
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Partition the catalog once and store the result",
	Long: `Fetch the configured catalog, assign its assets to the configured libraries
in priority order and write the output under the configured output path.`,
	RunE: runPartition,
}

func init() {
	addConfigFlag(partitionCmd)
	addOutputFlag(partitionCmd)
}

func runPartition(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := outputFormat(cmd); err != nil {
		return err
	}

	coord, err := app.NewCoordinator(app.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build partition components: %w", err)
	}

	result, runErr := coord.RunOnce(cmd.Context())
	if runErr != nil {
		return fmt.Errorf("partition failed (%s): %w", runErr.Reason, runErr)
	}

	slog.Info("Partition stored",
		"name", cfg.GetName(),
		"run_id", result.RunID,
		"output", cfg.GetOutputPath())

	return printOutput(cmd, result.Output)
}
