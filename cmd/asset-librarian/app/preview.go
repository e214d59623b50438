package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/asset-librarian/internal/app"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show what a library would contain without storing anything",
	RunE:  runPreview,
}

func init() {
	addConfigFlag(previewCmd)
	addOutputFlag(previewCmd)
	previewCmd.Flags().StringP("library", "l", "", "Name of the library to preview (required)")
	if err := previewCmd.MarkFlagRequired("library"); err != nil {
		slog.Error("Failed to mark library flag as required", "error", err)
	}
}

func runPreview(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("library")
	if err != nil {
		return fmt.Errorf("failed to get library flag: %w", err)
	}

	svc, err := app.NewLibraryService(app.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build library service: %w", err)
	}

	preview, err := svc.PreviewLibrary(cmd.Context(), name)
	if err != nil {
		return err
	}

	return printRefs(cmd, preview, preview.Assets)
}
