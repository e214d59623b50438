package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/asset-librarian/internal/app"
	"github.com/stacklok/asset-librarian/internal/service"
)

var librariesCmd = &cobra.Command{
	Use:   "libraries",
	Short: "List the libraries stored by the last partition run",
	RunE:  runLibraries,
}

func init() {
	addConfigFlag(librariesCmd)
	addOutputFlag(librariesCmd)
	librariesCmd.Flags().String("name", "", "Only list libraries whose name matches this glob")
}

func runLibraries(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	pattern, err := cmd.Flags().GetString("name")
	if err != nil {
		return fmt.Errorf("failed to get name flag: %w", err)
	}

	svc, err := app.NewLibraryService(app.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to build library service: %w", err)
	}

	var opts []service.Option[service.ListLibrariesOptions]
	if pattern != "" {
		opts = append(opts, service.WithName(pattern))
	}

	list, err := svc.ListLibraries(cmd.Context(), opts...)
	if err != nil {
		return err
	}

	return printLibraryList(cmd, list)
}
