package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the AUR metadata service by name or description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), strings.Join(args, " "))
		},
	}
	return cmd
}

func runSearch(ctx context.Context, query string) error {
	service := newAppService()
	results, err := service.AurMetadata.Search(ctx, query)
	if err != nil {
		return err
	}
	for _, pkg := range results {
		fmt.Printf("%s %s\n", pkg.Name, pkg.Version)
	}
	return nil
}
