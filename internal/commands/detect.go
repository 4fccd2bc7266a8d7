package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newDetectCommand(newService serviceFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <statement.pdf> [more.pdf ...]",
		Short: "Report which bank issued each statement",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService()
			if err != nil {
				return err
			}

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				bank, err := svc.Detect(cmd.Context(), data)
				if err != nil {
					return fmt.Errorf("detecting %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", path, bank, bank.DisplayName())
			}
			return nil
		},
	}
}
