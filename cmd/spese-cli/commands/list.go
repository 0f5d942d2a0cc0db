package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

func listCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "list [filters]",
		Short:   "List expenses, optionally narrowed by a phrase",
		Example: `  spese-cli list coffee over 5 last week`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := s.svc.Execute(cmd.Context(), strings.TrimSpace("show "+strings.Join(args, " ")))
			if err != nil {
				return err
			}
			return renderExpenses(cmd.OutOrStdout(), out.Expenses, s.asJSON)
		},
	}
}
