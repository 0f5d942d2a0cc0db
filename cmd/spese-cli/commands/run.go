package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

func runCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "run <sentence>",
		Short:   "Interpret and apply one sentence",
		Example: `  spese-cli run spent 12.50 on lunch yesterday` + "\n" + `  spese-cli run "how much on coffee this month"`,
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := s.svc.Execute(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), out, s.asJSON)
		},
	}
}
