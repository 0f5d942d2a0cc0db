package commands

import (
	"github.com/spf13/cobra"
)

func summaryCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show this month's total, all-time total and budget usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := s.svc.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return renderSummary(cmd.OutOrStdout(), sum, s.asJSON)
		},
	}
}
