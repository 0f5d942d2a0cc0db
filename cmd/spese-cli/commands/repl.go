package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func replCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read sentences interactively until exit or end of input",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			prompt := interactive(cmd.InOrStdin())
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				if prompt {
					fmt.Fprint(w, "> ")
				}
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch strings.ToLower(line) {
				case "exit", "quit":
					return nil
				}
				out, err := s.svc.Execute(cmd.Context(), line)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					continue
				}
				if err := render(w, out, s.asJSON); err != nil {
					return err
				}
			}
		},
	}
}
