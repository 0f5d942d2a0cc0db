package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quickspese/internal/cli"
	"quickspese/internal/config"
	"quickspese/internal/log"
	"quickspese/internal/services"
)

// session holds what every subcommand needs once flags are parsed.
type session struct {
	backendType string
	stateFile   string
	dbPath      string
	weekStart   string
	asJSON      bool
	verbose     bool

	svc     *services.CommandService
	cleanup func() error
}

func Execute() error {
	root, s := newRootCmd()
	defer s.close()
	return root.Execute()
}

// newRootCmd builds the command tree. Flags override the environment.
func newRootCmd() (*cobra.Command, *session) {
	s := &session{}

	root := &cobra.Command{
		Use:           "spese-cli",
		Short:         "Track expenses by typing plain sentences",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsBackend(cmd) {
				return nil
			}
			return s.open(cmd.Context(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.backendType, "backend", "", "data backend: memory, file or sqlite (default from DATA_BACKEND)")
	flags.StringVar(&s.stateFile, "state-file", "", "JSON state file for the file backend")
	flags.StringVar(&s.dbPath, "db", "", "database path for the sqlite backend")
	flags.StringVar(&s.weekStart, "week-start", "", "first day of the week")
	flags.BoolVar(&s.asJSON, "json", false, "print results as JSON")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(runCmd(s), replCmd(s), summaryCmd(s), listCmd(s))
	return root, s
}

func needsBackend(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return cmd.HasParent()
}

func (s *session) open(ctx context.Context, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cli.LoadEnvFile()

	level := log.ParseLevel("warn")
	if s.verbose {
		level = log.ParseLevel("debug")
	}
	logger := log.New(log.Config{Level: level, Component: log.ComponentCLI, Output: logOut})

	cfg := config.Load()
	if s.backendType != "" {
		cfg.DataBackend = s.backendType
	}
	if s.stateFile != "" {
		cfg.StateFilePath = s.stateFile
	}
	if s.dbPath != "" {
		cfg.SQLiteDBPath = s.dbPath
	}
	if s.weekStart != "" {
		cfg.WeekStart = s.weekStart
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	res, err := cli.NewBackend(ctx, logger, cfg)
	if err != nil {
		return err
	}
	s.svc = cli.NewCommandService(cfg, res, logger)
	s.cleanup = res.Cleanup
	return nil
}

func (s *session) close() error {
	if s.cleanup == nil {
		return nil
	}
	err := s.cleanup()
	s.cleanup = nil
	return err
}

// interactive reports whether r is a terminal, so the repl shows a prompt.
func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
