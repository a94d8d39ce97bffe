// cmd/examreview/main.go
//
// Entry point for the examreview CLI. Every subcommand works against one
// project directory holding the three collection files and a .examreview/
// folder for config and logs.
//
//	examreview mark       walk the questions and record verdicts
//	examreview reconcile  fold the verdicts into the error log
//	examreview edit       fix or delete error log entries
//	examreview save       record one verdict from the command line

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kingrea/exam-review/internal/config"
	"github.com/kingrea/exam-review/internal/logbook"
	"github.com/kingrea/exam-review/internal/logging"
	"github.com/kingrea/exam-review/internal/records"
)

// env is the state every subcommand shares once the root pre-run finishes.
type env struct {
	dir     string
	verbose bool

	cfg     *config.Config
	logger  *zap.Logger
	journal *logbook.Logbook
}

func (e *env) store() *records.Store {
	return records.NewStore(e.cfg.Paths())
}

func newRootCommand() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "examreview",
		Short:         "Review extracted exam questions and track the ones that need fixing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&e.dir, "dir", "", "project directory holding the exam files (default: current directory)")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newMarkCommand(e),
		newReconcileCommand(e),
		newEditCommand(e),
		newSaveCommand(e),
	)
	return root
}

func (e *env) setup(cmd *cobra.Command) error {
	projectDir := e.dir
	if projectDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		projectDir = cwd
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("resolve project directory: %w", err)
	}
	if err := config.InitReviewDir(projectDir); err != nil {
		return fmt.Errorf("initialize %s: %w", config.ReviewDir, err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return err
	}
	e.cfg = cfg

	// The TUI commands own the terminal, so only the batch command echoes
	// diagnostics to the console.
	opts := logging.Options{Verbose: e.verbose}
	if cmd.Name() == "reconcile" {
		opts.Console = cmd.OutOrStdout()
	}
	logger, err := logging.New(cfg, opts)
	if err != nil {
		return err
	}
	e.logger = logger.With(zap.String("command", cmd.Name()))

	journal, err := logbook.New(cfg.JournalPath())
	if err != nil {
		return err
	}
	e.journal = journal
	e.logger.Debug("configuration loaded",
		zap.String("project_dir", cfg.ProjectDir),
		zap.String("questions", cfg.Paths().Questions),
		zap.String("results", cfg.Paths().Results),
		zap.String("error_log", cfg.Paths().ErrorLog),
	)
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
