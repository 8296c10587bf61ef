package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/hookcfg/internal/events"
	"github.com/hugo-lorenzo-mato/hookcfg/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit <hook-file>",
	Short: "Edit a hook interactively",
	Long: `Open the hook editor on a hook file (.json, .yaml or .yml).

A missing file starts a new hook; the project is then taken from --project.

Examples:
  # Edit an existing hook
  hookcfg edit hooks/deploy.yaml

  # Create a hook for node 12 of workflow build
  hookcfg edit hooks/new.json --project PRJ --workflow build --node 12`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editFlags   contextFlags
	editLogFile string
)

func init() {
	rootCmd.AddCommand(editCmd)
	addContextFlags(editCmd, &editFlags)
	editCmd.Flags().StringVar(&editLogFile, "log-file", "",
		"write logs to this file (the terminal is taken by the editor)")
}

func runEdit(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if editLogFile != "" {
		f, err := os.OpenFile(editLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(cfg, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.New(100)
	defer bus.Close()

	s, err := openSession(ctx, cfg, args[0], sessionOptions{flags: editFlags, logger: logger, bus: bus})
	if err != nil {
		return err
	}
	defer s.close()

	m := tui.New(ctx, s.editor, s.save, tui.WithEventBus(bus))
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(tui.Model); ok {
		defer fm.Close()
		if loc := fm.Saved(); loc != "" {
			fmt.Printf("Hook saved to %s\n", loc)
		}
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}
