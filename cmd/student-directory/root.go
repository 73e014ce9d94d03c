package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/student-directory/internal/cli/handlers/student"
	"github.com/aanand-mishra/student-directory/internal/cli/menu"
	"github.com/aanand-mishra/student-directory/internal/session"
	"github.com/aanand-mishra/student-directory/internal/utils/console"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command. Run without a subcommand it starts
// the interactive menu.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "student-directory",
		Short: "Student registration and login system",
		Long: `Register students, log in with a password, and browse, search or
delete records. The directory is kept in a local snapshot file that is
rewritten after every change.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd)
		},
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $CONFIG_PATH)")

	cmd.AddCommand(NewExportCmd())

	return cmd
}

// runMenu starts the interactive menu on the command's input and output.
// Ctrl+C (SIGINT) or SIGTERM while waiting for input ends the menu with a
// normal exit.
func runMenu(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	// color.NoColor already accounts for NO_COLOR and a non-terminal stdout.
	p := console.NewPrinter(cmd.OutOrStdout(), !color.NoColor)
	if a.warning != nil {
		p.Warn("%s", console.Describe(a.warning))
	}

	sess := session.New()
	m := menu.New(p, student.Actions(a.store, sess), student.Status(a.store, sess), a.log)
	if err := m.Run(ctx, cmd.InOrStdin()); err != nil {
		return err
	}

	a.log.Info("menu closed", slog.Int("students", a.store.Len()))
	return nil
}
