// Package main implements the tasktrack terminal task manager and its CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/tasktrack/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

// run executes the command line and returns the process exit code
func run() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tasktrack: %v\n", err)
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		return 1
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:   "tasktrack",
	Short: "A terminal task manager",
	Long: `tasktrack manages tasks grouped into projects.

Run without a subcommand to open the interactive interface.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

var (
	flagConfig  string
	flagBackend string
	flagDB      string
	flagDSN     string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.config/tasktrack/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite, postgres or memory")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&flagDSN, "dsn", "", "Postgres connection string")
}

func runTUI(cmd *cobra.Command, args []string) error {
	env, err := openEnv(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer env.Close()

	p := tea.NewProgram(ui.NewApp(env.svc), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
