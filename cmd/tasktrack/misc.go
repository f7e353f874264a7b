package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tgienger/tasktrack/internal/models"
)

var userCmd = &cobra.Command{
	Use:     "user",
	Aliases: []string{"users"},
	Short:   "Show the users tasks can be assigned to",
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	Args:    cobra.NoArgs,
	RunE:    runUserList,
}

var userListJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts by status",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var statsJSON bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all tasks and projects",
	Long: `Delete all stored tasks and projects. The default projects are
created again the next time tasktrack runs.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var resetYes bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func init() {
	rootCmd.AddCommand(userCmd, statsCmd, resetCmd, versionCmd)
	userCmd.AddCommand(userListCmd)

	userListCmd.Flags().BoolVar(&userListJSON, "json", false, "output JSON")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output JSON")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "do not ask for confirmation")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func versionString() string {
	return fmt.Sprintf("tasktrack %s (commit: %s, built: %s)", version, commit, date)
}

func runUserList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	users, err := e.svc.GetUsers(ctx)
	if err != nil {
		return err
	}
	me, err := e.svc.CurrentUser(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if userListJSON {
		list := make([]userJSON, len(users))
		for i, u := range users {
			list[i] = userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
		}
		return writeJSON(out, list)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		name := u.Name
		if u.ID == me.ID {
			name += " (you)"
		}
		rows = append(rows, []string{u.ID, name, u.Email, string(u.Role)})
	}
	fmt.Fprintln(out, renderTable([]string{"ID", "NAME", "EMAIL", "ROLE"}, rows))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	stats, err := e.svc.GetTaskStatistics(ctx)
	if err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	out := cmd.OutOrStdout()
	if statsJSON {
		return writeJSON(out, stats)
	}
	writeStats(out, stats)
	return nil
}

func writeStats(out io.Writer, stats models.TaskStatistics) {
	fmt.Fprintf(out, "Total:       %d\n", stats.Total)
	fmt.Fprintf(out, "To Do:       %d\n", stats.TodoCount)
	fmt.Fprintf(out, "In Progress: %d\n", stats.InProgressCount)
	fmt.Fprintf(out, "In Review:   %d\n", stats.InReviewCount)
	fmt.Fprintf(out, "Done:        %d\n", stats.DoneCount)
	fmt.Fprintf(out, "Completion:  %d%%\n", stats.CompletionRate())
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		fmt.Fprint(cmd.OutOrStdout(), "Delete all tasks and projects? [y/N] ")
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
		default:
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.svc.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All data deleted.")
	return nil
}
