package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tgienger/tasktrack/internal/config"
	"github.com/tgienger/tasktrack/internal/models"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects with their task counts",
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

var projectListJSON bool

var projectAddCmd = &cobra.Command{
	Use:     "add <name>",
	Aliases: []string{"create"},
	Short:   "Create a project",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectAdd,
}

var (
	projectAddDescription string
	projectAddColor       string
	projectAddQuiet       bool
)

var projectDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a project",
	Long: `Delete a project.

With the default restrict policy a project that still has tasks is not
deleted. Set [projects] delete-policy = "cascade" in the config file to
delete its tasks along with it.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectDelete,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectAddCmd, projectDeleteCmd)

	projectListCmd.Flags().BoolVar(&projectListJSON, "json", false, "output JSON")

	projectAddCmd.Flags().StringVarP(&projectAddDescription, "description", "d", "", "project description")
	projectAddCmd.Flags().StringVarP(&projectAddColor, "color", "c", "#3B82F6", "hex color")
	projectAddCmd.Flags().BoolVarP(&projectAddQuiet, "quiet", "q", false, "print only the new project ID")
}

func runProjectList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	snap, err := e.svc.Load(ctx, models.TaskFilter{})
	if err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	out := cmd.OutOrStdout()
	if projectListJSON {
		list := make([]projectJSON, len(snap.Projects))
		for i, p := range snap.Projects {
			list[i] = projectJSON{
				ID:          p.ID,
				Name:        p.Name,
				Description: p.Description,
				Color:       p.Color,
				CreatedAt:   p.CreatedAt,
				Active:      p.Active,
			}
		}
		return writeJSON(out, list)
	}

	if len(snap.Projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	counts := make(map[string]int)
	for _, t := range snap.Tasks {
		counts[t.ProjectID]++
	}
	rows := make([][]string, 0, len(snap.Projects))
	for _, p := range snap.Projects {
		rows = append(rows, []string{p.ID, p.Name, p.Color, fmt.Sprint(counts[p.ID]), truncate(p.Description, 48)})
	}
	fmt.Fprintln(out, renderTable([]string{"ID", "NAME", "COLOR", "TASKS", "DESCRIPTION"}, rows))
	return nil
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	project, err := e.svc.CreateProject(ctx, models.CreateProjectCommand{
		Name:        args[0],
		Description: projectAddDescription,
		Color:       projectAddColor,
	})
	if err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	if projectAddQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), project.ID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %s: %s\n", project.ID, project.Name)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	removed, err := e.svc.DeleteProject(ctx, args[0])
	if err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	out := cmd.OutOrStdout()
	if e.svc.DeletePolicy() == config.DeleteCascade {
		fmt.Fprintf(out, "Deleted project %s and %d tasks\n", args[0], removed)
		return nil
	}
	fmt.Fprintf(out, "Deleted project %s\n", args[0])
	return nil
}
