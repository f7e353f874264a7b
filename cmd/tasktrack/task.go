package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tgienger/tasktrack/internal/app"
	"github.com/tgienger/tasktrack/internal/models"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks"},
	Short:   "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks, optionally filtered",
	Args:    cobra.NoArgs,
	RunE:    runTaskList,
}

var (
	taskListStatus   string
	taskListPriority string
	taskListProject  string
	taskListAssignee string
	taskListSearch   string
	taskListJSON     bool
)

var taskShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskShowJSON bool

var taskAddCmd = &cobra.Command{
	Use:     "add <title>",
	Aliases: []string{"create"},
	Short:   "Create a task",
	Long: `Create a task in a project.

The assignee defaults to the current user. --due accepts YYYY-MM-DD
(end of that day, local time) or an RFC 3339 timestamp.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskAdd,
}

var (
	taskAddProject     string
	taskAddAssignee    string
	taskAddDescription string
	taskAddPriority    string
	taskAddDue         string
	taskAddQuiet       bool
)

var taskUpdateCmd = &cobra.Command{
	Use:     "update <id>",
	Aliases: []string{"edit"},
	Short:   "Change fields of a task",
	Long: `Change fields of a task. Only the flags given are applied.

Setting --status done records the completion time; moving a task out of
done clears it.`,
	Args: cobra.ExactArgs(1),
	RunE: runTaskUpdate,
}

var (
	taskUpdateTitle       string
	taskUpdateDescription string
	taskUpdateStatus      string
	taskUpdatePriority    string
	taskUpdateAssignee    string
	taskUpdateDue         string
)

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task done",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE:    runTaskDelete,
}

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskShowCmd, taskAddCmd, taskUpdateCmd, taskDoneCmd, taskDeleteCmd)

	taskListCmd.Flags().StringVarP(&taskListStatus, "status", "s", "", "filter by status (todo, in_progress, in_review, done)")
	taskListCmd.Flags().StringVarP(&taskListPriority, "priority", "p", "", "filter by priority (low, medium, high, urgent)")
	taskListCmd.Flags().StringVar(&taskListProject, "project", "", "filter by project ID")
	taskListCmd.Flags().StringVar(&taskListAssignee, "assignee", "", "filter by assignee ID")
	taskListCmd.Flags().StringVar(&taskListSearch, "search", "", "match title or description, case-insensitive")
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "output JSON")

	taskShowCmd.Flags().BoolVar(&taskShowJSON, "json", false, "output JSON")

	taskAddCmd.Flags().StringVar(&taskAddProject, "project", "", "project ID (required)")
	taskAddCmd.Flags().StringVar(&taskAddAssignee, "assignee", "", "assignee ID (default: current user)")
	taskAddCmd.Flags().StringVarP(&taskAddDescription, "description", "d", "", "task description")
	taskAddCmd.Flags().StringVarP(&taskAddPriority, "priority", "p", "", "priority (default: medium)")
	taskAddCmd.Flags().StringVar(&taskAddDue, "due", "", "due date")
	taskAddCmd.Flags().BoolVarP(&taskAddQuiet, "quiet", "q", false, "print only the new task ID")
	_ = taskAddCmd.MarkFlagRequired("project")

	taskUpdateCmd.Flags().StringVar(&taskUpdateTitle, "title", "", "new title")
	taskUpdateCmd.Flags().StringVarP(&taskUpdateDescription, "description", "d", "", "new description")
	taskUpdateCmd.Flags().StringVarP(&taskUpdateStatus, "status", "s", "", "new status")
	taskUpdateCmd.Flags().StringVarP(&taskUpdatePriority, "priority", "p", "", "new priority")
	taskUpdateCmd.Flags().StringVar(&taskUpdateAssignee, "assignee", "", "new assignee ID")
	taskUpdateCmd.Flags().StringVar(&taskUpdateDue, "due", "", "new due date")
}

func parseStatus(s string) (models.TaskStatus, error) {
	status, ok := models.ParseTaskStatus(s)
	if !ok {
		return "", models.Invalid("unknown status %q (want todo, in_progress, in_review or done)", s)
	}
	return status, nil
}

func parsePriority(s string) (models.TaskPriority, error) {
	priority, ok := models.ParseTaskPriority(s)
	if !ok {
		return "", models.Invalid("unknown priority %q (want low, medium, high or urgent)", s)
	}
	return priority, nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	filter := models.TaskFilter{
		ProjectID:  taskListProject,
		AssigneeID: taskListAssignee,
		Search:     taskListSearch,
	}
	if taskListStatus != "" {
		status, err := parseStatus(taskListStatus)
		if err != nil {
			return err
		}
		filter.Status = status
	}
	if taskListPriority != "" {
		priority, err := parsePriority(taskListPriority)
		if err != nil {
			return err
		}
		filter.Priority = priority
	}

	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	snap, err := e.svc.Load(ctx, filter)
	if err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	out := cmd.OutOrStdout()
	if taskListJSON {
		list := make([]taskJSON, len(snap.Tasks))
		for i, t := range snap.Tasks {
			list[i] = newTaskJSON(t)
		}
		return writeJSON(out, list)
	}

	if len(snap.Tasks) == 0 {
		if filter.IsEmpty() {
			fmt.Fprintln(out, "No tasks found.")
		} else {
			fmt.Fprintln(out, "No tasks match the filters.")
		}
		return nil
	}
	rows := taskRows(snap.Tasks, projectNames(snap.Projects), userNames(snap.Users), time.Now())
	fmt.Fprintln(out, renderTable([]string{"ID", "STATUS", "PRIORITY", "PROJECT", "ASSIGNEE", "DUE", "TITLE"}, rows))
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	task, err := e.svc.GetTask(ctx, args[0])
	if err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	out := cmd.OutOrStdout()
	if taskShowJSON {
		return writeJSON(out, newTaskJSON(task))
	}

	project, assignee := lookupNames(ctx, e.svc, task)
	writeTaskDetail(out, task, project, assignee, time.Now())
	return nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	create := models.CreateTaskCommand{
		Title:       args[0],
		Description: taskAddDescription,
		ProjectID:   taskAddProject,
		AssigneeID:  taskAddAssignee,
	}
	if taskAddPriority != "" {
		priority, err := parsePriority(taskAddPriority)
		if err != nil {
			return err
		}
		create.Priority = priority
	}
	if taskAddDue != "" {
		due, err := models.ParseDueDate(taskAddDue, time.Local)
		if err != nil {
			return err
		}
		create.DueDate = &due
	}

	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	if create.AssigneeID == "" {
		me, err := e.svc.CurrentUser(ctx)
		if err != nil {
			return err
		}
		create.AssigneeID = me.ID
	}

	task, err := e.svc.CreateTask(ctx, create)
	if err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	if taskAddQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), task.ID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created task %s: %s\n", task.ID, task.Title)
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	update := models.UpdateTaskCommand{ID: args[0]}
	flags := cmd.Flags()

	if flags.Changed("title") {
		update.Title = &taskUpdateTitle
	}
	if flags.Changed("description") {
		update.Description = &taskUpdateDescription
	}
	if flags.Changed("status") {
		status, err := parseStatus(taskUpdateStatus)
		if err != nil {
			return err
		}
		update.Status = &status
	}
	if flags.Changed("priority") {
		priority, err := parsePriority(taskUpdatePriority)
		if err != nil {
			return err
		}
		update.Priority = &priority
	}
	if flags.Changed("assignee") {
		update.AssigneeID = &taskUpdateAssignee
	}
	if flags.Changed("due") {
		due, err := models.ParseDueDate(taskUpdateDue, time.Local)
		if err != nil {
			return err
		}
		update.DueDate = &due
	}

	return applyUpdate(cmd, update)
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	done := models.StatusDone
	return applyUpdate(cmd, models.UpdateTaskCommand{ID: args[0], Status: &done})
}

func applyUpdate(cmd *cobra.Command, update models.UpdateTaskCommand) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	task, err := e.svc.UpdateTask(ctx, update)
	if err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s: %s [%s]\n", task.ID, task.Title, task.Status.Label())
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.svc.DeleteTask(ctx, args[0]); err != nil {
		return err
	}
	warnStorage(cmd, e.svc)

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
	return nil
}

func projectNames(projects []models.Project) map[string]string {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names
}

func userNames(users []models.User) map[string]string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}

// lookupNames resolves the project and assignee of t. Missing references
// resolve to "".
func lookupNames(ctx context.Context, svc *app.Service, t models.Task) (project, assignee string) {
	if p, err := svc.GetProject(ctx, t.ProjectID); err == nil {
		project = p.Name
	}
	if u, err := svc.GetUser(ctx, t.AssigneeID); err == nil {
		assignee = u.Name
	}
	return project, assignee
}

// warnStorage reports collections that were reset because they could not be
// decoded
func warnStorage(cmd *cobra.Command, svc *app.Service) {
	for _, w := range svc.StorageWarnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: stored %q could not be read and was reset: %v\n", w.Key, w.Err)
	}
}
