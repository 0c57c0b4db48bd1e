package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-todo-sync/internal/models"
	"github.com/adanyl0v/go-todo-sync/internal/store"
)

var errNothingToUpdate = errors.New("nothing to update: set --title, --description or --completed")

func listCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sess.open(cmd.Context())
			if err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), st.Tasks())
		},
	}
}

func showCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a single task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sess.open(cmd.Context())
			if err != nil {
				return err
			}

			task, ok := st.Task(args[0])
			if !ok {
				return fmt.Errorf("task %s not found", args[0])
			}
			printTask(cmd.OutOrStdout(), task)
			return nil
		},
	}
}

func addCmd(sess *session) *cobra.Command {
	var draft models.TaskDraft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := draft.Validate()
			if err != nil {
				return err
			}

			st, err := sess.open(cmd.Context())
			if err != nil {
				return err
			}

			res := st.AddTask(cmd.Context(), draft)
			if err := resultErr(st, res); err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), *res.Task)
			return nil
		},
	}

	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "Task title")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "Task description")

	return cmd
}

func editCmd(sess *session) *cobra.Command {
	var (
		title       string
		description string
		completed   bool
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("completed") {
				patch.Completed = &completed
			}
			if patch.IsEmpty() {
				return errNothingToUpdate
			}
			err := patch.Validate()
			if err != nil {
				return err
			}

			st, err := sess.open(cmd.Context())
			if err != nil {
				return err
			}

			res := st.UpdateTask(cmd.Context(), args[0], patch)
			if err := resultErr(st, res); err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), *res.Task)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New task title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New task description")
	cmd.Flags().BoolVar(&completed, "completed", false, "Mark the task completed or not")

	return cmd
}

func deleteCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sess.open(cmd.Context())
			if err != nil {
				return err
			}

			res := st.DeleteTask(cmd.Context(), args[0])
			if err := resultErr(st, res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}

func resultErr(st *store.Store, res store.Result) error {
	if res.OK() {
		return nil
	}
	return fmt.Errorf("%s: %w", st.Err(), res.Err)
}

func printTasks(w io.Writer, tasks []models.Task) error {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTITLE\tDESCRIPTION")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", task.ID, doneMark(task.Completed), task.Title, task.Description)
	}
	return tw.Flush()
}

func printTask(w io.Writer, task models.Task) {
	fmt.Fprintf(w, "ID:          %s\n", task.ID)
	fmt.Fprintf(w, "Title:       %s\n", task.Title)
	fmt.Fprintf(w, "Description: %s\n", task.Description)
	fmt.Fprintf(w, "Completed:   %s\n", doneMark(task.Completed))
	fmt.Fprintf(w, "Created at:  %s\n", task.CreatedAt)
}

func doneMark(completed bool) string {
	if completed {
		return "yes"
	}
	return "no"
}
