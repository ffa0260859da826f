package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loopline-dev/loopline/internal/errors"
	"github.com/loopline-dev/loopline/pkg/api"
	"github.com/loopline-dev/loopline/pkg/tasks"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage todo tasks",
		Long: `List, add, complete, and remove tasks on the backend.

All subcommands require a logged-in session.

Examples:
  loopline tasks list
  loopline tasks add "Buy milk"
  loopline tasks toggle <id>
  loopline tasks rm <id>`,
	}

	cmd.AddCommand(
		tasksListCmd(),
		tasksAddCmd(),
		tasksToggleCmd(),
		tasksRemoveCmd(),
	)

	return cmd
}

// taskStack wires the tasks client; shared by the subcommands.
func taskStack() (*stack, *tasks.Client, error) {
	s, err := newStack()
	if err != nil {
		return nil, nil, err
	}
	return s, tasks.NewClient(s.api), nil
}

// taskError maps interceptor failures to user-facing coded errors.
func taskError(err error) error {
	switch {
	case stderrors.Is(err, api.ErrAuthRequired), stderrors.Is(err, api.ErrNoToken):
		return errors.New("E141").WithSuggestion("Run 'loopline login' first")
	case stderrors.Is(err, api.ErrUnauthorized):
		return errors.New("E143").WithSuggestion("Run 'loopline login' to start a new session")
	case stderrors.Is(err, api.ErrForbidden):
		return errors.New("E145").Wrap(err)
	case stderrors.Is(err, api.ErrNetwork):
		return errors.New("E161").Wrap(err)
	case stderrors.Is(err, api.ErrServer):
		return errors.New("E162").Wrap(err)
	}
	return err
}

func tasksListCmd() *cobra.Command {
	var (
		completed bool
		pending   bool
		search    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, client, err := taskStack()
			if err != nil {
				return err
			}
			defer s.Close()

			filter := tasks.Filter{Search: search}
			if completed != pending {
				done := completed
				filter.Completed = &done
			}

			list, err := client.List(cmd.Context(), filter)
			if err != nil {
				return taskError(err)
			}
			if len(list) == 0 {
				info("No tasks")
				return nil
			}
			for _, t := range list {
				mark := " "
				if t.Completed {
					mark = "x"
				}
				fmt.Printf("  [%s] %s  %s\n", mark, t.ID, t.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", false, "Only completed tasks")
	cmd.Flags().BoolVar(&pending, "pending", false, "Only pending tasks")
	cmd.Flags().StringVar(&search, "search", "", "Filter by title or description")

	return cmd
}

func tasksAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, client, err := taskStack()
			if err != nil {
				return err
			}
			defer s.Close()

			task, err := client.Create(cmd.Context(), tasks.Draft{
				Title:       args[0],
				Description: description,
			})
			if err != nil {
				return taskError(err)
			}
			success("Added task %s", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")

	return cmd
}

func tasksToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task's completion state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, client, err := taskStack()
			if err != nil {
				return err
			}
			defer s.Close()

			task, err := client.Toggle(cmd.Context(), args[0])
			if err != nil {
				return taskError(err)
			}
			state := "pending"
			if task.Completed {
				state = "completed"
			}
			success("Task %s is now %s", task.ID, state)
			return nil
		},
	}
}

func tasksRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, client, err := taskStack()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return taskError(err)
			}
			success("Removed task %s", args[0])
			return nil
		},
	}
}
