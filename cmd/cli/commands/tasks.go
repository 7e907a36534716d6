package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sanders41/meilisearch-go-sdk/pkg/client"
	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
)

// Task flag names
const (
	flagTaskUID      = "uid"
	flagTaskStatuses = "status"
	flagTaskIndexes  = "index-uid"
	flagTaskLimit    = "limit"
	flagTaskFrom     = "from"
	flagTimeout      = "timeout"
	flagInterval     = "interval"
	flagRaise        = "fail-on-error"
)

// GetTasksCmd returns the task management command
func GetTasksCmd() *cobra.Command {
	return tasksCmd
}

func init() {
	tasksCmd.AddCommand(getTaskCmd)
	tasksCmd.AddCommand(listTasksCmd)
	tasksCmd.AddCommand(waitTaskCmd)
	tasksCmd.AddCommand(cancelTasksCmd)
	tasksCmd.AddCommand(deleteTasksCmd)

	getTaskCmd.Flags().Int64(flagTaskUID, 0, "Task uid")
	_ = getTaskCmd.MarkFlagRequired(flagTaskUID)

	listTasksCmd.Flags().Int64Slice(flagTaskUID, nil, "Filter by task uid (repeatable)")
	listTasksCmd.Flags().StringSlice(flagTaskStatuses, nil, "Filter by status (enqueued, processing, succeeded, failed, canceled)")
	listTasksCmd.Flags().StringSlice(flagTaskIndexes, nil, "Filter by index uid (repeatable)")
	listTasksCmd.Flags().Int64(flagTaskLimit, 0, "Limit the number of tasks returned")
	listTasksCmd.Flags().Int64(flagTaskFrom, 0, "Task uid to start listing from")

	waitTaskCmd.Flags().Int64Slice(flagTaskUID, nil, "Task uid to wait for (repeatable)")
	waitTaskCmd.Flags().Duration(flagTimeout, client.DefaultWaitTimeout, "How long to wait before giving up")
	waitTaskCmd.Flags().Duration(flagInterval, client.DefaultPollInterval, "Delay between status polls")
	waitTaskCmd.Flags().Bool(flagRaise, false, "Exit non-zero when a task fails or is canceled")
	_ = waitTaskCmd.MarkFlagRequired(flagTaskUID)

	cancelTasksCmd.Flags().Int64Slice(flagTaskUID, nil, "Cancel only these uids (repeatable)")
	cancelTasksCmd.Flags().StringSlice(flagTaskIndexes, nil, "Cancel only tasks of these indexes")

	deleteTasksCmd.Flags().Int64Slice(flagTaskUID, nil, "Delete only these uids (repeatable)")
	deleteTasksCmd.Flags().StringSlice(flagTaskStatuses, nil, "Delete only tasks in these statuses")
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Track and manage asynchronous tasks",
}

// tasksQueryFromFlags builds the task filter from the list-style flags
func tasksQueryFromFlags(cmd *cobra.Command) (*client.TasksQuery, error) {
	query := &client.TasksQuery{}

	if cmd.Flags().Lookup(flagTaskUID) != nil {
		uids, err := cmd.Flags().GetInt64Slice(flagTaskUID)
		if err != nil {
			return nil, fmt.Errorf("error getting uid flag: %w", err)
		}
		query.UIDs = uids
	}

	if cmd.Flags().Lookup(flagTaskStatuses) != nil {
		raw, err := cmd.Flags().GetStringSlice(flagTaskStatuses)
		if err != nil {
			return nil, fmt.Errorf("error getting status flag: %w", err)
		}
		for _, s := range raw {
			status, err := models.ParseTaskStatus(s)
			if err != nil {
				return nil, err
			}
			query.Statuses = append(query.Statuses, status)
		}
	}

	if cmd.Flags().Lookup(flagTaskIndexes) != nil {
		indexes, err := cmd.Flags().GetStringSlice(flagTaskIndexes)
		if err != nil {
			return nil, fmt.Errorf("error getting index-uid flag: %w", err)
		}
		query.IndexUIDs = indexes
	}

	if cmd.Flags().Lookup(flagTaskLimit) != nil {
		limit, err := cmd.Flags().GetInt64(flagTaskLimit)
		if err != nil {
			return nil, fmt.Errorf("error getting limit flag: %w", err)
		}
		query.Limit = limit
	}

	if cmd.Flags().Lookup(flagTaskFrom) != nil {
		from, err := cmd.Flags().GetInt64(flagTaskFrom)
		if err != nil {
			return nil, fmt.Errorf("error getting from flag: %w", err)
		}
		query.From = from
	}

	return query, nil
}

var getTaskCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a task by uid",
	RunE: func(cmd *cobra.Command, _ []string) error {
		uid, err := cmd.Flags().GetInt64(flagTaskUID)
		if err != nil {
			return fmt.Errorf("error getting uid flag: %w", err)
		}

		task, err := apiClient.GetTask(cmd.Context(), uid)
		if err != nil {
			return err
		}
		return printJSON(task)
	},
}

var listTasksCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks matching the given filters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		query, err := tasksQueryFromFlags(cmd)
		if err != nil {
			return err
		}

		results, err := apiClient.GetTasks(cmd.Context(), query)
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

var waitTaskCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the given tasks reach a terminal state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		uids, err := cmd.Flags().GetInt64Slice(flagTaskUID)
		if err != nil {
			return fmt.Errorf("error getting uid flag: %w", err)
		}
		timeout, err := cmd.Flags().GetDuration(flagTimeout)
		if err != nil {
			return fmt.Errorf("error getting timeout flag: %w", err)
		}
		interval, err := cmd.Flags().GetDuration(flagInterval)
		if err != nil {
			return fmt.Errorf("error getting interval flag: %w", err)
		}
		raise, err := cmd.Flags().GetBool(flagRaise)
		if err != nil {
			return fmt.Errorf("error getting fail-on-error flag: %w", err)
		}

		opts := &client.WaitOptions{
			Timeout:        timeout,
			Interval:       interval,
			RaiseOnFailure: raise,
		}

		start := time.Now()
		tasks, err := apiClient.WaitForTasks(cmd.Context(), uids, opts)
		if err != nil {
			return err
		}

		fmt.Printf("resolved %d task(s) in %s\n", len(tasks), time.Since(start).Round(time.Millisecond))
		return printJSON(tasks)
	},
}

var cancelTasksCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel enqueued or processing tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		query, err := tasksQueryFromFlags(cmd)
		if err != nil {
			return err
		}

		info, err := apiClient.CancelTasks(cmd.Context(), query)
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

var deleteTasksCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete finished tasks from the server's task history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		query, err := tasksQueryFromFlags(cmd)
		if err != nil {
			return err
		}

		info, err := apiClient.DeleteTasks(cmd.Context(), query)
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}
