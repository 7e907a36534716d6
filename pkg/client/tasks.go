package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-pkgz/repeater"
	multierror "github.com/hashicorp/go-multierror"

	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
)

// Polling defaults
const (
	// DefaultWaitTimeout bounds how long a wait call polls before giving up
	DefaultWaitTimeout = 5 * time.Second
	// DefaultPollInterval is the delay between status queries
	DefaultPollInterval = 50 * time.Millisecond
)

// errTaskPending signals the repeater that the polled tasks are not yet
// terminal and another tick is needed.
var errTaskPending = errors.New("task not in a terminal state")

// WaitOptions configures the wait calls. The zero value uses the defaults.
type WaitOptions struct {
	// Timeout bounds the whole wait. Defaults to DefaultWaitTimeout.
	Timeout time.Duration

	// Interval is the delay between polls. Defaults to DefaultPollInterval.
	Interval time.Duration

	// RaiseOnFailure turns a failed or canceled terminal task into a
	// TaskFailedError instead of a normal return.
	RaiseOnFailure bool
}

func (o *WaitOptions) normalize() (timeout, interval time.Duration) {
	timeout = DefaultWaitTimeout
	interval = DefaultPollInterval
	if o == nil {
		return timeout, interval
	}
	if o.Timeout > 0 {
		timeout = o.Timeout
	}
	if o.Interval > 0 {
		interval = o.Interval
	}
	return timeout, interval
}

// GetTask retrieves a task by uid
func (c *APIClient) GetTask(ctx context.Context, uid int64) (*models.Task, error) {
	var response models.Task
	if err := c.executeRequest(ctx, http.MethodGet, taskURL(uid), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetTasks lists tasks matching the query filters
func (c *APIClient) GetTasks(ctx context.Context, query *TasksQuery) (*models.TasksResults, error) {
	var response models.TasksResults
	if err := c.executeRequest(ctx, http.MethodGet, tasksURL(getQueryParams(query)), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CancelTasks cancels enqueued or processing tasks matching the query.
// With no filters all cancelable tasks are targeted.
func (c *APIClient) CancelTasks(ctx context.Context, query *TasksQuery) (*models.TaskInfo, error) {
	params := getQueryParams(query)
	if len(params) == 0 {
		params.Set("statuses", "enqueued,processing")
	}

	var response models.TaskInfo
	if err := c.executeRequest(ctx, http.MethodPost, tasksCancelURL(params), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteTasks deletes finished tasks matching the query from the server's
// task history. With no filters all tasks are targeted.
func (c *APIClient) DeleteTasks(ctx context.Context, query *TasksQuery) (*models.TaskInfo, error) {
	params := getQueryParams(query)
	if len(params) == 0 {
		params.Set("statuses", "canceled,enqueued,failed,processing,succeeded")
	}

	var response models.TaskInfo
	if err := c.executeRequest(ctx, http.MethodDelete, tasksURL(params), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// WaitForTask polls the task until it reaches a terminal state. The deadline
// elapsing yields a TimeoutError; cancellation of ctx yields a
// CancelledError; transport failures surface immediately.
func (c *APIClient) WaitForTask(ctx context.Context, uid int64, opts *WaitOptions) (*models.Task, error) {
	timeout, interval := opts.normalize()

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var task *models.Task
	var reqErr error

	rep := repeater.NewDefault(pollAttempts(timeout, interval), interval)
	_ = rep.Do(wctx, func() error {
		t, err := c.GetTask(wctx, uid)
		if err != nil {
			reqErr = err
			return nil // stop polling, surface the request error below
		}
		if t.Status.IsTerminal() {
			task = t
			return nil
		}
		return errTaskPending
	})

	switch {
	case reqErr != nil:
		return nil, waitError(reqErr, wctx, timeout, []int64{uid})
	case task != nil:
		if opts != nil && opts.RaiseOnFailure && task.Status != models.TaskStatusSucceeded {
			return task, taskFailedError(task)
		}
		return task, nil
	case errors.Is(ctx.Err(), context.Canceled):
		return nil, &CancelledError{Err: ctx.Err()}
	default:
		return nil, &TimeoutError{Timeout: timeout, Pending: []int64{uid}}
	}
}

// WaitForTasks polls all given tasks until every one reaches a terminal
// state, issuing a single filtered status query per tick for the outstanding
// uids. Resolved tasks are returned in the order of the input uids. On
// timeout the TimeoutError reports the uids still pending; whatever resolved
// before the failure is still returned.
func (c *APIClient) WaitForTasks(ctx context.Context, uids []int64, opts *WaitOptions) ([]models.Task, error) {
	if len(uids) == 0 {
		return []models.Task{}, nil
	}

	timeout, interval := opts.normalize()

	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	terminal := make(map[int64]models.Task, len(uids))
	remaining := make([]int64, len(uids))
	copy(remaining, uids)

	var reqErr error

	rep := repeater.NewDefault(pollAttempts(timeout, interval), interval)
	_ = rep.Do(wctx, func() error {
		results, err := c.GetTasks(wctx, &TasksQuery{UIDs: remaining})
		if err != nil {
			reqErr = err
			return nil
		}

		for _, task := range results.Results {
			if task.Status.IsTerminal() {
				terminal[task.UID] = task
			}
		}

		outstanding := remaining[:0]
		for _, uid := range remaining {
			if _, ok := terminal[uid]; !ok {
				outstanding = append(outstanding, uid)
			}
		}
		remaining = outstanding

		if len(remaining) == 0 {
			return nil
		}
		return errTaskPending
	})

	resolved := make([]models.Task, 0, len(uids))
	for _, uid := range uids {
		if task, ok := terminal[uid]; ok {
			resolved = append(resolved, task)
		}
	}

	switch {
	case reqErr != nil:
		pending := make([]int64, len(remaining))
		copy(pending, remaining)
		return resolved, waitError(reqErr, wctx, timeout, pending)
	case len(remaining) == 0:
		if opts != nil && opts.RaiseOnFailure {
			var errs *multierror.Error
			for idx := range resolved {
				if resolved[idx].Status != models.TaskStatusSucceeded {
					errs = multierror.Append(errs, taskFailedError(&resolved[idx]))
				}
			}
			return resolved, errs.ErrorOrNil()
		}
		return resolved, nil
	case errors.Is(ctx.Err(), context.Canceled):
		return resolved, &CancelledError{Err: ctx.Err()}
	default:
		pending := make([]int64, len(remaining))
		copy(pending, remaining)
		return resolved, &TimeoutError{Timeout: timeout, Pending: pending}
	}
}

// waitError classifies a failed status poll. A request that fails because
// the wait deadline expired is a TimeoutError, one that fails because the
// caller canceled is a CancelledError; anything else surfaces as is.
func waitError(reqErr error, wctx context.Context, timeout time.Duration, pending []int64) error {
	switch {
	case errors.Is(reqErr, context.Canceled):
		return &CancelledError{Err: reqErr}
	case errors.Is(wctx.Err(), context.DeadlineExceeded):
		return &TimeoutError{Timeout: timeout, Pending: pending}
	default:
		return reqErr
	}
}

// pollAttempts converts the timeout into a repeat count so the fixed-delay
// strategy cannot outlive the deadline by more than one interval
func pollAttempts(timeout, interval time.Duration) int {
	attempts := int(timeout/interval) + 1
	if attempts < 1 {
		attempts = 1
	}
	return attempts
}
