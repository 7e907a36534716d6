package client

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
)

// ErrClientClosed is returned by any call made after Close
var ErrClientClosed = errors.New("client is closed")

// InvalidArgumentError reports malformed local input. It is always raised
// before any network call and is never retried.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// CommunicationError reports a network-level failure talking to the server
type CommunicationError struct {
	Err error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("error communicating with the server: %v", e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx response from the server. Code, Message, Type
// and Link are populated from the server error body when present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Type       string
	Link       string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned status %d: %s (code: %s)", e.StatusCode, e.Message, e.Code)
}

// TaskFailedError reports a task observed in the failed terminal state
type TaskFailedError struct {
	UID     int64
	Code    string
	Message string
	Type    string
	Link    string
}

func (e *TaskFailedError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("task %d failed", e.UID)
	}
	return fmt.Sprintf("task %d failed: %s (code: %s)", e.UID, e.Message, e.Code)
}

// taskFailedError builds a TaskFailedError from a terminal task
func taskFailedError(task *models.Task) *TaskFailedError {
	failed := &TaskFailedError{UID: task.UID}
	if task.Error != nil {
		failed.Code = task.Error.Code
		failed.Message = task.Error.Message
		failed.Type = task.Error.Type
		failed.Link = task.Error.Link
	}
	return failed
}

// TimeoutError reports that a wait deadline elapsed before all tracked tasks
// reached a terminal state. Pending lists the uids still outstanding.
type TimeoutError struct {
	Timeout time.Duration
	Pending []int64
}

func (e *TimeoutError) Error() string {
	uids := make([]string, 0, len(e.Pending))
	for _, uid := range e.Pending {
		uids = append(uids, fmt.Sprintf("%d", uid))
	}
	return fmt.Sprintf("timeout of %s exceeded while waiting for tasks [%s]", e.Timeout, strings.Join(uids, ","))
}

// CancelledError reports that the caller's context was canceled during a
// wait. It is distinct from TimeoutError.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("wait canceled: %v", e.Err)
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}

// SubmitError reports a failed batch submission. Submitted carries the
// acknowledgments of batches that completed before the failure, in batch
// order; server-side tasks already created are not rolled back.
type SubmitError struct {
	Submitted []models.TaskInfo
	Err       error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("batch submission failed after %d successful batches: %v", len(e.Submitted), e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}
