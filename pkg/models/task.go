package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TaskStatus represents the current state of a server-side task
type TaskStatus string

// Task status constants
const (
	// TaskStatusUnknown represents an unknown or invalid task status
	TaskStatusUnknown TaskStatus = "unknown"
	// TaskStatusEnqueued indicates the task is waiting to be processed
	TaskStatusEnqueued TaskStatus = "enqueued"
	// TaskStatusProcessing indicates the task is currently being processed
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusSucceeded indicates the task has been successfully completed
	TaskStatusSucceeded TaskStatus = "succeeded"
	// TaskStatusFailed indicates the task has failed
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusCanceled indicates the task was canceled before completion
	TaskStatusCanceled TaskStatus = "canceled"
)

// String returns the string representation of the task status
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further status transition can occur
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusSucceeded, TaskStatusFailed, TaskStatusCanceled:
		return true
	default:
		return false
	}
}

// ParseTaskStatus converts a string to a TaskStatus type
func ParseTaskStatus(str string) (TaskStatus, error) {
	switch str {
	case string(TaskStatusEnqueued):
		return TaskStatusEnqueued, nil
	case string(TaskStatusProcessing):
		return TaskStatusProcessing, nil
	case string(TaskStatusSucceeded):
		return TaskStatusSucceeded, nil
	case string(TaskStatusFailed):
		return TaskStatusFailed, nil
	case string(TaskStatusCanceled):
		return TaskStatusCanceled, nil
	default:
		return TaskStatusUnknown, fmt.Errorf("invalid task status: %s", str)
	}
}

// UnmarshalJSON implements json.Unmarshaler for TaskStatus
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseTaskStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}

// MarshalJSON implements json.Marshaler for TaskStatus
func (s TaskStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// TaskType is the kind of operation a task performs
type TaskType string

// Task type constants as emitted by the server
const (
	TaskTypeDocumentAdditionOrUpdate TaskType = "documentAdditionOrUpdate"
	TaskTypeDocumentDeletion         TaskType = "documentDeletion"
	TaskTypeSettingsUpdate           TaskType = "settingsUpdate"
	TaskTypeIndexCreation            TaskType = "indexCreation"
	TaskTypeIndexUpdate              TaskType = "indexUpdate"
	TaskTypeIndexDeletion            TaskType = "indexDeletion"
	TaskTypeIndexSwap                TaskType = "indexSwap"
	TaskTypeTaskCancelation          TaskType = "taskCancelation"
	TaskTypeTaskDeletion             TaskType = "taskDeletion"
	TaskTypeDumpCreation             TaskType = "dumpCreation"
	TaskTypeSnapshotCreation         TaskType = "snapshotCreation"
)

// TaskError is the machine-readable failure payload attached to a failed task
type TaskError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

// Task represents a server-side asynchronous operation. The client only ever
// reads it; the server owns all state transitions.
type Task struct {
	UID        int64           `json:"uid"`
	IndexUID   *string         `json:"indexUid,omitempty"`
	Status     TaskStatus      `json:"status"`
	Type       TaskType        `json:"type"`
	Details    json.RawMessage `json:"details,omitempty"`
	Error      *TaskError      `json:"error,omitempty"`
	CanceledBy *int64          `json:"canceledBy,omitempty"`
	Duration   string          `json:"duration,omitempty"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	StartedAt  *time.Time      `json:"startedAt,omitempty"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
}

// TaskInfo is the immediate acknowledgment returned when a mutation is
// submitted. Its TaskUID can later be resolved to a full Task.
type TaskInfo struct {
	TaskUID    int64      `json:"taskUid"`
	IndexUID   *string    `json:"indexUid,omitempty"`
	Status     TaskStatus `json:"status"`
	Type       TaskType   `json:"type"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
}

// TasksResults is the envelope returned by the task list endpoint
type TasksResults struct {
	Results []Task `json:"results"`
	Total   int64  `json:"total"`
	Limit   int64  `json:"limit"`
	From    *int64 `json:"from,omitempty"`
	Next    *int64 `json:"next,omitempty"`
}
