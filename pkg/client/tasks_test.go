package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
)

// taskServer simulates the task status endpoints. Each tracked task walks
// through its configured status sequence one step per query, holding the
// final status once reached.
type taskServer struct {
	mu            sync.Mutex
	sequences     map[int64][]models.TaskStatus
	positions     map[int64]int
	singleQueries int
	listQueries   int
}

func newTaskServer(sequences map[int64][]models.TaskStatus) *taskServer {
	return &taskServer{sequences: sequences, positions: map[int64]int{}}
}

// step returns the current status for uid and advances the sequence
func (s *taskServer) step(uid int64) models.TaskStatus {
	seq, ok := s.sequences[uid]
	if !ok {
		return models.TaskStatusUnknown
	}

	pos := s.positions[uid]
	if pos >= len(seq) {
		pos = len(seq) - 1
	}
	s.positions[uid] = pos + 1
	return seq[pos]
}

func (s *taskServer) task(uid int64, status models.TaskStatus) models.Task {
	task := models.Task{
		UID:        uid,
		Status:     status,
		Type:       models.TaskTypeDocumentAdditionOrUpdate,
		EnqueuedAt: time.Now().UTC(),
	}
	if status == models.TaskStatusFailed {
		task.Error = &models.TaskError{
			Code:    "internal",
			Message: "indexing failed",
			Type:    "internal",
			Link:    "https://docs.meilisearch.com/errors#internal",
		}
	}
	return task
}

func (s *taskServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		switch {
		case r.URL.Path == "/tasks":
			s.listQueries++

			var results []models.Task
			for _, raw := range strings.Split(r.URL.Query().Get("uids"), ",") {
				uid, err := strconv.ParseInt(raw, 10, 64)
				require.NoError(t, err)
				results = append(results, s.task(uid, s.step(uid)))
			}

			_ = json.NewEncoder(w).Encode(models.TasksResults{
				Results: results,
				Total:   int64(len(results)),
				Limit:   20,
			})
		case strings.HasPrefix(r.URL.Path, "/tasks/"):
			s.singleQueries++

			uid, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/tasks/"), 10, 64)
			require.NoError(t, err)
			_ = json.NewEncoder(w).Encode(s.task(uid, s.step(uid)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func (s *taskServer) queryCounts() (single, list int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.singleQueries, s.listQueries
}

func newTaskTestClient(t *testing.T, baseURL string) *APIClient {
	opts := DefaultOptions()
	opts.BaseURL = baseURL

	apiClient, err := NewClient(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = apiClient.Close() })

	return apiClient
}

func TestWaitForTaskTerminalDetection(t *testing.T) {
	server := newTaskServer(map[int64][]models.TaskStatus{
		1: {models.TaskStatusEnqueued, models.TaskStatusProcessing, models.TaskStatusSucceeded},
	})
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	task, err := apiClient.WaitForTask(context.Background(), 1, &WaitOptions{
		Timeout:  2 * time.Second,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusSucceeded, task.Status)

	single, _ := server.queryCounts()
	assert.LessOrEqual(t, single, 4, "terminal state after 3 transitions should need at most N+1 queries")
	assert.GreaterOrEqual(t, single, 3)
}

func TestWaitForTaskTimeout(t *testing.T) {
	server := newTaskServer(map[int64][]models.TaskStatus{
		1: {models.TaskStatusProcessing},
	})
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	timeout := 200 * time.Millisecond
	start := time.Now()
	_, err := apiClient.WaitForTask(context.Background(), 1, &WaitOptions{
		Timeout:  timeout,
		Interval: 50 * time.Millisecond,
	})
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, []int64{1}, timeoutErr.Pending)
	assert.GreaterOrEqual(t, elapsed, timeout, "the wait must not give up before the deadline")
}

func TestWaitForTaskHangingServer(t *testing.T) {
	// The endpoint accepts the request but never answers within the wait
	// deadline, so the failure reaches the wait through the transport.
	ts := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	timeout := 150 * time.Millisecond
	_, err := apiClient.WaitForTask(context.Background(), 1, &WaitOptions{
		Timeout:  timeout,
		Interval: 50 * time.Millisecond,
	})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, []int64{1}, timeoutErr.Pending)
}

func TestWaitErrorTaxonomy(t *testing.T) {
	wctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	// A cancellation surfacing through the request path stays a
	// CancelledError.
	err := waitError(fmt.Errorf("request aborted: %w", context.Canceled), wctx, time.Second, []int64{1})
	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)

	// A transport failure after the wait deadline expired is a
	// TimeoutError carrying the pending uids.
	expired, expire := context.WithTimeout(context.Background(), time.Nanosecond)
	defer expire()
	<-expired.Done()

	err = waitError(&CommunicationError{Err: errors.New("timeout")}, expired, time.Second, []int64{2})
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, []int64{2}, timeoutErr.Pending)

	// Anything else surfaces unchanged.
	commErr := &CommunicationError{Err: errors.New("connection refused")}
	assert.Same(t, error(commErr), waitError(commErr, wctx, time.Second, nil))
}

func TestWaitForTaskCancelled(t *testing.T) {
	server := newTaskServer(map[int64][]models.TaskStatus{
		1: {models.TaskStatusProcessing},
	})
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := apiClient.WaitForTask(ctx, 1, &WaitOptions{Timeout: 5 * time.Second})

	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.Less(t, time.Since(start), time.Second, "cancellation must stop polling promptly")
}

func TestWaitForTaskRequestErrorSurfaces(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "boom", "code": "internal", "type": "internal", "link": ""}`))
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	_, err := apiClient.WaitForTask(context.Background(), 1, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestWaitForTaskRaiseOnFailure(t *testing.T) {
	server := newTaskServer(map[int64][]models.TaskStatus{
		1: {models.TaskStatusProcessing, models.TaskStatusFailed},
	})
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	task, err := apiClient.WaitForTask(context.Background(), 1, &WaitOptions{
		Interval:       10 * time.Millisecond,
		RaiseOnFailure: true,
	})

	var failed *TaskFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, int64(1), failed.UID)
	assert.Equal(t, "internal", failed.Code)
	require.NotNil(t, task, "the terminal task is still returned alongside the error")
	assert.Equal(t, models.TaskStatusFailed, task.Status)
}

func TestWaitForTasks(t *testing.T) {
	server := newTaskServer(map[int64][]models.TaskStatus{
		3: {models.TaskStatusEnqueued, models.TaskStatusProcessing, models.TaskStatusSucceeded},
		1: {models.TaskStatusSucceeded},
		2: {models.TaskStatusProcessing, models.TaskStatusSucceeded},
	})
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	tasks, err := apiClient.WaitForTasks(context.Background(), []int64{3, 1, 2}, &WaitOptions{
		Timeout:  2 * time.Second,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	// Input order, not completion order.
	require.Len(t, tasks, 3)
	assert.Equal(t, int64(3), tasks[0].UID)
	assert.Equal(t, int64(1), tasks[1].UID)
	assert.Equal(t, int64(2), tasks[2].UID)

	single, list := server.queryCounts()
	assert.Zero(t, single, "multi-task wait must use the batched status query")
	assert.GreaterOrEqual(t, list, 3)
}

func TestWaitForTasksTimeoutReportsPending(t *testing.T) {
	server := newTaskServer(map[int64][]models.TaskStatus{
		1: {models.TaskStatusSucceeded},
		2: {models.TaskStatusProcessing},
	})
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	tasks, err := apiClient.WaitForTasks(context.Background(), []int64{1, 2}, &WaitOptions{
		Timeout:  150 * time.Millisecond,
		Interval: 25 * time.Millisecond,
	})

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, []int64{2}, timeoutErr.Pending)

	// The task that did resolve is still reported.
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(1), tasks[0].UID)
}

func TestWaitForTasksAggregateFailure(t *testing.T) {
	server := newTaskServer(map[int64][]models.TaskStatus{
		1: {models.TaskStatusSucceeded},
		2: {models.TaskStatusFailed},
		3: {models.TaskStatusCanceled},
	})
	ts := httptest.NewServer(server.handler(t))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	tasks, err := apiClient.WaitForTasks(context.Background(), []int64{1, 2, 3}, &WaitOptions{
		Interval:       10 * time.Millisecond,
		RaiseOnFailure: true,
	})

	require.Len(t, tasks, 3, "all terminal tasks are returned alongside the aggregate error")

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)

	var failed *TaskFailedError
	require.ErrorAs(t, merr.Errors[0], &failed)
	assert.Equal(t, int64(2), failed.UID)
}

func TestWaitForTasksEmpty(t *testing.T) {
	apiClient := newTaskTestClient(t, "http://localhost:7700")

	tasks, err := apiClient.WaitForTasks(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCancelTasksDefaultFilter(t *testing.T) {
	var gotPath, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(models.TaskInfo{
			TaskUID: 9,
			Status:  models.TaskStatusEnqueued,
			Type:    models.TaskTypeTaskCancelation,
		})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	info, err := apiClient.CancelTasks(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "/tasks/cancel", gotPath)
	assert.Equal(t, "statuses="+"enqueued%2Cprocessing", gotQuery)
	assert.Equal(t, models.TaskTypeTaskCancelation, info.Type)
}

func TestDeleteTasksDefaultFilter(t *testing.T) {
	var gotMethod, gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(models.TaskInfo{
			TaskUID: 10,
			Status:  models.TaskStatusEnqueued,
			Type:    models.TaskTypeTaskDeletion,
		})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	_, err := apiClient.DeleteTasks(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Contains(t, gotQuery, "statuses=")
}

func TestGetTasksBuildsFilterQuery(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(models.TasksResults{Limit: 20})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	_, err := apiClient.GetTasks(context.Background(), &TasksQuery{
		UIDs:      []int64{1, 2, 3},
		IndexUIDs: []string{"movies"},
		Statuses:  []models.TaskStatus{models.TaskStatusEnqueued, models.TaskStatusProcessing},
		Types:     []models.TaskType{models.TaskTypeDocumentAdditionOrUpdate},
		Limit:     50,
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "uids=1%2C2%2C3")
	assert.Contains(t, gotQuery, "indexUids=movies")
	assert.Contains(t, gotQuery, "statuses=enqueued%2Cprocessing")
	assert.Contains(t, gotQuery, "types=documentAdditionOrUpdate")
	assert.Contains(t, gotQuery, "limit=50")
}
