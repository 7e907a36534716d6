package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
)

/*

To keep this file organized, endpoint builders should be ordered by scope:
service-wide endpoints first, then index endpoints, then document endpoints,
then task endpoints.

*/

func healthURL() string {
	return "/health"
}

func versionURL() string {
	return "/version"
}

func statsURL() string {
	return "/stats"
}

func indexesURL(q url.Values) string {
	if len(q) == 0 {
		return "/indexes"
	}
	return "/indexes?" + q.Encode()
}

func indexURL(uid string) string {
	return "/indexes/" + url.PathEscape(uid)
}

func documentsURL(indexUID string, q url.Values) string {
	base := indexURL(indexUID) + "/documents"
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

func documentURL(indexUID, documentID string) string {
	return indexURL(indexUID) + "/documents/" + url.PathEscape(documentID)
}

func documentsDeleteBatchURL(indexUID string) string {
	return indexURL(indexUID) + "/documents/delete-batch"
}

func searchURL(indexUID string) string {
	return indexURL(indexUID) + "/search"
}

func tasksURL(q url.Values) string {
	if len(q) == 0 {
		return "/tasks"
	}
	return "/tasks?" + q.Encode()
}

func taskURL(uid int64) string {
	return fmt.Sprintf("/tasks/%d", uid)
}

func tasksCancelURL(q url.Values) string {
	if len(q) == 0 {
		return "/tasks/cancel"
	}
	return "/tasks/cancel?" + q.Encode()
}

// TasksQuery filters task listing, cancellation and deletion. Zero-valued
// fields are omitted from the query string.
type TasksQuery struct {
	UIDs             []int64
	IndexUIDs        []string
	Statuses         []models.TaskStatus
	Types            []models.TaskType
	Limit            int64
	From             int64
	BeforeEnqueuedAt time.Time
	AfterEnqueuedAt  time.Time
	BeforeStartedAt  time.Time
	AfterFinishedAt  time.Time
}

// getQueryParams creates url.Values from a TasksQuery
func getQueryParams(q *TasksQuery) url.Values {
	params := url.Values{}
	if q == nil {
		return params
	}

	if len(q.UIDs) > 0 {
		uids := make([]string, 0, len(q.UIDs))
		for _, uid := range q.UIDs {
			uids = append(uids, strconv.FormatInt(uid, 10))
		}
		params.Set("uids", strings.Join(uids, ","))
	}

	if len(q.IndexUIDs) > 0 {
		params.Set("indexUids", strings.Join(q.IndexUIDs, ","))
	}

	if len(q.Statuses) > 0 {
		statuses := make([]string, 0, len(q.Statuses))
		for _, status := range q.Statuses {
			statuses = append(statuses, status.String())
		}
		params.Set("statuses", strings.Join(statuses, ","))
	}

	if len(q.Types) > 0 {
		types := make([]string, 0, len(q.Types))
		for _, taskType := range q.Types {
			types = append(types, string(taskType))
		}
		params.Set("types", strings.Join(types, ","))
	}

	if q.Limit > 0 {
		params.Set("limit", strconv.FormatInt(q.Limit, 10))
	}

	if q.From > 0 {
		params.Set("from", strconv.FormatInt(q.From, 10))
	}

	if !q.BeforeEnqueuedAt.IsZero() {
		params.Set("beforeEnqueuedAt", q.BeforeEnqueuedAt.Format(time.RFC3339))
	}

	if !q.AfterEnqueuedAt.IsZero() {
		params.Set("afterEnqueuedAt", q.AfterEnqueuedAt.Format(time.RFC3339))
	}

	if !q.BeforeStartedAt.IsZero() {
		params.Set("beforeStartedAt", q.BeforeStartedAt.Format(time.RFC3339))
	}

	if !q.AfterFinishedAt.IsZero() {
		params.Set("afterFinishedAt", q.AfterFinishedAt.Format(time.RFC3339))
	}

	return params
}
