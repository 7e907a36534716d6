// Package plugins defines the hook interface invoked around document and
// search operations. Plugins declare which events they participate in via
// capability flags; the dispatcher iterates a configured, ordered list
// without caring about concrete types.
package plugins

import (
	"context"

	"github.com/sanders41/meilisearch-go-sdk/internal/logger"
	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
)

// Event identifies the point in an operation at which a plugin runs
type Event string

// Plugin events
const (
	// EventPre runs before the operation. A pre plugin may return a
	// replacement document payload.
	EventPre Event = "pre"
	// EventPost runs after the operation completes, with its results.
	EventPost Event = "post"
	// EventConcurrent runs alongside the operation on its own goroutine;
	// its return value is discarded.
	EventConcurrent Event = "concurrent"
)

// Info carries the operation context handed to plugins. Only the fields
// relevant to the current operation are populated.
type Info struct {
	// Documents is the payload of an add or update call at EventPre and
	// EventConcurrent.
	Documents []map[string]any
	// PrimaryKey is the primary key override for the call, empty when unset.
	PrimaryKey string
	// DocumentIDs is the payload of a delete call.
	DocumentIDs []string
	// TaskInfos holds the submission acknowledgments at EventPost.
	TaskInfos []models.TaskInfo
	// SearchResults holds the results of a search call at EventPost.
	SearchResults *models.SearchResults
}

// Plugin is the capability interface all hooks implement
type Plugin interface {
	// PreEvent reports whether the plugin runs before the operation
	PreEvent() bool
	// PostEvent reports whether the plugin runs after the operation
	PostEvent() bool
	// ConcurrentEvent reports whether the plugin runs concurrently with
	// the operation
	ConcurrentEvent() bool
	// Run executes the plugin for the given event
	Run(ctx context.Context, event Event, info Info) (any, error)
}

// RunPre invokes all pre plugins in order. A plugin returning a
// []map[string]any replaces the document payload for the remainder of the
// chain and for the operation itself.
func RunPre(ctx context.Context, ps []Plugin, info Info) (Info, error) {
	for _, p := range ps {
		if !p.PreEvent() {
			continue
		}

		result, err := p.Run(ctx, EventPre, info)
		if err != nil {
			return info, err
		}

		if docs, ok := result.([]map[string]any); ok {
			info.Documents = docs
		}
	}

	return info, nil
}

// RunPost invokes all post plugins in order. A plugin returning a
// *models.SearchResults replaces the search results for the remainder of the
// chain; other return values are ignored.
func RunPost(ctx context.Context, ps []Plugin, info Info) (Info, error) {
	for _, p := range ps {
		if !p.PostEvent() {
			continue
		}

		result, err := p.Run(ctx, EventPost, info)
		if err != nil {
			return info, err
		}

		if results, ok := result.(*models.SearchResults); ok {
			info.SearchResults = results
		}
	}

	return info, nil
}

// RunConcurrent launches all concurrent plugins on their own goroutines.
// Results are discarded and errors are logged, never surfaced to the caller.
func RunConcurrent(ctx context.Context, ps []Plugin, info Info) {
	for _, p := range ps {
		if !p.ConcurrentEvent() {
			continue
		}

		go func(p Plugin) {
			if _, err := p.Run(ctx, EventConcurrent, info); err != nil {
				logger.Errorf("concurrent plugin failed: %v", err)
			}
		}(p)
	}
}
