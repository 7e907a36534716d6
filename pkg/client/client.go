// Package client provides the API client for interacting with a
// Meilisearch-compatible search service. Document mutations return TaskInfo
// acknowledgments that can be resolved to their terminal state with the wait
// helpers.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/sanders41/meilisearch-go-sdk/pkg/codec"
	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// DefaultBaseURL is the address a locally running server listens on
const DefaultBaseURL = "http://localhost:7700"

// Environment variable names used by FromEnv
const (
	EnvBaseURL = "MEILI_HTTP_ADDR"
	EnvAPIKey  = "MEILI_API_KEY"
)

// Client is the interface for the API client
type Client interface {
	// Service endpoints
	Health(ctx context.Context) (models.Health, error)
	Version(ctx context.Context) (models.Version, error)
	Stats(ctx context.Context) (models.Stats, error)

	// Index endpoints
	CreateIndex(ctx context.Context, uid, primaryKey string) (*models.TaskInfo, error)
	GetIndex(ctx context.Context, uid string) (*models.IndexInfo, error)
	ListIndexes(ctx context.Context) ([]models.IndexInfo, error)
	DeleteIndex(ctx context.Context, uid string) (*models.TaskInfo, error)
	Index(uid string, opts ...IndexOption) *Index

	// Task endpoints
	GetTask(ctx context.Context, uid int64) (*models.Task, error)
	GetTasks(ctx context.Context, query *TasksQuery) (*models.TasksResults, error)
	CancelTasks(ctx context.Context, query *TasksQuery) (*models.TaskInfo, error)
	DeleteTasks(ctx context.Context, query *TasksQuery) (*models.TaskInfo, error)
	WaitForTask(ctx context.Context, uid int64, opts *WaitOptions) (*models.Task, error)
	WaitForTasks(ctx context.Context, uids []int64, opts *WaitOptions) ([]models.Task, error)

	// Close releases the client. Calls made after Close fail with
	// ErrClientClosed. Close is idempotent.
	Close() error
}

var _ Client = &APIClient{}

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the base URL of the search service
	BaseURL string

	// APIKey is sent as a bearer authorization header when set
	APIKey string

	// Timeout is the request timeout
	Timeout time.Duration

	// Codec serializes request and response bodies. Defaults to the
	// standard library codec.
	Codec codec.Codec
}

// DefaultOptions returns the default client options
func DefaultOptions() *Options {
	return &Options{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Codec:   codec.Default(),
	}
}

// APIClient implements the Client interface
type APIClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	codec   codec.Codec
	closed  atomic.Bool
}

// NewClient creates a new API client with the given options
func NewClient(opts *Options) (*APIClient, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	// Validate the base URL
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if opts.BaseURL == "" {
		return nil, &InvalidArgumentError{Message: "base URL cannot be empty"}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	c := opts.Codec
	if c == nil {
		c = codec.Default()
	}

	return &APIClient{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		timeout: timeout,
		codec:   c,
	}, nil
}

// FromEnv creates a client configured from MEILI_HTTP_ADDR and
// MEILI_API_KEY, falling back to defaults for anything unset
func FromEnv() (*APIClient, error) {
	opts := DefaultOptions()
	if addr := os.Getenv(EnvBaseURL); addr != "" {
		opts.BaseURL = addr
	}
	opts.APIKey = os.Getenv(EnvAPIKey)

	return NewClient(opts)
}

// Close releases the client exactly once; further calls are no-ops
func (c *APIClient) Close() error {
	c.closed.Store(true)
	return nil
}

// Service methods implementation

// Health checks the health of the search service
func (c *APIClient) Health(ctx context.Context) (models.Health, error) {
	var response models.Health
	if err := c.executeRequest(ctx, http.MethodGet, healthURL(), nil, &response); err != nil {
		return models.Health{}, err
	}
	return response, nil
}

// Version retrieves the server version information
func (c *APIClient) Version(ctx context.Context) (models.Version, error) {
	var response models.Version
	if err := c.executeRequest(ctx, http.MethodGet, versionURL(), nil, &response); err != nil {
		return models.Version{}, err
	}
	return response, nil
}

// Stats retrieves server-wide statistics
func (c *APIClient) Stats(ctx context.Context) (models.Stats, error) {
	var response models.Stats
	if err := c.executeRequest(ctx, http.MethodGet, statsURL(), nil, &response); err != nil {
		return models.Stats{}, err
	}
	return response, nil
}

// Index methods implementation

// CreateIndex requests creation of an index. Index creation is asynchronous;
// the returned TaskInfo tracks it.
func (c *APIClient) CreateIndex(ctx context.Context, uid, primaryKey string) (*models.TaskInfo, error) {
	if uid == "" {
		return nil, &InvalidArgumentError{Message: "index uid cannot be empty"}
	}

	body := map[string]any{"uid": uid}
	if primaryKey != "" {
		body["primaryKey"] = primaryKey
	}

	var response models.TaskInfo
	if err := c.executeRequest(ctx, http.MethodPost, indexesURL(nil), body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetIndex retrieves an index by uid
func (c *APIClient) GetIndex(ctx context.Context, uid string) (*models.IndexInfo, error) {
	var response models.IndexInfo
	if err := c.executeRequest(ctx, http.MethodGet, indexURL(uid), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// ListIndexes lists all indexes
func (c *APIClient) ListIndexes(ctx context.Context) ([]models.IndexInfo, error) {
	var response models.IndexesResults
	if err := c.executeRequest(ctx, http.MethodGet, indexesURL(nil), nil, &response); err != nil {
		return nil, err
	}
	return response.Results, nil
}

// DeleteIndex requests deletion of an index by uid
func (c *APIClient) DeleteIndex(ctx context.Context, uid string) (*models.TaskInfo, error) {
	var response models.TaskInfo
	if err := c.executeRequest(ctx, http.MethodDelete, indexURL(uid), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
