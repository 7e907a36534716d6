package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanders41/meilisearch-go-sdk/pkg/codec"
	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		opts        *Options
		expectError bool
		check       func(t *testing.T, c *APIClient)
	}{
		{
			name: "nil options uses defaults",
			opts: nil,
			check: func(t *testing.T, c *APIClient) {
				assert.Equal(t, DefaultBaseURL, c.baseURL)
				assert.Equal(t, DefaultTimeout, c.timeout)
				assert.IsType(t, codec.Std{}, c.codec)
			},
		},
		{
			name: "default options",
			opts: DefaultOptions(),
			check: func(t *testing.T, c *APIClient) {
				assert.Equal(t, DefaultBaseURL, c.baseURL)
				assert.Empty(t, c.apiKey)
			},
		},
		{
			name: "custom options",
			opts: &Options{
				BaseURL: "http://search.internal:7700",
				APIKey:  "masterKey",
				Timeout: time.Minute,
				Codec:   codec.Fast{},
			},
			check: func(t *testing.T, c *APIClient) {
				assert.Equal(t, "http://search.internal:7700", c.baseURL)
				assert.Equal(t, "masterKey", c.apiKey)
				assert.Equal(t, time.Minute, c.timeout)
				assert.IsType(t, codec.Fast{}, c.codec)
			},
		},
		{
			name: "zero timeout falls back to default",
			opts: &Options{BaseURL: DefaultBaseURL},
			check: func(t *testing.T, c *APIClient) {
				assert.Equal(t, DefaultTimeout, c.timeout)
			},
		},
		{
			name:        "empty base URL",
			opts:        &Options{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiClient, err := NewClient(tt.opts)
			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.check(t, apiClient)
		})
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, "http://search.internal:7701")
	t.Setenv(EnvAPIKey, "envKey")

	apiClient, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://search.internal:7701", apiClient.baseURL)
	assert.Equal(t, "envKey", apiClient.apiKey)
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvAPIKey, "")

	apiClient, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, apiClient.baseURL)
	assert.Empty(t, apiClient.apiKey)
}

func TestHealth(t *testing.T) {
	var gotPath, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(models.Health{Status: "available"})
	}))
	defer ts.Close()

	opts := DefaultOptions()
	opts.BaseURL = ts.URL
	opts.APIKey = "masterKey"

	apiClient, err := NewClient(opts)
	require.NoError(t, err)
	defer func() { _ = apiClient.Close() }()

	health, err := apiClient.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "available", health.Status)
	assert.Equal(t, "/health", gotPath)
	assert.Equal(t, "Bearer masterKey", gotAuth)
}

func TestVersion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Version{
			PkgVersion: "1.12.0",
			CommitSha:  "abc123",
		})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	version, err := apiClient.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.12.0", version.PkgVersion)
}

func TestStats(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(models.Stats{
			DatabaseSize: 4096,
			Indexes: map[string]models.IndexStats{
				"movies": {NumberOfDocuments: 250},
			},
		})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	stats, err := apiClient.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4096), stats.DatabaseSize)
	assert.Equal(t, int64(250), stats.Indexes["movies"].NumberOfDocuments)
}

func TestAPIErrorDecoding(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{
			"message": "The provided API key is invalid.",
			"code": "invalid_api_key",
			"type": "auth",
			"link": "https://docs.meilisearch.com/errors#invalid_api_key"
		}`))
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	_, err := apiClient.Health(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid_api_key", apiErr.Code)
	assert.Equal(t, "The provided API key is invalid.", apiErr.Message)
	assert.Equal(t, "auth", apiErr.Type)
}

func TestCommunicationError(t *testing.T) {
	// Nothing listens here.
	opts := DefaultOptions()
	opts.BaseURL = "http://127.0.0.1:1"
	opts.Timeout = time.Second

	apiClient, err := NewClient(opts)
	require.NoError(t, err)

	_, err = apiClient.Health(context.Background())

	var commErr *CommunicationError
	require.ErrorAs(t, err, &commErr)
}

func TestClientClosed(t *testing.T) {
	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		_ = json.NewEncoder(w).Encode(models.Health{Status: "available"})
	}))
	defer ts.Close()

	opts := DefaultOptions()
	opts.BaseURL = ts.URL

	apiClient, err := NewClient(opts)
	require.NoError(t, err)

	_, err = apiClient.Health(context.Background())
	require.NoError(t, err)

	require.NoError(t, apiClient.Close())
	require.NoError(t, apiClient.Close(), "close is idempotent")

	_, err = apiClient.Health(context.Background())
	assert.ErrorIs(t, err, ErrClientClosed)
	assert.Equal(t, 1, requests, "no request may be sent after close")
}

func TestCreateIndex(t *testing.T) {
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/indexes", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(models.TaskInfo{
			TaskUID: 1,
			Status:  models.TaskStatusEnqueued,
			Type:    models.TaskTypeIndexCreation,
		})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	info, err := apiClient.CreateIndex(context.Background(), "movies", "id")
	require.NoError(t, err)

	assert.Equal(t, int64(1), info.TaskUID)
	assert.Equal(t, models.TaskTypeIndexCreation, info.Type)
	assert.Equal(t, "movies", gotBody["uid"])
	assert.Equal(t, "id", gotBody["primaryKey"])
}

func TestCreateIndexEmptyUID(t *testing.T) {
	apiClient := newTaskTestClient(t, "http://localhost:7700")

	_, err := apiClient.CreateIndex(context.Background(), "", "")

	var invalidErr *InvalidArgumentError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestGetIndex(t *testing.T) {
	primaryKey := "id"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/indexes/movies", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.IndexInfo{
			UID:        "movies",
			PrimaryKey: &primaryKey,
		})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	index, err := apiClient.GetIndex(context.Background(), "movies")
	require.NoError(t, err)

	assert.Equal(t, "movies", index.UID)
	require.NotNil(t, index.PrimaryKey)
	assert.Equal(t, "id", *index.PrimaryKey)
}

func TestListIndexes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/indexes", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.IndexesResults{
			Results: []models.IndexInfo{{UID: "movies"}, {UID: "books"}},
			Total:   2,
		})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	indexes, err := apiClient.ListIndexes(context.Background())
	require.NoError(t, err)

	require.Len(t, indexes, 2)
	assert.Equal(t, "movies", indexes[0].UID)
	assert.Equal(t, "books", indexes[1].UID)
}

func TestDeleteIndex(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/indexes/movies", r.URL.Path)

		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(models.TaskInfo{
			TaskUID: 2,
			Status:  models.TaskStatusEnqueued,
			Type:    models.TaskTypeIndexDeletion,
		})
	}))
	defer ts.Close()

	apiClient := newTaskTestClient(t, ts.URL)

	info, err := apiClient.DeleteIndex(context.Background(), "movies")
	require.NoError(t, err)
	assert.Equal(t, models.TaskTypeIndexDeletion, info.Type)
}
