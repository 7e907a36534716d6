package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sanders41/meilisearch-go-sdk/pkg/codec"
	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
	"github.com/sanders41/meilisearch-go-sdk/pkg/plugins"
)

// IndexPlugins holds the ordered plugin chains per operation group
type IndexPlugins struct {
	AddDocuments    []plugins.Plugin
	UpdateDocuments []plugins.Plugin
	DeleteDocuments []plugins.Plugin
	Search          []plugins.Plugin
}

// Index is a cheap handle on a single index. It issues no network calls at
// construction.
type Index struct {
	UID string

	client  *APIClient
	codec   codec.Codec
	plugins IndexPlugins
}

// IndexOption configures an Index handle
type IndexOption func(*Index)

// WithIndexCodec overrides the client codec for this index's requests
func WithIndexCodec(c codec.Codec) IndexOption {
	return func(i *Index) {
		i.codec = c
	}
}

// WithPlugins registers plugin chains on the index handle
func WithPlugins(p IndexPlugins) IndexOption {
	return func(i *Index) {
		i.plugins = p
	}
}

// Index returns a handle on the index with the given uid
func (c *APIClient) Index(uid string, opts ...IndexOption) *Index {
	idx := &Index{
		UID:    uid,
		client: c,
		codec:  c.codec,
	}

	for _, opt := range opts {
		opt(idx)
	}

	return idx
}

// execute routes the request through the client transport with this
// handle's codec
func (i *Index) execute(ctx context.Context, method, endpoint string, body, response any) error {
	return i.client.executeRequestWithCodec(ctx, method, endpoint, body, response, i.codec)
}

// Fetch retrieves the index metadata from the server
func (i *Index) Fetch(ctx context.Context) (*models.IndexInfo, error) {
	return i.client.GetIndex(ctx, i.UID)
}

// Stats retrieves statistics for this index
func (i *Index) Stats(ctx context.Context) (*models.IndexStats, error) {
	var response models.IndexStats
	if err := i.execute(ctx, http.MethodGet, indexURL(i.UID)+"/stats", nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// GetDocument retrieves a single document by id, decoding it into v
func (i *Index) GetDocument(ctx context.Context, documentID string, v any) error {
	return i.execute(ctx, http.MethodGet, documentURL(i.UID, documentID), nil, v)
}

// GetDocuments lists documents with offset/limit pagination
func (i *Index) GetDocuments(ctx context.Context, offset, limit int64) (*models.DocumentsResults, error) {
	q := url.Values{}
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	if limit > 0 {
		q.Set("limit", strconv.FormatInt(limit, 10))
	}

	var response models.DocumentsResults
	if err := i.execute(ctx, http.MethodGet, documentsURL(i.UID, q), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteDocument requests deletion of a single document by id
func (i *Index) DeleteDocument(ctx context.Context, documentID string) (*models.TaskInfo, error) {
	var response models.TaskInfo
	if err := i.execute(ctx, http.MethodDelete, documentURL(i.UID, documentID), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteDocuments requests deletion of the documents with the given ids
func (i *Index) DeleteDocuments(ctx context.Context, documentIDs []string) (*models.TaskInfo, error) {
	info := plugins.Info{DocumentIDs: documentIDs}
	if _, err := plugins.RunPre(ctx, i.plugins.DeleteDocuments, info); err != nil {
		return nil, err
	}
	plugins.RunConcurrent(ctx, i.plugins.DeleteDocuments, info)

	var response models.TaskInfo
	if err := i.execute(ctx, http.MethodPost, documentsDeleteBatchURL(i.UID), documentIDs, &response); err != nil {
		return nil, err
	}

	info.TaskInfos = []models.TaskInfo{response}
	if _, err := plugins.RunPost(ctx, i.plugins.DeleteDocuments, info); err != nil {
		return nil, err
	}

	return &response, nil
}

// DeleteAllDocuments requests deletion of every document in the index
func (i *Index) DeleteAllDocuments(ctx context.Context) (*models.TaskInfo, error) {
	var response models.TaskInfo
	if err := i.execute(ctx, http.MethodDelete, documentsURL(i.UID, nil), nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// SearchQuery is the request body for a search call. Ranking and parsing
// happen server-side; the client only forwards the query.
type SearchQuery struct {
	Query  string `json:"q"`
	Offset int64  `json:"offset,omitempty"`
	Limit  int64  `json:"limit,omitempty"`
	Filter string `json:"filter,omitempty"`
}

// Search runs a search against the index. Post-search plugins may transform
// the results before they are returned.
func (i *Index) Search(ctx context.Context, query *SearchQuery) (*models.SearchResults, error) {
	if query == nil {
		query = &SearchQuery{}
	}

	var response models.SearchResults
	if err := i.execute(ctx, http.MethodPost, searchURL(i.UID), query, &response); err != nil {
		return nil, err
	}

	info := plugins.Info{SearchResults: &response}
	plugins.RunConcurrent(ctx, i.plugins.Search, info)
	info, err := plugins.RunPost(ctx, i.plugins.Search, info)
	if err != nil {
		return nil, err
	}

	return info.SearchResults, nil
}
