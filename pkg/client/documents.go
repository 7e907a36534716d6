package client

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/sanders41/meilisearch-go-sdk/internal/logger"
	"github.com/sanders41/meilisearch-go-sdk/pkg/models"
	"github.com/sanders41/meilisearch-go-sdk/pkg/plugins"
)

// SubmitOptions controls how a document sequence is split and dispatched.
// The zero value splits into batches of DefaultBatchSize submitted
// sequentially.
type SubmitOptions struct {
	// BatchSize is the number of documents per batch. Defaults to
	// DefaultBatchSize when zero; negative values are rejected.
	BatchSize int

	// MaxPayloadSize, when positive, switches to payload-size batching:
	// batches are filled greedily up to this many serialized bytes instead
	// of a fixed document count.
	MaxPayloadSize int

	// Concurrent dispatches all batches at once instead of sequentially.
	// The returned TaskInfo order is batch order either way.
	Concurrent bool
}

// AddDocuments submits the whole document sequence in one request. The
// server creates the documents, or fully replaces them when they already
// exist.
func (i *Index) AddDocuments(ctx context.Context, documents []map[string]any, primaryKey string) (*models.TaskInfo, error) {
	return i.submitDocuments(ctx, http.MethodPost, documents, primaryKey, i.plugins.AddDocuments)
}

// UpdateDocuments submits the whole document sequence in one request. The
// server creates the documents, or partially updates them when they already
// exist.
func (i *Index) UpdateDocuments(ctx context.Context, documents []map[string]any, primaryKey string) (*models.TaskInfo, error) {
	return i.submitDocuments(ctx, http.MethodPut, documents, primaryKey, i.plugins.UpdateDocuments)
}

// AddDocumentsInBatches splits documents per opts and submits one request
// per batch. See submitBatches for the failure contract.
func (i *Index) AddDocumentsInBatches(ctx context.Context, documents []map[string]any, primaryKey string, opts *SubmitOptions) ([]models.TaskInfo, error) {
	return i.submitDocumentsInBatches(ctx, http.MethodPost, documents, primaryKey, opts, i.plugins.AddDocuments)
}

// UpdateDocumentsInBatches splits documents per opts and submits one request
// per batch. See submitBatches for the failure contract.
func (i *Index) UpdateDocumentsInBatches(ctx context.Context, documents []map[string]any, primaryKey string, opts *SubmitOptions) ([]models.TaskInfo, error) {
	return i.submitDocumentsInBatches(ctx, http.MethodPut, documents, primaryKey, opts, i.plugins.UpdateDocuments)
}

// AddDocumentsAndWait submits the documents and blocks until the resulting
// task reaches a terminal state
func (i *Index) AddDocumentsAndWait(ctx context.Context, documents []map[string]any, primaryKey string, wait *WaitOptions) (*models.Task, error) {
	info, err := i.AddDocuments(ctx, documents, primaryKey)
	if err != nil {
		return nil, err
	}
	return i.client.WaitForTask(ctx, info.TaskUID, wait)
}

// UpdateDocumentsAndWait submits the documents and blocks until the
// resulting task reaches a terminal state
func (i *Index) UpdateDocumentsAndWait(ctx context.Context, documents []map[string]any, primaryKey string, wait *WaitOptions) (*models.Task, error) {
	info, err := i.UpdateDocuments(ctx, documents, primaryKey)
	if err != nil {
		return nil, err
	}
	return i.client.WaitForTask(ctx, info.TaskUID, wait)
}

// AddDocumentsInBatchesAndWait submits all batches and blocks until every
// resulting task reaches a terminal state. Failed or canceled tasks are
// reported as an aggregate error alongside the resolved tasks.
func (i *Index) AddDocumentsInBatchesAndWait(ctx context.Context, documents []map[string]any, primaryKey string, opts *SubmitOptions, wait *WaitOptions) ([]models.Task, error) {
	infos, err := i.AddDocumentsInBatches(ctx, documents, primaryKey, opts)
	if err != nil {
		return nil, err
	}
	return i.waitForInfos(ctx, infos, wait)
}

// UpdateDocumentsInBatchesAndWait submits all batches and blocks until every
// resulting task reaches a terminal state. Failed or canceled tasks are
// reported as an aggregate error alongside the resolved tasks.
func (i *Index) UpdateDocumentsInBatchesAndWait(ctx context.Context, documents []map[string]any, primaryKey string, opts *SubmitOptions, wait *WaitOptions) ([]models.Task, error) {
	infos, err := i.UpdateDocumentsInBatches(ctx, documents, primaryKey, opts)
	if err != nil {
		return nil, err
	}
	return i.waitForInfos(ctx, infos, wait)
}

func (i *Index) waitForInfos(ctx context.Context, infos []models.TaskInfo, wait *WaitOptions) ([]models.Task, error) {
	if len(infos) == 0 {
		return []models.Task{}, nil
	}

	uids := make([]int64, 0, len(infos))
	for _, info := range infos {
		uids = append(uids, info.TaskUID)
	}

	if wait == nil {
		wait = &WaitOptions{}
	}
	raise := *wait
	raise.RaiseOnFailure = true

	return i.client.WaitForTasks(ctx, uids, &raise)
}

// submitDocuments is the unbatched submission path
func (i *Index) submitDocuments(ctx context.Context, method string, documents []map[string]any, primaryKey string, chain []plugins.Plugin) (*models.TaskInfo, error) {
	info := plugins.Info{Documents: documents, PrimaryKey: primaryKey}
	info, err := plugins.RunPre(ctx, chain, info)
	if err != nil {
		return nil, err
	}
	plugins.RunConcurrent(ctx, chain, info)

	taskInfo, err := i.submitOne(ctx, method, info.Documents, primaryKey)
	if err != nil {
		return nil, err
	}

	info.TaskInfos = []models.TaskInfo{*taskInfo}
	if _, err := plugins.RunPost(ctx, chain, info); err != nil {
		return nil, err
	}

	return taskInfo, nil
}

// submitDocumentsInBatches is the batched submission path shared by add and
// update
func (i *Index) submitDocumentsInBatches(ctx context.Context, method string, documents []map[string]any, primaryKey string, opts *SubmitOptions, chain []plugins.Plugin) ([]models.TaskInfo, error) {
	if opts == nil {
		opts = &SubmitOptions{}
	}

	info := plugins.Info{Documents: documents, PrimaryKey: primaryKey}
	info, err := plugins.RunPre(ctx, chain, info)
	if err != nil {
		return nil, err
	}
	plugins.RunConcurrent(ctx, chain, info)

	batches, err := i.splitBatches(info.Documents, opts)
	if err != nil {
		return nil, err
	}

	// Zero documents means zero batches and no network calls.
	if len(batches) == 0 {
		return []models.TaskInfo{}, nil
	}

	logger.Debugf("submitting %d documents in %d batches (concurrent=%t)", len(info.Documents), len(batches), opts.Concurrent)

	results, err := i.submitBatches(ctx, method, batches, primaryKey, opts.Concurrent)
	if err != nil {
		return nil, err
	}

	info.TaskInfos = results
	if _, err := plugins.RunPost(ctx, chain, info); err != nil {
		return nil, err
	}

	return results, nil
}

func (i *Index) splitBatches(documents []map[string]any, opts *SubmitOptions) ([][]map[string]any, error) {
	if opts.MaxPayloadSize != 0 {
		return batchByPayload(documents, opts.MaxPayloadSize, i.codec)
	}

	size := opts.BatchSize
	if size == 0 {
		size = DefaultBatchSize
	}

	return batchByCount(documents, size)
}

// submitBatches issues one request per batch. Sequential mode submits in
// order and stops at the first failure. Concurrent mode dispatches all
// batches at once; a failure cancels the in-flight remainder via the group
// context. Either way the returned order is batch order, not completion
// order, and a failure surfaces as a SubmitError carrying the
// acknowledgments obtained before it.
func (i *Index) submitBatches(ctx context.Context, method string, batches [][]map[string]any, primaryKey string, concurrent bool) ([]models.TaskInfo, error) {
	results := make([]models.TaskInfo, len(batches))

	if !concurrent {
		for idx, batch := range batches {
			taskInfo, err := i.submitOne(ctx, method, batch, primaryKey)
			if err != nil {
				return nil, &SubmitError{Submitted: results[:idx], Err: err}
			}
			results[idx] = *taskInfo
		}
		return results, nil
	}

	// Each goroutine owns exactly one slot, so no locking is needed.
	submitted := make([]bool, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	for idx, batch := range batches {
		idx, batch := idx, batch
		g.Go(func() error {
			taskInfo, err := i.submitOne(gctx, method, batch, primaryKey)
			if err != nil {
				return err
			}
			results[idx] = *taskInfo
			submitted[idx] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		partial := make([]models.TaskInfo, 0, len(batches))
		for idx := range batches {
			if submitted[idx] {
				partial = append(partial, results[idx])
			}
		}
		return nil, &SubmitError{Submitted: partial, Err: err}
	}

	return results, nil
}

// submitOne issues a single document mutation request
func (i *Index) submitOne(ctx context.Context, method string, documents []map[string]any, primaryKey string) (*models.TaskInfo, error) {
	q := url.Values{}
	if primaryKey != "" {
		q.Set("primaryKey", primaryKey)
	}

	var response models.TaskInfo
	if err := i.execute(ctx, method, documentsURL(i.UID, q), documents, &response); err != nil {
		return nil, err
	}

	return &response, nil
}
