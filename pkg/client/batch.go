package client

import (
	"fmt"

	"github.com/sanders41/meilisearch-go-sdk/pkg/codec"
)

// Batching defaults
const (
	// DefaultBatchSize is the number of documents per batch when splitting
	// by count.
	DefaultBatchSize = 1000
	// DefaultMaxPayloadSize is the serialized byte ceiling per batch when
	// splitting by payload size (100 MB).
	DefaultMaxPayloadSize = 100 * 1024 * 1024
)

// batchByCount splits documents into contiguous batches of batchSize, with
// the final batch holding the remainder. Concatenating the batches in order
// reproduces the input exactly.
func batchByCount(documents []map[string]any, batchSize int) ([][]map[string]any, error) {
	if batchSize <= 0 {
		return nil, &InvalidArgumentError{Message: fmt.Sprintf("batch size must be positive, got %d", batchSize)}
	}

	if len(documents) == 0 {
		return nil, nil
	}

	batches := make([][]map[string]any, 0, (len(documents)+batchSize-1)/batchSize)
	for i := 0; i < len(documents); i += batchSize {
		end := i + batchSize
		if end > len(documents) {
			end = len(documents)
		}
		batches = append(batches, documents[i:end])
	}

	return batches, nil
}

// batchByPayload splits documents greedily so each batch's serialized size
// stays at or under maxPayloadSize, accounting for the JSON array brackets
// and separators. A single document that alone exceeds the ceiling forms its
// own batch rather than being dropped or split; the ceiling is best effort
// in that one case.
func batchByPayload(documents []map[string]any, maxPayloadSize int, c codec.Codec) ([][]map[string]any, error) {
	if maxPayloadSize <= 0 {
		return nil, &InvalidArgumentError{Message: fmt.Sprintf("max payload size must be positive, got %d", maxPayloadSize)}
	}

	if len(documents) == 0 {
		return nil, nil
	}

	// Array brackets plus one comma separator per additional document.
	const structuralOverhead = 2

	var batches [][]map[string]any
	var current []map[string]any
	currentSize := structuralOverhead

	for _, doc := range documents {
		encoded, err := c.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("error sizing document: %w", err)
		}

		docSize := len(encoded)
		if len(current) > 0 {
			docSize++ // comma separator
		}

		if len(current) > 0 && currentSize+docSize > maxPayloadSize {
			batches = append(batches, current)
			current = nil
			currentSize = structuralOverhead
			docSize = len(encoded)
		}

		current = append(current, doc)
		currentSize += docSize
	}

	if len(current) > 0 {
		batches = append(batches, current)
	}

	return batches, nil
}
