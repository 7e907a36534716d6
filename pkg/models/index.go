// Package models contains the wire types exchanged with the search service.
package models

import "time"

// IndexInfo describes an index as returned by the index endpoints
type IndexInfo struct {
	UID        string    `json:"uid"`
	PrimaryKey *string   `json:"primaryKey,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IndexesResults is the envelope returned by the index list endpoint
type IndexesResults struct {
	Results []IndexInfo `json:"results"`
	Offset  int64       `json:"offset"`
	Limit   int64       `json:"limit"`
	Total   int64       `json:"total"`
}

// IndexStats holds per-index statistics
type IndexStats struct {
	NumberOfDocuments int64            `json:"numberOfDocuments"`
	IsIndexing        bool             `json:"isIndexing"`
	FieldDistribution map[string]int64 `json:"fieldDistribution,omitempty"`
}

// DocumentsResults is the envelope returned by the document list endpoint
type DocumentsResults struct {
	Results []map[string]any `json:"results"`
	Offset  int64            `json:"offset"`
	Limit   int64            `json:"limit"`
	Total   int64            `json:"total"`
}

// SearchResults holds the hits and metadata for a search request. Hits are
// left untyped; callers decide what to decode them into.
type SearchResults struct {
	Hits               []map[string]any `json:"hits"`
	Offset             int64            `json:"offset"`
	Limit              int64            `json:"limit"`
	EstimatedTotalHits int64            `json:"estimatedTotalHits"`
	ProcessingTimeMs   int64            `json:"processingTimeMs"`
	Query              string           `json:"query"`
}
