package models

import "time"

// Health is the payload returned by the health endpoint
type Health struct {
	Status string `json:"status"`
}

// Version is the payload returned by the version endpoint
type Version struct {
	CommitSha  string `json:"commitSha"`
	CommitDate string `json:"commitDate"`
	PkgVersion string `json:"pkgVersion"`
}

// Stats holds server-wide statistics
type Stats struct {
	DatabaseSize int64                 `json:"databaseSize"`
	LastUpdate   *time.Time            `json:"lastUpdate,omitempty"`
	Indexes      map[string]IndexStats `json:"indexes,omitempty"`
}
