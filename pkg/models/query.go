package models

import "time"

// ImageMeta identifies an attached image by path and file metadata.
// Modification time and size feed the request fingerprint, so any
// change to the file on disk produces a different cache key.
type ImageMeta struct {
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
}

// Attachment is binary image content sent to the backend.
type Attachment struct {
	Data []byte `json:"data"`
	MIME string `json:"mime"`
}

// ResultSource describes how a query was resolved.
type ResultSource string

const (
	// SourceCache means the answer came from the response cache.
	SourceCache ResultSource = "cache"
	// SourceBackend means the answer came from a backend call.
	SourceBackend ResultSource = "backend"
	// SourceSearch means the question was answered by a web search.
	SourceSearch ResultSource = "search"
	// SourceUnavailable means admission was denied within the wait timeout.
	SourceUnavailable ResultSource = "unavailable"
	// SourceFailed means all backend attempts failed.
	SourceFailed ResultSource = "failed"
)

// Result is the outcome of one orchestrated query.
type Result struct {
	RequestID string       `json:"request_id"`
	Text      string       `json:"text"`
	Source    ResultSource `json:"source"`
	Tier      Tier         `json:"tier,omitempty"`
	Model     string       `json:"model,omitempty"`
}
