package models

import "time"

// Chunk is a bounded slice of a document's text with page metadata.
// Chunks arrive from the upstream ingestion layer and need not be sorted.
type Chunk struct {
	Text       string `json:"text"`
	Page       int    `json:"page"`
	ChunkIndex int    `json:"chunk_index"`
}

// Document is the unit of input to the review pipeline. Content is optional
// full text; a document with content but no chunks is still analyzable.
type Document struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Content  string  `json:"content,omitempty"`
	Chunks   []Chunk `json:"chunks"`
}

type ReviewRun struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	InputDir   string    `json:"input_dir,omitempty"`
	OutPath    string    `json:"out_path,omitempty"`
	FailReason string    `json:"fail_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
