package model

import "time"

// DefaultDescription is stored when a file carries no description of its own.
const DefaultDescription = "No description available"

// FileMetadata describes a file addressed by its path. Path is the logical key:
// there is at most one metadata record per path.
type FileMetadata struct {
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	FileType    string    `json:"fileType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Document is the domain view of a stored document joined with its metadata.
// It is free of persistence tags; storage backends map it to their own records.
type Document struct {
	DocumentID string         `json:"documentId,omitempty"`
	Path       string         `json:"path"`
	Content    map[string]any `json:"content"`
	Metadata   FileMetadata   `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// DocumentRecord is a row of the documents collection. Metadata lives elsewhere.
type DocumentRecord struct {
	ID        string
	Path      string
	Content   map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentResponse is returned by create and update.
type DocumentResponse struct {
	DocumentID string       `json:"documentId"`
	Path       string       `json:"path"`
	Metadata   FileMetadata `json:"metadata"`
}

// FileListResponse is returned by a path listing.
type FileListResponse struct {
	Files []FileMetadata `json:"files"`
	Count int            `json:"count"`
}

// NewFileListResponse wraps files, never emitting a null list.
func NewFileListResponse(files []FileMetadata) FileListResponse {
	if files == nil {
		files = []FileMetadata{}
	}
	return FileListResponse{Files: files, Count: len(files)}
}

// DeleteResponse is returned after a document has been removed.
type DeleteResponse struct {
	Message    string `json:"message"`
	DocumentID string `json:"documentId"`
}
