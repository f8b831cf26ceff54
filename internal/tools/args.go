package tools

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"docmcp/internal/model"
)

type pathArgs struct {
	Path *string `json:"path"`
}

type documentIDArgs struct {
	DocumentID *string `json:"documentId"`
	Path       *string `json:"path"`
}

type metadataArgs struct {
	Path        *string    `json:"path"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	FileType    *string    `json:"fileType"`
	Size        *float64   `json:"size"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

type documentArgs struct {
	DocumentID *string        `json:"documentId"`
	Path       *string        `json:"path"`
	Content    map[string]any `json:"content"`
	Metadata   *metadataArgs  `json:"metadata"`
}

func bind(req mcp.CallToolRequest, target any) error {
	if err := req.BindArguments(target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func missing(name string) error {
	return fmt.Errorf("missing required argument: %s", name)
}

func (a pathArgs) validate() (string, error) {
	if a.Path == nil {
		return "", missing("path")
	}
	return *a.Path, nil
}

func (a documentIDArgs) validate() (id, path string, err error) {
	if a.DocumentID == nil {
		return "", "", missing("documentId")
	}
	if a.Path != nil {
		path = *a.Path
	}
	return *a.DocumentID, path, nil
}

// toDocument validates create/update arguments. requireID is set for updates.
func (a documentArgs) toDocument(requireID bool) (*model.Document, error) {
	doc := &model.Document{}
	if requireID {
		if a.DocumentID == nil {
			return nil, missing("documentId")
		}
		doc.DocumentID = *a.DocumentID
	}
	if a.Path == nil {
		return nil, missing("path")
	}
	if a.Content == nil {
		return nil, missing("content")
	}
	if a.Metadata == nil {
		return nil, missing("metadata")
	}
	meta, err := a.Metadata.toModel()
	if err != nil {
		return nil, err
	}

	doc.Path = *a.Path
	doc.Content = a.Content
	doc.Metadata = meta
	return doc, nil
}

func (m metadataArgs) toModel() (model.FileMetadata, error) {
	switch {
	case m.Path == nil:
		return model.FileMetadata{}, missing("metadata.path")
	case m.Name == nil:
		return model.FileMetadata{}, missing("metadata.name")
	case m.FileType == nil:
		return model.FileMetadata{}, missing("metadata.fileType")
	case m.Size == nil:
		return model.FileMetadata{}, missing("metadata.size")
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit in int64.
	size := *m.Size
	if size < 0 || size != math.Trunc(size) || size >= math.MaxInt64 {
		return model.FileMetadata{}, errors.New("metadata.size must be a non-negative integer")
	}

	out := model.FileMetadata{
		Path:     *m.Path,
		Name:     *m.Name,
		FileType: *m.FileType,
		Size:     int64(size),
	}
	if m.Description != nil {
		out.Description = *m.Description
	}
	if m.CreatedAt != nil {
		out.CreatedAt = m.CreatedAt.UTC()
	}
	if m.UpdatedAt != nil {
		out.UpdatedAt = m.UpdatedAt.UTC()
	}
	return out, nil
}
