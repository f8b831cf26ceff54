package fsmeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/djherbis/times"
	"go.uber.org/zap"

	"docmcp/internal/model"
)

var (
	ErrNotFound      = errors.New("file not found")
	ErrNotADirectory = errors.New("path is not a directory")
	ErrInvalidJSON   = errors.New("invalid JSON content in file")
)

const defaultFileType = "application/octet-stream"

// TypeByExtension infers a MIME type from the extension of path. Parameters such
// as charset are dropped. Unknown extensions map to application/<ext>.
func TypeByExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" || ext == "." {
		return defaultFileType
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
		return t
	}
	return "application/" + strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Extract reads filesystem attributes of path into a FileMetadata. It never
// modifies the file.
func Extract(path, description string) (*model.FileMetadata, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if description == "" {
		description = model.DefaultDescription
	}

	ts := times.Get(info)
	created := ts.ModTime()
	switch {
	case ts.HasBirthTime():
		created = ts.BirthTime()
	case ts.HasChangeTime():
		created = ts.ChangeTime()
	}

	return &model.FileMetadata{
		Path:        path,
		Name:        filepath.Base(path),
		Description: description,
		FileType:    TypeByExtension(path),
		Size:        info.Size(),
		CreatedAt:   created,
		UpdatedAt:   info.ModTime(),
	}, nil
}

// Scan walks dir recursively and extracts metadata for every non-directory entry,
// in directory listing order. Entries that fail extraction are logged and skipped.
func Scan(dir string, log *zap.Logger) ([]model.FileMetadata, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	files := make([]model.FileMetadata, 0)
	if err := scanRecursive(dir, log, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func scanRecursive(dir string, log *zap.Logger, out *[]model.FileMetadata) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := scanRecursive(path, log, out); err != nil {
				return err
			}
			continue
		}

		meta, err := Extract(path, "")
		if err != nil {
			log.Warn("skipping file", zap.String("path", path), zap.Error(err))
			continue
		}
		*out = append(*out, *meta)
	}
	return nil
}

// ReadJSONContent parses the file at path as a JSON object.
func ReadJSONContent(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}

	var content map[string]any
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidJSON, path, err)
	}
	if content == nil {
		return nil, fmt.Errorf("%w: %s: not an object", ErrInvalidJSON, path)
	}
	return content, nil
}
