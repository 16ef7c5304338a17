package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrInvalidMimeType = errors.New("file type not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// CategoryEvidence is a photo attached to an incident report
const CategoryEvidence = "evidence"

// AllowedMimeTypes lists accepted content per category, detected from magic bytes
var AllowedMimeTypes = map[string][]string{
	CategoryEvidence: {"image/jpeg", "image/png", "image/webp", "image/gif"},
}

// MaxFileSizes per category in bytes
var MaxFileSizes = map[string]int64{
	CategoryEvidence: 10 * 1024 * 1024,
}

// ValidateFile validates file size and MIME type for a given category
func ValidateFile(reader io.Reader, category string) ([]byte, string, error) {
	allowedTypes, ok := AllowedMimeTypes[category]
	if !ok {
		return nil, "", fmt.Errorf("unknown category: %s", category)
	}
	maxSize, ok := MaxFileSizes[category]
	if !ok {
		maxSize = 10 * 1024 * 1024 // Default 10 MB
	}

	// Read maxSize + 1 to detect oversized files
	data, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil, "", ErrEmptyFile
	}
	if int64(len(data)) > maxSize {
		return nil, "", ErrFileTooLarge
	}

	// Detect MIME type from content (magic bytes)
	mimeType := http.DetectContentType(data)
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}

	for _, t := range allowedTypes {
		if t == mimeType {
			return data, mimeType, nil
		}
	}
	return nil, "", ErrInvalidMimeType
}

// GetExtensionForMime returns the file extension for a MIME type
func GetExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}
