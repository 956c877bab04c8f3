// Package document holds user-supplied resume files and turns them into a
// text-safe payload for the model request.
package document

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MediaTypePDF is the only media type the analysis accepts
	MediaTypePDF = "application/pdf"
	// MediaTypeDOC is legacy Word; accepted by upload forms, rejected by analysis
	MediaTypeDOC = "application/msword"
	// MediaTypeDOCX is OOXML Word; accepted by upload forms, rejected by analysis
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Opener returns a fresh reader over the document bytes
type Opener func() (io.ReadCloser, error)

// Document is a selected file: its name, declared media type and a way to read it.
// Size is informational and may be zero when unknown.
type Document struct {
	Name      string
	MediaType string
	Size      int64
	open      Opener
}

// FromBytes wraps an in-memory document such as a form upload or mail attachment
func FromBytes(name, mediaType string, data []byte) *Document {
	return &Document{
		Name:      name,
		MediaType: normalizeMediaType(mediaType),
		Size:      int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromOpener wraps a document read lazily, e.g. a URI picked in a file dialog
func FromOpener(name, mediaType string, size int64, open Opener) *Document {
	return &Document{
		Name:      name,
		MediaType: normalizeMediaType(mediaType),
		Size:      size,
		open:      open,
	}
}

// FromFile selects a local file. The declared media type is sniffed from the
// content, falling back to the file extension.
func FromFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", path)
	}

	mediaType := ""
	if m, err := mimetype.DetectFile(path); err == nil {
		mediaType = m.String()
	}
	if mediaType == "" || strings.HasPrefix(mediaType, "application/octet-stream") {
		mediaType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}

	return FromOpener(filepath.Base(path), mediaType, info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// Open returns a new reader over the document
func (d *Document) Open() (io.ReadCloser, error) {
	if d.open == nil {
		return nil, fmt.Errorf("document %q has no content", d.Name)
	}
	return d.open()
}

// normalizeMediaType drops parameters such as charset
func normalizeMediaType(mediaType string) string {
	base, _, _ := strings.Cut(mediaType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
