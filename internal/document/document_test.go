package document

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeReturnsBase64OfWholeDocument(t *testing.T) {
	raw := []byte("%PDF-1.4\nsome resume bytes\x00\xff")
	doc := FromBytes("cv.pdf", "application/pdf", raw)

	encoded, err := Encoder{}.Encode(context.Background(), doc)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Encode() produced invalid base64: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Errorf("Round trip mismatch: got %q, want %q", decoded, raw)
	}
}

func TestEncodePropagatesReadFailure(t *testing.T) {
	readErr := errors.New("disk unplugged")
	doc := FromOpener("cv.pdf", "application/pdf", 0, func() (io.ReadCloser, error) {
		return nil, readErr
	})

	_, err := Encoder{}.Encode(context.Background(), doc)
	if !errors.Is(err, readErr) {
		t.Fatalf("Encode() error = %v, want wrapped %v", err, readErr)
	}
}

func TestEncodeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Encoder{}.Encode(ctx, FromBytes("cv.pdf", "application/pdf", []byte("x")))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Encode() error = %v, want context.Canceled", err)
	}
}

func TestEncodeSizeLimit(t *testing.T) {
	doc := FromBytes("cv.pdf", "application/pdf", make([]byte, 11))

	tests := []struct {
		name    string
		max     int64
		wantErr error
	}{
		{name: "No limit configured", max: 0},
		{name: "Within limit", max: 11},
		{name: "Over limit", max: 10, wantErr: ErrDocumentTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encoder{MaxBytes: tt.max}.Encode(context.Background(), doc)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeNilDocument(t *testing.T) {
	if _, err := (Encoder{}).Encode(context.Background(), nil); err == nil {
		t.Error("Expected error for nil document")
	}
}

func TestFromBytesNormalizesMediaType(t *testing.T) {
	doc := FromBytes("cv.txt", "Text/Plain; charset=utf-8", nil)
	if doc.MediaType != "text/plain" {
		t.Errorf("MediaType = %q, want %q", doc.MediaType, "text/plain")
	}
}

func TestFromFileDetectsPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.bin")
	if err := os.WriteFile(path, []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	doc, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile() failed: %v", err)
	}
	if doc.MediaType != MediaTypePDF {
		t.Errorf("MediaType = %q, want %q", doc.MediaType, MediaTypePDF)
	}
	if doc.Name != "resume.bin" {
		t.Errorf("Name = %q, want resume.bin", doc.Name)
	}
	if doc.Size == 0 {
		t.Error("Expected non-zero size")
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPageCountRejectsGarbage(t *testing.T) {
	doc := FromBytes("cv.pdf", MediaTypePDF, []byte("not really a pdf"))
	if _, err := PageCount(doc); err == nil {
		t.Error("Expected error for malformed pdf")
	}
}
