package document

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ErrDocumentTooLarge is returned when a size limit is configured and exceeded
var ErrDocumentTooLarge = errors.New("the selected document exceeds the maximum upload size")

// Encoder reads documents fully into memory and encodes them as base64.
// MaxBytes of zero disables the size check.
type Encoder struct {
	MaxBytes int64
}

// Encode returns the standard base64 encoding of the whole document
func (e Encoder) Encode(ctx context.Context, doc *Document) (string, error) {
	data, err := e.read(ctx, doc)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (e Encoder) read(ctx context.Context, doc *Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("no document selected")
	}

	rc, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", doc.Name, err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if e.MaxBytes > 0 {
		r = io.LimitReader(rc, e.MaxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", doc.Name, err)
	}
	if e.MaxBytes > 0 && int64(len(data)) > e.MaxBytes {
		return nil, ErrDocumentTooLarge
	}
	return data, nil
}

// PageCount reports the number of pages of a PDF document. It is used for
// previews only; malformed files yield an error rather than a panic.
func PageCount(doc *Document) (n int, err error) {
	data, err := Encoder{}.read(context.Background(), doc)
	if err != nil {
		return 0, err
	}

	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse pdf: %w", err)
	}
	return reader.NumPage(), nil
}
