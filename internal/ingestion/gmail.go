// Package ingestion pulls resumes from external sources into memory.
package ingestion

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fmuoria/veriskill/internal/document"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// ErrNoAttachment is returned when no matching message carries a PDF
var ErrNoAttachment = errors.New("no PDF attachment found")

// GmailSource fetches resume attachments from the signed-in user's mailbox
type GmailSource struct {
	service *gmail.Service
	log     *slog.Logger
}

// NewGmailSource creates a Gmail client over an authorized HTTP client
func NewGmailSource(ctx context.Context, client *http.Client, log *slog.Logger, opts ...option.ClientOption) (*GmailSource, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailSource{
		service: srv,
		log:     log,
	}, nil
}

// LatestResume returns the first PDF attachment of the newest message whose
// subject matches. Nothing is written to disk.
func (g *GmailSource) LatestResume(ctx context.Context, subject string) (*document.Document, error) {
	user := "me"
	query := fmt.Sprintf("subject:%q has:attachment filename:pdf", subject)

	r, err := g.service.Users.Messages.List(user).Q(query).MaxResults(10).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	if len(r.Messages) == 0 {
		return nil, fmt.Errorf("no messages found with subject: %s", subject)
	}

	for _, msg := range r.Messages {
		message, err := g.service.Users.Messages.Get(user, msg.Id).Context(ctx).Do()
		if err != nil {
			g.log.Warn("unable to retrieve message", "id", msg.Id, "err", err)
			continue
		}

		part := findPDFPart(message.Payload)
		if part == nil {
			continue
		}

		attachment, err := g.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
		if err != nil {
			g.log.Warn("unable to retrieve attachment", "id", msg.Id, "err", err)
			continue
		}

		data, err := decodeAttachment(attachment.Data)
		if err != nil {
			g.log.Warn("unable to decode attachment", "id", msg.Id, "err", err)
			continue
		}

		g.log.Info("imported attachment",
			"file", part.Filename,
			"from", senderName(message),
			"size", len(data))
		return document.FromBytes(part.Filename, part.MimeType, data), nil
	}

	return nil, ErrNoAttachment
}

// findPDFPart walks nested multipart payloads for the first PDF attachment
func findPDFPart(part *gmail.MessagePart) *gmail.MessagePart {
	if part == nil {
		return nil
	}
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		if strings.EqualFold(part.MimeType, document.MediaTypePDF) ||
			strings.HasSuffix(strings.ToLower(part.Filename), ".pdf") {
			if part.MimeType == "" || strings.EqualFold(part.MimeType, "application/octet-stream") {
				part.MimeType = document.MediaTypePDF
			}
			return part
		}
	}
	for _, p := range part.Parts {
		if found := findPDFPart(p); found != nil {
			return found
		}
	}
	return nil
}

// decodeAttachment accepts padded and unpadded URL-safe base64
func decodeAttachment(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(data)
}

// senderName extracts the display name from the From header
func senderName(message *gmail.Message) string {
	if message.Payload == nil {
		return "Unknown"
	}
	for _, header := range message.Payload.Headers {
		if header.Name == "From" {
			// "Name <email@example.com>"
			from := header.Value
			if idx := strings.Index(from, "<"); idx > 0 {
				return strings.Trim(strings.TrimSpace(from[:idx]), `"`)
			}
			if idx := strings.Index(from, "@"); idx > 0 {
				return from[:idx]
			}
			return "Unknown"
		}
	}
	return "Unknown"
}
