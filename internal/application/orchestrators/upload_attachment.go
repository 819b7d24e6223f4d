package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"onda/internal/adapters/blob"
	"onda/internal/application/listutil"
	"onda/internal/domain/surfer"
	"onda/internal/metrics"
)

// RecordStoreForUpload defines the store interface needed by UploadAttachment.
type RecordStoreForUpload interface {
	Get(ctx context.Context, id string) (listutil.Record, error)
	Update(ctx context.Context, id string, partial map[string]any) (listutil.Record, error)
}

// UploadAttachmentDeps holds dependencies for UploadAttachment.
type UploadAttachmentDeps struct {
	Store    RecordStoreForUpload
	Uploader blob.Uploader
}

// UploadAttachmentInput carries one uploaded file.
type UploadAttachmentInput struct {
	Actor       Actor
	RecordID    string
	Slot        surfer.Slot
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ErrFileTooLarge is returned for uploads above surfer.MaxUploadBytes.
var ErrFileTooLarge = errors.New("file exceeds the 10 MB limit")

// ExecuteUploadAttachment stores a file in the slot's bucket under a random name and
// writes its public URL to the slot's column.
// PRE: Actor can edit; the record exists
// POST: the object is stored and the record's url column points at it
// INVARIANT: a rejected upload leaves both the bucket and the record untouched
func ExecuteUploadAttachment(ctx context.Context, input UploadAttachmentInput, deps UploadAttachmentDeps) (listutil.Record, error) {
	if !input.Actor.CanEdit() {
		return nil, ErrForbidden
	}
	if !input.Slot.Accepts(input.ContentType) {
		uploadOutcome(input.Slot.Bucket, "rejected")
		return nil, fmt.Errorf("%w: %s", surfer.ErrUnsupportedContent, input.ContentType)
	}
	if input.Size > surfer.MaxUploadBytes {
		uploadOutcome(input.Slot.Bucket, "rejected")
		return nil, ErrFileTooLarge
	}
	if _, err := deps.Store.Get(ctx, input.RecordID); err != nil {
		return nil, err
	}

	name := blob.RandomName(blob.ExtensionFor(input.Filename, input.ContentType))
	body := io.LimitReader(input.Body, surfer.MaxUploadBytes+1)
	url, err := deps.Uploader.Upload(ctx, input.Slot.Bucket, name, body, input.ContentType)
	if err != nil {
		uploadOutcome(input.Slot.Bucket, "error")
		slog.Error("upload_event", "event", "upload_failed", "bucket", input.Slot.Bucket, "record_id", input.RecordID, "error", err)
		return nil, fmt.Errorf("upload %s: %w", input.Slot.Name, err)
	}

	rec, err := deps.Store.Update(ctx, input.RecordID, map[string]any{input.Slot.Column: url})
	if err != nil {
		uploadOutcome(input.Slot.Bucket, "error")
		return nil, err
	}

	uploadOutcome(input.Slot.Bucket, "ok")
	slog.Info("upload_event", "event", "attachment_uploaded", "bucket", input.Slot.Bucket, "object", name,
		"record_id", input.RecordID, "uploaded_by", input.Actor.AccountID)
	return rec, nil
}

func uploadOutcome(bucket, status string) {
	metrics.UploadsTotal.WithLabelValues(bucket, status).Inc()
}
