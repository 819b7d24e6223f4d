package orchestrators

import (
	"context"
	"log/slog"

	"onda/internal/application/listutil"
	"onda/internal/domain/registration"
)

// RecordStoreForUpdate defines the store interface needed by record edits.
type RecordStoreForUpdate interface {
	Update(ctx context.Context, id string, partial map[string]any) (listutil.Record, error)
	Delete(ctx context.Context, id string) error
}

// RecordDeps holds dependencies for the record orchestrators.
type RecordDeps struct {
	Store RecordStoreForUpdate
	Form  registration.Form
}

// UpdateRecordInput carries a partial row update.
type UpdateRecordInput struct {
	Actor   Actor
	ID      string
	Partial map[string]any
}

// ExecuteUpdateRecord validates and applies a partial update to one registration row.
// PRE: Actor can edit; Partial only names writable columns of Form
// POST: returns the row as stored after the update
// INVARIANT: last write wins; no version check
func ExecuteUpdateRecord(ctx context.Context, input UpdateRecordInput, deps RecordDeps) (listutil.Record, error) {
	if !input.Actor.CanEdit() {
		return nil, ErrForbidden
	}
	if err := deps.Form.ValidateUpdate(input.Partial); err != nil {
		return nil, err
	}

	rec, err := deps.Store.Update(ctx, input.ID, input.Partial)
	if err != nil {
		return nil, err
	}

	slog.Info("record_event", "event", "record_updated", "table", deps.Form.Table, "id", input.ID,
		"columns", len(input.Partial), "updated_by", input.Actor.AccountID)
	return rec, nil
}

// DeleteRecordInput identifies the row to delete.
type DeleteRecordInput struct {
	Actor Actor
	ID    string
}

// ExecuteDeleteRecord removes one registration row.
// PRE: Actor can edit
// POST: the row no longer exists
func ExecuteDeleteRecord(ctx context.Context, input DeleteRecordInput, deps RecordDeps) error {
	if !input.Actor.CanEdit() {
		return ErrForbidden
	}
	if err := deps.Store.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("record_event", "event", "record_deleted", "table", deps.Form.Table, "id", input.ID, "deleted_by", input.Actor.AccountID)
	return nil
}
