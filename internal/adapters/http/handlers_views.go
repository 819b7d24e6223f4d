package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	recordStore "onda/internal/adapters/storage/records"
	"onda/internal/application/catalog"
	"onda/internal/application/listutil"
	"onda/internal/application/orchestrators"
	"onda/internal/application/projections"
	"onda/internal/domain/registration"
	"onda/internal/domain/surfer"
)

type viewSummary struct {
	Name    string                `json:"name"`
	Title   string                `json:"title"`
	Columns []string              `json:"columns"`
	Filters []string              `json:"filters"`
	Sorts   []listutil.SortOption `json:"sorts"`
	Slots   []string              `json:"slots,omitempty"`
}

// handleListViews handles GET /api/views: the view catalog in menu order.
func handleListViews(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	entries := views.All()
	out := make([]viewSummary, 0, len(entries))
	for _, e := range entries {
		vs := viewSummary{
			Name:    e.Config.Name,
			Title:   e.Config.Title,
			Columns: e.Form.Columns,
			Filters: e.Config.Filters,
			Sorts:   e.Config.Sorts,
		}
		for _, s := range e.Slots {
			vs.Slots = append(vs.Slots, s.Name)
		}
		out = append(out, vs)
	}
	writeJSON(w, http.StatusOK, out)
}

// lookupView resolves {view} to its catalog entry and store, answering 404 otherwise.
func lookupView(w http.ResponseWriter, r *http.Request) (catalog.Entry, recordStore.Store, bool) {
	name := r.PathValue("view")
	entry, ok := views.Get(name)
	if !ok {
		http.Error(w, "unknown view", http.StatusNotFound)
		return catalog.Entry{}, nil, false
	}
	store, ok := stores.Records[name]
	if !ok {
		internalError(w, fmt.Errorf("no store for view %s", name))
		return catalog.Entry{}, nil, false
	}
	return entry, store, true
}

// handleGetView handles GET /api/views/{view}: one filtered, sorted page,
// or every matching row as CSV with ?format=csv.
func handleGetView(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	entry, store, ok := lookupView(w, r)
	if !ok {
		return
	}

	query := projections.GetViewQuery{
		Entry:  entry,
		Params: listutil.ParseListParams(r.URL.Query(), entry.Config),
	}
	deps := projections.GetViewDeps{Fetcher: store, Observe: observeView}

	if r.URL.Query().Get("format") == "csv" {
		rows, err := projections.QueryExportView(r.Context(), query, deps)
		if err != nil {
			internalError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.Config.Name+".csv"))
		if err := projections.WriteCSV(w, projections.ExportColumns(entry), rows); err != nil {
			internalError(w, err)
		}
		return
	}

	result, err := projections.QueryGetView(r.Context(), query, deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// observeView feeds view recompute timings to the perf collector, when one is configured.
func observeView(view string, rows int, took time.Duration) {
	if perfCollector != nil {
		perfCollector.RecordView(view, rows, took, time.Now())
	}
}

var recordErrors = append(badRequest(
	registration.ErrEmptyUpdate,
	registration.ErrUnknownColumn,
	registration.ErrReadOnlyColumn,
	registration.ErrInvalidValue,
	registration.ErrRequiredColumn,
),
	statusRule{err: orchestrators.ErrForbidden, status: http.StatusForbidden},
	statusRule{err: recordStore.ErrNotFound, status: http.StatusNotFound},
)

// handleUpdateRecord handles PATCH /api/views/{view}/{id} with a JSON object of column values.
func handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireEdit(w, r)
	if !ok {
		return
	}
	entry, store, ok := lookupView(w, r)
	if !ok {
		return
	}

	var partial map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&partial); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	rec, err := orchestrators.ExecuteUpdateRecord(r.Context(), orchestrators.UpdateRecordInput{
		Actor:   actorFrom(sess),
		ID:      r.PathValue("id"),
		Partial: partial,
	}, orchestrators.RecordDeps{Store: store, Form: entry.Form})
	if err != nil {
		writeError(w, err, recordErrors...)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord handles DELETE /api/views/{view}/{id}.
func handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireEdit(w, r)
	if !ok {
		return
	}
	entry, store, ok := lookupView(w, r)
	if !ok {
		return
	}

	err := orchestrators.ExecuteDeleteRecord(r.Context(), orchestrators.DeleteRecordInput{
		Actor: actorFrom(sess),
		ID:    r.PathValue("id"),
	}, orchestrators.RecordDeps{Store: store, Form: entry.Form})
	if err != nil {
		writeError(w, err, recordErrors...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// multipartOverhead allows for form boundaries and headers around the file part.
const multipartOverhead = 1 << 20

// handleUploadAttachment handles POST /api/views/{view}/{id}/attachments/{slot}.
// The file is the multipart field "file".
func handleUploadAttachment(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireEdit(w, r)
	if !ok {
		return
	}
	entry, store, ok := lookupView(w, r)
	if !ok {
		return
	}
	slot, ok := entry.Slot(r.PathValue("slot"))
	if !ok {
		http.Error(w, surfer.ErrUnknownSlot.Error(), http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, surfer.MaxUploadBytes+multipartOverhead)
	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, orchestrators.ErrFileTooLarge.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rec, err := orchestrators.ExecuteUploadAttachment(r.Context(), orchestrators.UploadAttachmentInput{
		Actor:       actorFrom(sess),
		RecordID:    r.PathValue("id"),
		Slot:        slot,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}, orchestrators.UploadAttachmentDeps{Store: store, Uploader: stores.Uploader})
	if err != nil {
		writeError(w, err,
			statusRule{err: orchestrators.ErrForbidden, status: http.StatusForbidden},
			statusRule{err: surfer.ErrUnsupportedContent, status: http.StatusUnsupportedMediaType},
			statusRule{err: orchestrators.ErrFileTooLarge, status: http.StatusRequestEntityTooLarge},
			statusRule{err: recordStore.ErrNotFound, status: http.StatusNotFound},
		)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
