package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"onda/internal/adapters/email"
	agendaStore "onda/internal/adapters/storage/agenda"
	"onda/internal/domain/account"
	"onda/internal/domain/agenda"
)

// EventStoreForOrchestrator defines the store interface needed by agenda orchestrators.
type EventStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (agenda.Event, error)
	Save(ctx context.Context, e agenda.Event) error
	Delete(ctx context.Context, id string) error
}

// AccountLister lists the usuarios who receive agenda notices.
type AccountLister interface {
	List(ctx context.Context) ([]account.Account, error)
}

// AgendaDeps holds dependencies for the agenda orchestrators.
type AgendaDeps struct {
	EventStore     EventStoreForOrchestrator
	Accounts       AccountLister // required only when notifying
	EmailSender    email.Sender  // nil disables notices
	RenderMarkdown func(string) template.HTML
	AgendaURL      string
	GenerateID     func() string
	Now            func() time.Time
}

// SaveEventInput carries a new or edited agenda event.
type SaveEventInput struct {
	Actor  Actor
	Event  agenda.Event // empty ID creates
	Notify bool         // email every usuario about the event
}

// ErrEventNotFound is returned when editing or deleting an unknown event.
var ErrEventNotFound = errors.New("event not found")

// getEvent loads id, reporting a missing row as ErrEventNotFound and wrapping any other store failure.
func getEvent(ctx context.Context, store EventStoreForOrchestrator, id string) (agenda.Event, error) {
	e, err := store.GetByID(ctx, id)
	switch {
	case errors.Is(err, agendaStore.ErrNotFound):
		return agenda.Event{}, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	case err != nil:
		return agenda.Event{}, fmt.Errorf("load event %s: %w", id, err)
	}
	return e, nil
}

// ExecuteSaveEvent creates or updates an agenda event.
// PRE: Actor can edit
// POST: the event is stored; criado_por and created_at of an existing event are preserved
// INVARIANT: hora_fim >= hora_inicio when both are set
func ExecuteSaveEvent(ctx context.Context, input SaveEventInput, deps AgendaDeps) (agenda.Event, error) {
	if !input.Actor.CanEdit() {
		return agenda.Event{}, ErrForbidden
	}

	e := input.Event
	e.ApplyDefaults()
	now := deps.Now()
	created := e.ID == ""
	if created {
		e.ID = deps.GenerateID()
		e.CriadoPor = input.Actor.AccountID
		e.CreatedAt = now
	} else {
		existing, err := getEvent(ctx, deps.EventStore, e.ID)
		if err != nil {
			return agenda.Event{}, err
		}
		e.CriadoPor = existing.CriadoPor
		e.CreatedAt = existing.CreatedAt
	}
	e.UpdatedAt = now

	if err := e.Validate(); err != nil {
		return agenda.Event{}, err
	}
	if err := deps.EventStore.Save(ctx, e); err != nil {
		return agenda.Event{}, err
	}

	event := "event_updated"
	if created {
		event = "event_created"
	}
	slog.Info("agenda_event", "event", event, "event_id", e.ID, "data_evento", e.DataEvento, "by", input.Actor.AccountID)

	if input.Notify && deps.EmailSender != nil {
		if err := notifyEvent(ctx, e, deps); err != nil {
			slog.Error("agenda_event", "event", "notice_failed", "event_id", e.ID, "error", err)
		}
	}
	return e, nil
}

// notifyEvent emails every usuario through the batch API.
func notifyEvent(ctx context.Context, e agenda.Event, deps AgendaDeps) error {
	accounts, err := deps.Accounts.List(ctx)
	if err != nil {
		return err
	}
	data := email.EventNoticeData{
		Titulo:    e.Titulo,
		Data:      e.Date().Format("02/01/2006"),
		AgendaURL: deps.AgendaURL,
	}
	if e.HoraInicio != "" {
		data.Horario = e.HoraInicio
		if e.HoraFim != "" {
			data.Horario += " - " + e.HoraFim
		}
	}
	if e.Descricao != "" && deps.RenderMarkdown != nil {
		data.Descricao = deps.RenderMarkdown(e.Descricao)
	}
	subject, body, err := email.RenderEventNotice(data)
	if err != nil {
		return err
	}

	addrs := make([]string, 0, len(accounts))
	for _, a := range accounts {
		addrs = append(addrs, a.Email)
	}
	to := email.Recipients(addrs...)
	reqs := make([]email.SendRequest, 0, len(to))
	for _, addr := range to {
		reqs = append(reqs, email.SendRequest{To: []string{addr}, Subject: subject, HTML: body})
	}
	if len(reqs) == 0 {
		return nil
	}
	sent, err := deps.EmailSender.SendBatch(ctx, reqs)
	slog.Info("agenda_event", "event", "notice_sent", "event_id", e.ID, "recipients", len(sent))
	return err
}

// DeleteEventInput identifies the event to delete.
type DeleteEventInput struct {
	Actor Actor
	ID    string
}

// ExecuteDeleteEvent removes an agenda event.
// PRE: Actor can edit
// POST: the event no longer exists
func ExecuteDeleteEvent(ctx context.Context, input DeleteEventInput, deps AgendaDeps) error {
	if !input.Actor.CanEdit() {
		return ErrForbidden
	}
	if _, err := getEvent(ctx, deps.EventStore, input.ID); err != nil {
		return err
	}
	if err := deps.EventStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	slog.Info("agenda_event", "event", "event_deleted", "event_id", input.ID, "by", input.Actor.AccountID)
	return nil
}
