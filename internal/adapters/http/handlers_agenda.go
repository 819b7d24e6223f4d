package web

import (
	"net/http"
	"strings"

	"onda/internal/application/orchestrators"
	"onda/internal/application/projections"
	"onda/internal/domain/agenda"
)

// eventInput is the JSON body of POST and PUT /api/agenda.
type eventInput struct {
	Titulo     string `json:"titulo"`
	Descricao  string `json:"descricao"`
	DataEvento string `json:"data_evento"`
	HoraInicio string `json:"hora_inicio"`
	HoraFim    string `json:"hora_fim"`
	TipoEvento string `json:"tipo_evento"`
	Notify     bool   `json:"notify"` // email every usuario about the event
}

func (in eventInput) event(id string) agenda.Event {
	return agenda.Event{
		ID:         id,
		Titulo:     in.Titulo,
		Descricao:  in.Descricao,
		DataEvento: in.DataEvento,
		HoraInicio: in.HoraInicio,
		HoraFim:    in.HoraFim,
		TipoEvento: in.TipoEvento,
	}
}

var agendaErrors = append(badRequest(
	agenda.ErrEmptyTitle,
	agenda.ErrTitleTooLong,
	agenda.ErrDescriptionLong,
	agenda.ErrInvalidDate,
	agenda.ErrInvalidStartTime,
	agenda.ErrInvalidEndTime,
	agenda.ErrEndBeforeStart,
	agenda.ErrInvalidType,
	agenda.ErrInvalidMonth,
),
	statusRule{err: orchestrators.ErrForbidden, status: http.StatusForbidden},
	statusRule{err: orchestrators.ErrEventNotFound, status: http.StatusNotFound},
)

func agendaDeps() orchestrators.AgendaDeps {
	return orchestrators.AgendaDeps{
		EventStore:     stores.Agenda,
		Accounts:       stores.Accounts,
		EmailSender:    emailSender,
		RenderMarkdown: projections.RenderMarkdown,
		AgendaURL:      strings.TrimRight(settings.BaseURL, "/") + "/agenda",
		GenerateID:     generateID,
		Now:            timeNow,
	}
}

// handleGetAgenda handles GET /api/agenda, optionally narrowed with ?mes=YYYY-MM.
func handleGetAgenda(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	result, err := projections.QueryGetAgenda(r.Context(),
		projections.GetAgendaQuery{Month: strings.TrimSpace(r.URL.Query().Get("mes"))},
		projections.GetAgendaDeps{EventStore: stores.Agenda})
	if err != nil {
		writeError(w, err, agendaErrors...)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCreateEvent handles POST /api/agenda.
func handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	saveEvent(w, r, "", http.StatusCreated)
}

// handleUpdateEvent handles PUT /api/agenda/{id}.
func handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	saveEvent(w, r, r.PathValue("id"), http.StatusOK)
}

func saveEvent(w http.ResponseWriter, r *http.Request, id string, status int) {
	sess, ok := requireEdit(w, r)
	if !ok {
		return
	}
	var in eventInput
	if err := strictDecode(r, &in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	e, err := orchestrators.ExecuteSaveEvent(r.Context(), orchestrators.SaveEventInput{
		Actor:  actorFrom(sess),
		Event:  in.event(id),
		Notify: in.Notify,
	}, agendaDeps())
	if err != nil {
		writeError(w, err, agendaErrors...)
		return
	}
	writeJSON(w, status, projections.AgendaEvent{Event: e, DescricaoHTML: projections.RenderMarkdown(e.Descricao)})
}

// handleDeleteEvent handles DELETE /api/agenda/{id}.
func handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireEdit(w, r)
	if !ok {
		return
	}
	err := orchestrators.ExecuteDeleteEvent(r.Context(), orchestrators.DeleteEventInput{
		Actor: actorFrom(sess),
		ID:    r.PathValue("id"),
	}, agendaDeps())
	if err != nil {
		writeError(w, err, agendaErrors...)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
