package projections

import (
	"context"
	"html/template"

	"onda/internal/domain/agenda"
)

// AgendaStore interface for agenda queries.
type AgendaStore interface {
	List(ctx context.Context, month string) ([]agenda.Event, error)
}

// GetAgendaQuery carries query parameters. Month is YYYY-MM or empty for all events.
type GetAgendaQuery struct {
	Month string
}

// GetAgendaDeps holds dependencies for GetAgenda.
type GetAgendaDeps struct {
	EventStore AgendaStore
}

// AgendaEvent is an event with its description rendered to HTML.
type AgendaEvent struct {
	agenda.Event
	DescricaoHTML template.HTML `json:"descricao_html"`
}

// AgendaDay groups the events of one date.
type AgendaDay struct {
	Date   string        `json:"date"`
	Events []AgendaEvent `json:"events"`
}

// GetAgendaResult carries the agenda, flat and grouped by day.
type GetAgendaResult struct {
	Month  string        `json:"month,omitempty"`
	Events []AgendaEvent `json:"events"`
	Days   []AgendaDay   `json:"days"`
}

// QueryGetAgenda lists agenda events ordered by date and start time.
// PRE: Month is empty or YYYY-MM
// POST: events without a start time come first on their day
func QueryGetAgenda(ctx context.Context, query GetAgendaQuery, deps GetAgendaDeps) (GetAgendaResult, error) {
	if query.Month != "" {
		if _, err := agenda.ParseMonth(query.Month); err != nil {
			return GetAgendaResult{}, err
		}
	}

	events, err := deps.EventStore.List(ctx, query.Month)
	if err != nil {
		return GetAgendaResult{}, err
	}
	agenda.Sort(events)

	result := GetAgendaResult{Month: query.Month, Events: make([]AgendaEvent, 0, len(events))}
	for _, e := range events {
		ae := AgendaEvent{Event: e}
		if e.Descricao != "" {
			ae.DescricaoHTML = RenderMarkdown(e.Descricao)
		}
		result.Events = append(result.Events, ae)

		if n := len(result.Days); n == 0 || result.Days[n-1].Date != e.DataEvento {
			result.Days = append(result.Days, AgendaDay{Date: e.DataEvento})
		}
		last := &result.Days[len(result.Days)-1]
		last.Events = append(last.Events, ae)
	}
	return result, nil
}
