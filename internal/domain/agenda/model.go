package agenda

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Event type constants.
const (
	TypeEvento  = "evento"
	TypeReuniao = "reuniao"
	TypePrazo   = "prazo" // deadline
)

// ValidTypes contains all valid tipo_evento values.
var ValidTypes = []string{TypeEvento, TypeReuniao, TypePrazo}

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// Date and time layouts used by the agenda columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("titulo cannot be empty")
	ErrTitleTooLong     = errors.New("titulo cannot exceed 200 characters")
	ErrDescriptionLong  = errors.New("descricao cannot exceed 5000 characters")
	ErrInvalidDate      = errors.New("data_evento must be a date in YYYY-MM-DD format")
	ErrInvalidStartTime = errors.New("hora_inicio must be in HH:MM format")
	ErrInvalidEndTime   = errors.New("hora_fim must be in HH:MM format")
	ErrEndBeforeStart   = errors.New("hora_fim cannot be before hora_inicio")
	ErrInvalidType      = errors.New("tipo_evento must be one of: evento, reuniao, prazo")
	ErrInvalidMonth     = errors.New("mes must be in YYYY-MM format")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Event is one entry of the retreat agenda (the eventos_agenda table).
// INVARIANT: HoraFim >= HoraInicio when both are set.
type Event struct {
	ID         string    `json:"id"`
	Titulo     string    `json:"titulo" validate:"required,max=200"`
	Descricao  string    `json:"descricao" validate:"max=5000"`
	DataEvento string    `json:"data_evento" validate:"required,datetime=2006-01-02"`
	HoraInicio string    `json:"hora_inicio" validate:"omitempty,datetime=15:04"`
	HoraFim    string    `json:"hora_fim" validate:"omitempty,datetime=15:04"`
	TipoEvento string    `json:"tipo_evento" validate:"oneof=evento reuniao prazo"`
	CriadoPor  string    `json:"criado_por"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ApplyDefaults trims text fields and fills the default event type.
// PRE: none
// POST: TipoEvento is non-empty
func (e *Event) ApplyDefaults() {
	e.Titulo = strings.TrimSpace(e.Titulo)
	e.DataEvento = strings.TrimSpace(e.DataEvento)
	e.HoraInicio = strings.TrimSpace(e.HoraInicio)
	e.HoraFim = strings.TrimSpace(e.HoraFim)
	if strings.TrimSpace(e.TipoEvento) == "" {
		e.TipoEvento = TypeEvento
	}
}

// Validate checks the event's invariants.
// PRE: ApplyDefaults has been called
// POST: returns nil if valid, the sentinel error for the first violation otherwise
func (e *Event) Validate() error {
	if err := validate.Struct(e); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}
	if e.HoraInicio != "" && e.HoraFim != "" && e.HoraFim < e.HoraInicio {
		return ErrEndBeforeStart
	}
	return nil
}

// fieldError maps a validator failure to the package's sentinel errors.
func fieldError(fe validator.FieldError) error {
	switch fe.StructField() {
	case "Titulo":
		if fe.Tag() == "max" {
			return ErrTitleTooLong
		}
		return ErrEmptyTitle
	case "Descricao":
		return ErrDescriptionLong
	case "DataEvento":
		return ErrInvalidDate
	case "HoraInicio":
		return ErrInvalidStartTime
	case "HoraFim":
		return ErrInvalidEndTime
	case "TipoEvento":
		return ErrInvalidType
	}
	return errors.New(fe.Error())
}

// Date returns the parsed event date, or the zero time when invalid.
func (e *Event) Date() time.Time {
	d, err := time.Parse(DateLayout, e.DataEvento)
	if err != nil {
		return time.Time{}
	}
	return d
}

// InMonth reports whether the event falls in month, given as YYYY-MM.
// INVARIANT: Event fields are not mutated
func (e *Event) InMonth(month string) bool {
	return strings.HasPrefix(e.DataEvento, month+"-")
}

// ParseMonth checks a YYYY-MM month filter.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// Sort orders events by date, then start time. Events without a start time
// come first on their day; ties keep their existing order.
func Sort(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := strings.Compare(a.DataEvento, b.DataEvento); c != 0 {
			return c
		}
		return strings.Compare(a.HoraInicio, b.HoraInicio)
	})
}
