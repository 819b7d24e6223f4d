package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Activity type constants
const (
	TypeSurf        = "surf"
	TypeAlimentacao = "alimentacao"
	TypeDescanso    = "descanso"
	TypeReuniao     = "reuniao"
	TypeAtividade   = "atividade"
)

// ValidTypes contains all valid activity types.
var ValidTypes = []string{TypeSurf, TypeAlimentacao, TypeDescanso, TypeReuniao, TypeAtividade}

// Domain errors
var (
	ErrEmptyTitle   = errors.New("activity title cannot be empty")
	ErrInvalidType  = errors.New("activity type must be one of: surf, alimentacao, descanso, reuniao, atividade")
	ErrInvalidTime  = errors.New("activity time must be in HH:MM format")
	ErrEmptyProgram = errors.New("program must have at least one day")
)

// Activity is one slot of a retreat day.
type Activity struct {
	Horario   string `json:"horario"` // HH:MM
	Titulo    string `json:"titulo"`
	Descricao string `json:"descricao,omitempty"`
	Tipo      string `json:"tipo"`
	Local     string `json:"local,omitempty"`
}

// Validate checks if the Activity has valid data.
// PRE: Activity struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Activity) Validate() error {
	if strings.TrimSpace(a.Titulo) == "" {
		return ErrEmptyTitle
	}
	if !isValidType(a.Tipo) {
		return ErrInvalidType
	}
	if _, err := time.Parse("15:04", a.Horario); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, a.Horario)
	}
	return nil
}

// Day is one retreat day and its activities in time order.
type Day struct {
	Date       string     `json:"date"`  // YYYY-MM-DD
	Label      string     `json:"label"` // e.g. "18/07 (Sexta)"
	Activities []Activity `json:"activities"`
}

// Program is the fixed retreat timetable.
type Program struct {
	Title string `json:"title"`
	Days  []Day  `json:"days"`
}

// Validate checks every activity of every day.
// PRE: none
// POST: returns the first invalid activity's error
func (p Program) Validate() error {
	if len(p.Days) == 0 {
		return ErrEmptyProgram
	}
	for _, d := range p.Days {
		if _, err := time.Parse("2006-01-02", d.Date); err != nil {
			return fmt.Errorf("day %q: %w", d.Date, err)
		}
		for i := range d.Activities {
			if err := d.Activities[i].Validate(); err != nil {
				return fmt.Errorf("day %s activity %d: %w", d.Date, i, err)
			}
		}
	}
	return nil
}

// Start returns the first day at midnight in loc.
// PRE: Validate returns nil
func (p Program) Start(loc *time.Location) time.Time {
	d, _ := time.ParseInLocation("2006-01-02", p.Days[0].Date, loc)
	return d
}

// Countdown is the time remaining until the retreat starts.
type Countdown struct {
	Days    int  `json:"days"`
	Hours   int  `json:"hours"`
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Started bool `json:"started"`
}

// CountdownTo splits the time from now until target into days, hours, minutes and seconds.
// PRE: none
// POST: all fields are zero and Started is true once target has passed
func CountdownTo(target, now time.Time) Countdown {
	remaining := target.Sub(now)
	if remaining <= 0 {
		return Countdown{Started: true}
	}
	total := int(remaining / time.Second)
	return Countdown{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// Retreat returns the Retiro Onda Xangri-lá 2025 program.
func Retreat() Program {
	return Program{
		Title: "Programação do Retiro Onda Xangri-lá 2025",
		Days: []Day{
			{
				Date:  "2025-07-18",
				Label: "18/07 (Sexta)",
				Activities: []Activity{
					{Horario: "14:00", Titulo: "Check-in", Descricao: "Recepção e entrega de kits", Tipo: TypeReuniao, Local: "Pousada"},
					{Horario: "16:00", Titulo: "Abertura", Descricao: "Cerimônia de abertura e boas-vindas", Tipo: TypeReuniao, Local: "Auditório"},
					{Horario: "17:00", Titulo: "Divisão de grupos", Descricao: "Organização dos participantes por nível", Tipo: TypeReuniao, Local: "Auditório"},
					{Horario: "18:30", Titulo: "Jantar de boas-vindas", Descricao: "Jantar de confraternização", Tipo: TypeAlimentacao, Local: "Refeitório"},
					{Horario: "20:00", Titulo: "Apresentação dos instrutores", Descricao: "Conhecer a equipe", Tipo: TypeReuniao, Local: "Auditório"},
					{Horario: "21:30", Titulo: "Luau de integração", Descricao: "Música e interação", Tipo: TypeAtividade, Local: "Praia"},
				},
			},
			{
				Date:  "2025-07-19",
				Label: "19/07 (Sábado)",
				Activities: []Activity{
					{Horario: "06:00", Titulo: "Despertar", Tipo: TypeDescanso},
					{Horario: "06:30", Titulo: "Café da manhã", Tipo: TypeAlimentacao, Local: "Refeitório"},
					{Horario: "07:30", Titulo: "Aula prática de surf I", Descricao: "Iniciantes e intermediários", Tipo: TypeSurf, Local: "Praia"},
					{Horario: "10:30", Titulo: "Lanche da manhã", Tipo: TypeAlimentacao, Local: "Praia"},
					{Horario: "11:00", Titulo: "Palestra sobre segurança", Tipo: TypeReuniao, Local: "Auditório"},
					{Horario: "12:30", Titulo: "Almoço", Tipo: TypeAlimentacao, Local: "Refeitório"},
					{Horario: "14:00", Titulo: "Descanso", Tipo: TypeDescanso},
					{Horario: "15:00", Titulo: "Aula prática de surf II", Descricao: "Todos os níveis", Tipo: TypeSurf, Local: "Praia"},
					{Horario: "18:00", Titulo: "Yoga ao pôr do sol", Tipo: TypeAtividade, Local: "Deck"},
					{Horario: "19:30", Titulo: "Jantar", Tipo: TypeAlimentacao, Local: "Refeitório"},
					{Horario: "21:00", Titulo: "Fogueira e música", Tipo: TypeAtividade, Local: "Praia"},
				},
			},
			{
				Date:  "2025-07-20",
				Label: "20/07 (Domingo)",
				Activities: []Activity{
					{Horario: "06:30", Titulo: "Despertar", Tipo: TypeDescanso},
					{Horario: "07:00", Titulo: "Café da manhã", Tipo: TypeAlimentacao, Local: "Refeitório"},
					{Horario: "08:00", Titulo: "Aula prática final", Descricao: "Todos os níveis", Tipo: TypeSurf, Local: "Praia"},
					{Horario: "11:00", Titulo: "Mini campeonato", Descricao: "Competição amigável", Tipo: TypeSurf, Local: "Praia"},
					{Horario: "13:00", Titulo: "Almoço de encerramento", Tipo: TypeAlimentacao, Local: "Refeitório"},
					{Horario: "14:30", Titulo: "Cerimônia de encerramento", Descricao: "Entrega de certificados", Tipo: TypeReuniao, Local: "Auditório"},
					{Horario: "16:00", Titulo: "Checkout e despedida", Tipo: TypeReuniao, Local: "Pousada"},
				},
			},
		},
	}
}

func isValidType(t string) bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}
