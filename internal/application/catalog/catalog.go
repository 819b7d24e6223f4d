// Package catalog declares the administrative list views and the tables behind them.
package catalog

import (
	"fmt"
	"time"

	"onda/internal/application/listutil"
	"onda/internal/domain/participant"
	"onda/internal/domain/registration"
	"onda/internal/domain/surfer"
	"onda/internal/domain/volunteer"
)

// View names
const (
	ViewPreRegistrations = "pre-inscricoes"
	ViewConfirmed        = "confirmados"
	ViewSurfers          = "surfistas"
	ViewApoio            = "apoio"
	ViewMarujos          = "marujos"
)

// Entry binds a list view to its table.
type Entry struct {
	Config listutil.ViewConfig
	Form   registration.Form
	Slots  []surfer.Slot
}

// Slot looks up one of the entry's attachment slots.
func (e Entry) Slot(name string) (surfer.Slot, bool) {
	for _, s := range e.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return surfer.Slot{}, false
}

// Catalog holds every view in menu order.
type Catalog struct {
	entries []Entry
}

// New builds the catalog. now drives the derived age fields; loc is the
// retreat timezone that months and birthdays are reckoned in.
// PRE: now != nil; a nil loc means UTC
// POST: every view config passes Validate
func New(now func() time.Time, loc *time.Location) *Catalog {
	c := &Catalog{entries: []Entry{
		{Config: participantView(ViewPreRegistrations, "Pré-inscrições", false, loc), Form: participant.PreRegistrations},
		{Config: participantView(ViewConfirmed, "Confirmados", true, loc), Form: participant.Confirmed},
		{Config: surferView(now, loc), Form: surfer.Form, Slots: surfer.Slots},
		{Config: apoioView(now, loc), Form: volunteer.Apoio},
		{Config: marujosView(now, loc), Form: volunteer.Marujos},
	}}
	for _, e := range c.entries {
		if err := e.Config.Validate(); err != nil {
			panic(fmt.Sprintf("catalog: %v", err))
		}
	}
	return c
}

// Get returns the entry for a view name.
func (c *Catalog) Get(name string) (Entry, bool) {
	for _, e := range c.entries {
		if e.Config.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// All returns every entry in menu order.
func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

var createdAtSort = listutil.SortOption{Field: "created_at", Label: "Data de cadastro"}

func participantView(name, title string, withStatus bool, loc *time.Location) listutil.ViewConfig {
	fields := []listutil.FieldDescriptor{
		listutil.Categorical("nome_completo", "Nome").InSearch(),
		listutil.Numeric("idade", "Idade").WithLabels(listutil.YearsLabel),
		listutil.Categorical("cidade", "Cidade").Normalized().InSearch(),
		listutil.Categorical("bairro", "Bairro").InSearch(),
		listutil.Categorical("nome_responsavel", "Responsável").InSearch(),
		listutil.Month("mes", "Mês", "created_at", loc),
		listutil.Date("created_at", "Data de cadastro"),
	}
	filters := []string{"cidade", "idade", "mes"}
	if withStatus {
		fields = append(fields, listutil.Categorical(participant.ColumnStatus, "Status").WithLabels(participant.StatusLabel))
		filters = append(filters, participant.ColumnStatus)
	}
	return listutil.ViewConfig{
		Name:    name,
		Title:   title,
		Fields:  fields,
		Filters: filters,
		Sorts: []listutil.SortOption{
			createdAtSort,
			{Field: "nome_completo", Label: "Nome"},
			{Field: "idade", Label: "Idade"},
			{Field: "cidade", Label: "Cidade"},
		},
		DefaultSort: "created_at",
		DefaultDir:  listutil.DirDesc,
	}
}

func staticOptions(values []string, label func(string) string) []listutil.Option {
	out := make([]listutil.Option, len(values))
	for i, v := range values {
		out[i] = listutil.Option{Value: v, Label: label(v)}
	}
	return out
}

func surferView(now func() time.Time, loc *time.Location) listutil.ViewConfig {
	return listutil.ViewConfig{
		Name:  ViewSurfers,
		Title: "Fichas de Surfistas",
		Fields: []listutil.FieldDescriptor{
			listutil.Categorical("nome_surfista", "Nome").InSearch(),
			listutil.Categorical("nome_mae", "Mãe").InSearch(),
			listutil.Categorical("nome_pai", "Pai").InSearch(),
			listutil.Categorical(surfer.ColumnStatusInscricao, "Inscrição").
				WithDefault(surfer.DefaultInscricao).
				WithOptions(staticOptions(surfer.ValidInscricao, surfer.InscricaoLabel)...),
			listutil.Categorical(surfer.ColumnStatusPagamento, "Pagamento").
				WithDefault(surfer.DefaultPagamento).
				WithOptions(staticOptions(surfer.ValidPagamento, surfer.PagamentoLabel)...),
			listutil.Categorical(surfer.ColumnTipoPagamento, "Tipo de pagamento").
				WithOptions(staticOptions(surfer.ValidTipo, surfer.TipoLabel)...),
			listutil.Age("idade", "Idade", surfer.ColumnDataNascimento, now, loc),
			listutil.Categorical("tamanho_camiseta_surfista", "Camiseta"),
			listutil.Date("created_at", "Data de cadastro"),
		},
		Filters: []string{
			surfer.ColumnStatusInscricao,
			surfer.ColumnStatusPagamento,
			surfer.ColumnTipoPagamento,
			"idade",
			"tamanho_camiseta_surfista",
		},
		Sorts: []listutil.SortOption{
			createdAtSort,
			{Field: "nome_surfista", Label: "Nome"},
		},
		DefaultSort: "created_at",
		DefaultDir:  listutil.DirDesc,
	}
}

func volunteerFields(now func() time.Time, loc *time.Location) []listutil.FieldDescriptor {
	return []listutil.FieldDescriptor{
		listutil.Categorical("nome", "Nome").InSearch(),
		listutil.Categorical(volunteer.ColumnEquipe, "Equipe").Normalized().InSearch(),
		listutil.Categorical(volunteer.ColumnCamiseta, "Camiseta"),
		listutil.Age("idade", "Idade", volunteer.ColumnDataNascimento, now, loc),
		listutil.Date("created_at", "Data de cadastro"),
	}
}

func apoioView(now func() time.Time, loc *time.Location) listutil.ViewConfig {
	return listutil.ViewConfig{
		Name:    ViewApoio,
		Title:   "Fichas de Apoio",
		Fields:  append(volunteerFields(now, loc), listutil.Boolean(volunteer.ColumnJaFezOnda, "Já fez Onda")),
		Filters: []string{volunteer.ColumnEquipe, volunteer.ColumnCamiseta, "idade", volunteer.ColumnJaFezOnda},
		Sorts: []listutil.SortOption{
			createdAtSort,
			{Field: "nome", Label: "Nome"},
		},
		DefaultSort: "created_at",
		DefaultDir:  listutil.DirDesc,
	}
}

func marujosView(now func() time.Time, loc *time.Location) listutil.ViewConfig {
	return listutil.ViewConfig{
		Name:  ViewMarujos,
		Title: "Fichas de Marujos",
		Fields: append(volunteerFields(now, loc),
			listutil.Numeric(volunteer.ColumnOndaNumero, "Onda nº"),
			listutil.Categorical(volunteer.ColumnOndaOnde, "Onda onde").Normalized().InSearch(),
		),
		Filters: []string{volunteer.ColumnEquipe, volunteer.ColumnCamiseta, "idade", volunteer.ColumnOndaNumero},
		Sorts: []listutil.SortOption{
			createdAtSort,
			{Field: "nome", Label: "Nome"},
			{Field: volunteer.ColumnOndaNumero, Label: "Onda nº"},
		},
		DefaultSort: "created_at",
		DefaultDir:  listutil.DirDesc,
	}
}
