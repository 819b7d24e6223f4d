// Package volunteer declares the support-team (apoio) and crew (marujos) forms.
package volunteer

import "onda/internal/domain/registration"

// Table names
const (
	TableApoio   = "fichas_apoio"
	TableMarujos = "fichas_marujos"
)

// Columns used by views
const (
	ColumnDataNascimento = "data_nascimento"
	ColumnEquipe         = "equipe_trabalho"
	ColumnCamiseta       = "tamanho_camiseta"
	ColumnJaFezOnda      = "ja_fez_onda"
	ColumnOndaNumero     = "onda_numero"
	ColumnOndaOnde       = "onda_onde"
)

var shared = []string{
	"nome",
	ColumnDataNascimento,
	"whatsapp",
	"tem_instagram",
	"arroba_instagram",
	"nome_responsavel",
	"telefone_responsavel",
	ColumnEquipe,
	ColumnCamiseta,
	"toma_medicamento_continuo",
	"medicamento_qual",
}

func columns(extra ...string) []string {
	out := []string{registration.ColumnID}
	out = append(out, shared...)
	out = append(out, extra...)
	return append(out, registration.ColumnCreatedAt, registration.ColumnUpdatedAt)
}

func text(max string) registration.Rule {
	return registration.Rule{Kind: registration.KindText, Tag: "max=" + max, Nullable: true}
}

func sharedRules() map[string]registration.Rule {
	return map[string]registration.Rule{
		"nome":                      {Kind: registration.KindText, Tag: "required,max=200"},
		ColumnDataNascimento:        {Kind: registration.KindDate, Nullable: true},
		"whatsapp":                  text("40"),
		"tem_instagram":             text("10"),
		"arroba_instagram":          text("100"),
		"nome_responsavel":          text("200"),
		"telefone_responsavel":      text("40"),
		ColumnEquipe:                text("200"),
		ColumnCamiseta:              text("10"),
		"toma_medicamento_continuo": text("10"),
		"medicamento_qual":          text("500"),
	}
}

// Apoio is the fichas_apoio form. onda_numero and onda_onde are optional for first-timers.
var Apoio = func() registration.Form {
	rules := sharedRules()
	rules[ColumnJaFezOnda] = registration.Rule{Kind: registration.KindBool, Nullable: true}
	rules[ColumnOndaNumero] = text("20")
	rules[ColumnOndaOnde] = text("200")
	return registration.Form{
		Table:   TableApoio,
		Columns: columns(ColumnJaFezOnda, ColumnOndaNumero, ColumnOndaOnde),
		Rules:   rules,
	}
}()

// Marujos is the fichas_marujos form. Every marujo has done a retreat, so onda_numero and onda_onde are required.
var Marujos = func() registration.Form {
	rules := sharedRules()
	rules[ColumnOndaNumero] = registration.Rule{Kind: registration.KindText, Tag: "required,max=20"}
	rules[ColumnOndaOnde] = registration.Rule{Kind: registration.KindText, Tag: "required,max=200"}
	return registration.Form{
		Table:   TableMarujos,
		Columns: columns(ColumnOndaNumero, ColumnOndaOnde),
		Rules:   rules,
	}
}()
