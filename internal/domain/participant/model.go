// Package participant declares the pre-registration and confirmed-participant tables.
package participant

import "onda/internal/domain/registration"

// Table names
const (
	TablePreRegistrations = "pre_inscricoes"
	TableConfirmed        = "confirmados"
)

// Status constants. The column keeps its capitalised name.
const (
	ColumnStatus = "Status"

	StatusPendente    = "pendente"
	StatusConfirmado  = "confirmado"
	StatusListaEspera = "lista_espera"
)

// ValidStatuses contains all valid registration statuses.
var ValidStatuses = []string{StatusPendente, StatusConfirmado, StatusListaEspera}

// Columns lists both tables' columns in display order.
var Columns = []string{
	registration.ColumnID,
	"nome_completo",
	"idade",
	"bairro",
	"cidade",
	"nome_responsavel",
	"telefone_responsavel",
	ColumnStatus,
	registration.ColumnCreatedAt,
	registration.ColumnUpdatedAt,
}

var rules = map[string]registration.Rule{
	"nome_completo":        {Kind: registration.KindText, Tag: "required,max=200"},
	"idade":                {Kind: registration.KindNumber, Tag: "gte=0,lte=120", Nullable: true},
	"bairro":               {Kind: registration.KindText, Tag: "max=200", Nullable: true},
	"cidade":               {Kind: registration.KindText, Tag: "max=200", Nullable: true},
	"nome_responsavel":     {Kind: registration.KindText, Tag: "max=200", Nullable: true},
	"telefone_responsavel": {Kind: registration.KindText, Tag: "max=40", Nullable: true},
	ColumnStatus:           {Kind: registration.KindText, Tag: "oneof=pendente confirmado lista_espera", Nullable: true},
}

// PreRegistrations is the pre_inscricoes form.
var PreRegistrations = registration.Form{Table: TablePreRegistrations, Columns: Columns, Rules: rules}

// Confirmed is the confirmados form.
var Confirmed = registration.Form{Table: TableConfirmed, Columns: Columns, Rules: rules}

// StatusLabel returns the display label for a status value.
func StatusLabel(status string) string {
	switch status {
	case StatusPendente:
		return "Pendente"
	case StatusConfirmado:
		return "Confirmado"
	case StatusListaEspera:
		return "Lista de Espera"
	}
	return status
}
