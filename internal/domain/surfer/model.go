// Package surfer declares the surfer registration form (fichas_surfistas).
package surfer

import (
	"errors"
	"strings"

	"onda/internal/domain/registration"
)

// Table is the surfer form table.
const Table = "fichas_surfistas"

// Enumerated columns
const (
	ColumnStatusInscricao = "status_inscricao"
	ColumnStatusPagamento = "status_pagamento"
	ColumnTipoPagamento   = "tipo_pagamento"
	ColumnDataNascimento  = "data_nascimento"
	ColumnFotoURL         = "foto_url"
	ColumnComprovanteURL  = "comprovante_url"
)

// status_inscricao values
const (
	InscricaoPendente    = "pendente"
	InscricaoConfirmado  = "confirmado"
	InscricaoListaEspera = "lista_espera"
)

// status_pagamento values
const (
	PagamentoNaoPago  = "nao_pago"
	PagamentoPendente = "pendente"
	PagamentoPago     = "pago"
)

// tipo_pagamento values
const (
	TipoPix      = "pix"
	TipoDinheiro = "dinheiro"
)

// Defaults applied when a status column is null.
const (
	DefaultInscricao = InscricaoPendente
	DefaultPagamento = PagamentoNaoPago
)

// Enumerations in display order.
var (
	ValidInscricao = []string{InscricaoPendente, InscricaoConfirmado, InscricaoListaEspera}
	ValidPagamento = []string{PagamentoNaoPago, PagamentoPendente, PagamentoPago}
	ValidTipo      = []string{TipoPix, TipoDinheiro}
)

// MaxUploadBytes bounds a single attachment.
const MaxUploadBytes = 10 << 20

// Domain errors
var (
	ErrUnknownSlot        = errors.New("unknown attachment slot")
	ErrUnsupportedContent = errors.New("unsupported attachment content type")
)

// Columns lists fichas_surfistas columns in display order.
var Columns = []string{
	registration.ColumnID,
	"nome_surfista",
	ColumnDataNascimento,
	"rg_cpf_surfista",
	"telefone_surfista",
	"arroba_instagram",
	"endereco_completo_surfista",
	"escola_serie_ano",
	"tamanho_camiseta_surfista",
	"nome_mae",
	"telefone_mae",
	"nome_pai",
	"telefone_pai",
	"irmaos",
	"fez_primeira_comunhao",
	"fez_crisma",
	"instrumento",
	"alergia",
	"fobia",
	"medicamento",
	"informacao_adicional_surfista",
	ColumnStatusInscricao,
	ColumnStatusPagamento,
	ColumnTipoPagamento,
	ColumnFotoURL,
	ColumnComprovanteURL,
	registration.ColumnCreatedAt,
	registration.ColumnUpdatedAt,
}

func text(max string) registration.Rule {
	return registration.Rule{Kind: registration.KindText, Tag: "max=" + max, Nullable: true}
}

// Form is the fichas_surfistas form.
var Form = registration.Form{
	Table:   Table,
	Columns: Columns,
	Rules: map[string]registration.Rule{
		"nome_surfista":                 {Kind: registration.KindText, Tag: "required,max=200"},
		ColumnDataNascimento:            {Kind: registration.KindDate, Nullable: true},
		"rg_cpf_surfista":               text("40"),
		"telefone_surfista":             text("40"),
		"arroba_instagram":              text("100"),
		"endereco_completo_surfista":    text("500"),
		"escola_serie_ano":              text("200"),
		"tamanho_camiseta_surfista":     text("10"),
		"nome_mae":                      text("200"),
		"telefone_mae":                  text("40"),
		"nome_pai":                      text("200"),
		"telefone_pai":                  text("40"),
		"irmaos":                        text("500"),
		"fez_primeira_comunhao":         text("20"),
		"fez_crisma":                    text("20"),
		"instrumento":                   text("200"),
		"alergia":                       text("500"),
		"fobia":                         text("500"),
		"medicamento":                   text("500"),
		"informacao_adicional_surfista": text("2000"),
		ColumnStatusInscricao:           {Kind: registration.KindText, Tag: "oneof=" + strings.Join(ValidInscricao, " "), Nullable: true},
		ColumnStatusPagamento:           {Kind: registration.KindText, Tag: "oneof=" + strings.Join(ValidPagamento, " "), Nullable: true},
		ColumnTipoPagamento:             {Kind: registration.KindText, Tag: "oneof=" + strings.Join(ValidTipo, " "), Nullable: true},
		ColumnFotoURL:                   {Kind: registration.KindURL, Nullable: true},
		ColumnComprovanteURL:            {Kind: registration.KindURL, Nullable: true},
	},
}

// Slot maps an upload slot to its bucket and the column holding the public URL.
type Slot struct {
	Name         string
	Bucket       string
	Column       string
	ContentTypes []string
}

// Slots lists the surfer attachment slots.
var Slots = []Slot{
	{Name: "foto", Bucket: "surfistas-fotos", Column: ColumnFotoURL, ContentTypes: []string{"image/jpeg", "image/png", "image/webp"}},
	{Name: "comprovante", Bucket: "comprovantes", Column: ColumnComprovanteURL, ContentTypes: []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}},
}

// SlotByName looks up an attachment slot.
func SlotByName(name string) (Slot, error) {
	for _, s := range Slots {
		if s.Name == name {
			return s, nil
		}
	}
	return Slot{}, ErrUnknownSlot
}

// Accepts reports whether contentType may be stored in the slot.
// Parameters such as "; charset=" are ignored.
func (s Slot) Accepts(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, allowed := range s.ContentTypes {
		if allowed == ct {
			return true
		}
	}
	return false
}

// EffectiveInscricao returns the stored status_inscricao or the default for null and blank values.
func EffectiveInscricao(v any) string {
	return orDefault(v, DefaultInscricao)
}

// EffectivePagamento returns the stored status_pagamento or the default for null and blank values.
func EffectivePagamento(v any) string {
	return orDefault(v, DefaultPagamento)
}

func orDefault(v any, def string) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// InscricaoLabel returns the display label for a status_inscricao value.
func InscricaoLabel(v string) string {
	switch v {
	case InscricaoPendente:
		return "Pendente"
	case InscricaoConfirmado:
		return "Confirmado"
	case InscricaoListaEspera:
		return "Lista de Espera"
	}
	return v
}

// PagamentoLabel returns the display label for a status_pagamento value.
func PagamentoLabel(v string) string {
	switch v {
	case PagamentoNaoPago:
		return "Não Pago"
	case PagamentoPendente:
		return "Pendente"
	case PagamentoPago:
		return "Pago"
	}
	return v
}

// TipoLabel returns the display label for a tipo_pagamento value.
func TipoLabel(v string) string {
	switch v {
	case TipoPix:
		return "PIX"
	case TipoDinheiro:
		return "Dinheiro"
	}
	return v
}
