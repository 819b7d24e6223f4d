package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// InvitationData fills the new-user invitation.
type InvitationData struct {
	Nome      string
	Email     string
	LoginURL  string
	Permissao string
}

// EventNoticeData fills the agenda notice.
type EventNoticeData struct {
	Titulo    string
	Data      string // DD/MM/YYYY
	Horario   string // "19:00 - 20:30", empty for all-day
	Descricao template.HTML
	AgendaURL string
}

var templates = template.Must(template.New("email").Parse(`
{{define "invitation"}}<p>Olá, {{.Nome}}!</p>
<p>Você foi cadastrado(a) no painel do Retiro Onda com a permissão <strong>{{.Permissao}}</strong>.</p>
<p>Entre com o e-mail <strong>{{.Email}}</strong> e a senha provisória recebida da coordenação.
No primeiro acesso será pedido que você troque a senha.</p>
<p><a href="{{.LoginURL}}">Acessar o painel</a></p>{{end}}
{{define "event_notice"}}<p><strong>{{.Titulo}}</strong></p>
<p>{{.Data}}{{if .Horario}} · {{.Horario}}{{end}}</p>
{{if .Descricao}}<div>{{.Descricao}}</div>{{end}}
<p><a href="{{.AgendaURL}}">Ver agenda</a></p>{{end}}
`))

// RenderInvitation returns the subject and HTML body of the invitation email.
func RenderInvitation(d InvitationData) (string, string, error) {
	body, err := render("invitation", d)
	return "Seu acesso ao painel do Retiro Onda", body, err
}

// RenderEventNotice returns the subject and HTML body of an agenda notice.
func RenderEventNotice(d EventNoticeData) (string, string, error) {
	body, err := render("event_notice", d)
	return fmt.Sprintf("Agenda: %s (%s)", d.Titulo, d.Data), body, err
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
