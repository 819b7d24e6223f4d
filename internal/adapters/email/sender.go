package email

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
)

// SendRequest is one outgoing message: a usuario invitation or an agenda notice.
type SendRequest struct {
	To      []string // recipient addresses
	From    string   // e.g. "Retiro Onda <nao-responda@onda.org>"; empty uses the sender default
	Subject string
	HTML    string
	ReplyTo string // empty uses the sender default
}

// SendResult is the provider's acknowledgement of one message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers SendRequests. ResendSender talks to the Resend API; NoopSender only logs.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}

var (
	ErrNoRecipients     = errors.New("email needs at least one recipient")
	ErrNoSubject        = errors.New("email needs a subject")
	ErrInvalidRecipient = errors.New("email recipient is not a valid address")
)

// Validate checks the request before it reaches a provider.
// PRE: none
// POST: nil means every recipient parses as an address and Subject is non-blank
func (r SendRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	if strings.TrimSpace(r.Subject) == "" {
		return ErrNoSubject
	}
	for _, to := range r.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return ErrInvalidRecipient
		}
	}
	return nil
}

// Recipients lowercases and trims addrs, dropping blanks and repeats.
// Order of first appearance is kept.
func Recipients(addrs ...string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
