package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"onda/internal/adapters/http/middleware"
	"onda/internal/application/orchestrators"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_response", "error", err)
	}
}

// requireSession returns the caller's session or answers 401.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		slog.Warn("auth_denied", "path", r.URL.Path, "reason", "no session")
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireEdit checks the session may change records and the agenda.
// A session that still owes a password change may not edit.
func requireEdit(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return sess, false
	}
	if sess.PasswordChangeRequired {
		http.Error(w, "password change required", http.StatusForbidden)
		return middleware.Session{}, false
	}
	if !sess.CanEdit() {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "permissao", sess.Permissao, "required", "admin")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

// requireSupreme checks the session may manage usuarios.
func requireSupreme(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return sess, false
	}
	if sess.PasswordChangeRequired {
		http.Error(w, "password change required", http.StatusForbidden)
		return middleware.Session{}, false
	}
	if !sess.IsSupreme() {
		slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "permissao", sess.Permissao, "required", "supreme")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return middleware.Session{}, false
	}
	return sess, true
}

func actorFrom(sess middleware.Session) orchestrators.Actor {
	return orchestrators.Actor{AccountID: sess.AccountID, Permissao: sess.Permissao}
}

// statusRule maps a sentinel error to an HTTP status.
type statusRule struct {
	err    error
	status int
}

// writeError answers with the status of the first rule err matches, or 500.
// Client errors carry err's message; server errors are logged and hidden.
func writeError(w http.ResponseWriter, err error, rules ...statusRule) {
	for _, rule := range rules {
		if errors.Is(err, rule.err) {
			http.Error(w, err.Error(), rule.status)
			return
		}
	}
	internalError(w, err)
}

func badRequest(errs ...error) []statusRule {
	rules := make([]statusRule, len(errs))
	for i, e := range errs {
		rules[i] = statusRule{err: e, status: http.StatusBadRequest}
	}
	return rules
}
