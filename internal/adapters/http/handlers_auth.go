package web

import (
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"onda/internal/adapters/http/middleware"
	"onda/internal/application/orchestrators"
	accountDomain "onda/internal/domain/account"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	AccountID              string `json:"account_id"`
	Email                  string `json:"email"`
	NomeCompleto           string `json:"nome_completo"`
	Permissao              string `json:"permissao"`
	PasswordChangeRequired bool   `json:"password_change_required"`
}

func meFrom(sess middleware.Session) meResponse {
	return meResponse{
		AccountID:              sess.AccountID,
		Email:                  sess.Email,
		NomeCompleto:           sess.NomeCompleto,
		Permissao:              sess.Permissao,
		PasswordChangeRequired: sess.PasswordChangeRequired,
	}
}

func sessionFromLogin(res orchestrators.LoginResult) middleware.Session {
	return middleware.Session{
		AccountID:              res.AccountID,
		Email:                  res.Email,
		NomeCompleto:           res.NomeCompleto,
		Permissao:              res.Permissao,
		PasswordChangeRequired: res.PasswordChangeRequired,
	}
}

var loginErrors = []statusRule{
	{err: orchestrators.ErrInvalidCredentials, status: http.StatusUnauthorized},
	{err: orchestrators.ErrAccountLocked, status: http.StatusLocked},
}

// handleLogin handles POST /api/login: checks credentials and starts a cookie session.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := strictDecode(r, &in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    in.Email,
		Password: in.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.Accounts})
	if err != nil {
		writeError(w, err, loginErrors...)
		return
	}

	sess := sessionFromLogin(result)
	token, err := sessions.Create(sess)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, meFrom(sess))
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleToken handles POST /api/token: exchanges credentials for a bearer JWT.
// Accounts that still owe a password change get no token.
func handleToken(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := strictDecode(r, &in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    in.Email,
		Password: in.Password,
	}, orchestrators.LoginDeps{AccountStore: stores.Accounts})
	if err != nil {
		writeError(w, err, loginErrors...)
		return
	}
	if result.PasswordChangeRequired {
		http.Error(w, "password change required", http.StatusForbidden)
		return
	}

	signed, exp, err := tokens.Issue(sessionFromLogin(result))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: signed, TokenType: "Bearer", ExpiresAt: exp})
}

// handleChangePassword handles POST /api/password.
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := strictDecode(r, &in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		AccountID:       sess.AccountID,
		CurrentPassword: in.CurrentPassword,
		NewPassword:     in.NewPassword,
		ConfirmPassword: in.ConfirmPassword,
	}, orchestrators.ChangePasswordDeps{AccountStore: stores.Accounts, Now: timeNow})
	if err != nil {
		rules := badRequest(
			orchestrators.ErrMissingFields,
			orchestrators.ErrCurrentPasswordWrong,
			orchestrators.ErrNewPasswordSame,
			orchestrators.ErrPasswordMismatch,
			accountDomain.ErrPasswordTooShort,
			accountDomain.ErrEmptyPassword,
		)
		rules = append(rules,
			statusRule{err: orchestrators.ErrAccountNotFound, status: http.StatusNotFound},
			statusRule{err: orchestrators.ErrAccountLocked, status: http.StatusLocked},
		)
		writeError(w, err, rules...)
		return
	}

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sess.PasswordChangeRequired = false
		sessions.Update(cookie.Value, sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me: the caller's identity and a CSRF token for form posts.
func handleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if token := csrf.Token(r); token != "" {
		w.Header().Set("X-CSRF-Token", token)
	}
	writeJSON(w, http.StatusOK, meFrom(sess))
}
