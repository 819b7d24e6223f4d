package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"onda/internal/application/orchestrators"
	accountDomain "onda/internal/domain/account"
)

// accountResponse is a usuario without its password hash.
type accountResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	NomeCompleto  string    `json:"nome_completo"`
	Permissao     string    `json:"permissao"`
	PrimeiroLogin bool      `json:"primeiro_login"`
	Locked        bool      `json:"locked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func accountFrom(a accountDomain.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Email:         a.Email,
		NomeCompleto:  a.NomeCompleto,
		Permissao:     a.Permissao,
		PrimeiroLogin: a.PrimeiroLogin,
		Locked:        a.IsLocked(),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// userResult is returned by create and update. TemporaryPassword is shown once.
type userResult struct {
	Account           accountResponse `json:"account"`
	TemporaryPassword string          `json:"temporary_password,omitempty"`
	InvitationSent    bool            `json:"invitation_sent"`
}

var userErrors = append(badRequest(
	accountDomain.ErrEmptyEmail,
	accountDomain.ErrInvalidEmail,
	accountDomain.ErrEmptyName,
	accountDomain.ErrNameTooLong,
	accountDomain.ErrInvalidPermission,
	accountDomain.ErrPasswordTooShort,
	orchestrators.ErrCannotDeleteSelf,
	orchestrators.ErrNothingToUpdate,
),
	statusRule{err: orchestrators.ErrForbidden, status: http.StatusForbidden},
	statusRule{err: orchestrators.ErrAccountNotFound, status: http.StatusNotFound},
	statusRule{err: orchestrators.ErrEmailAlreadyExists, status: http.StatusConflict},
	statusRule{err: orchestrators.ErrLastSupreme, status: http.StatusConflict},
)

func userDeps() orchestrators.UserDeps {
	return orchestrators.UserDeps{
		AccountStore: stores.Accounts,
		EmailSender:  emailSender,
		LoginURL:     strings.TrimRight(settings.BaseURL, "/") + "/login",
		GenerateID:   generateID,
		Now:          timeNow,
	}
}

// handleListUsers handles GET /api/usuarios.
func handleListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSupreme(w, r); !ok {
		return
	}
	accounts, err := stores.Accounts.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountFrom(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateUser handles POST /api/usuarios. An empty password generates a temporary one.
func handleCreateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSupreme(w, r)
	if !ok {
		return
	}
	var in struct {
		Email        string `json:"email"`
		NomeCompleto string `json:"nome_completo"`
		Permissao    string `json:"permissao"`
		Password     string `json:"password"`
	}
	if err := strictDecode(r, &in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteCreateUser(r.Context(), orchestrators.CreateUserInput{
		Actor:        actorFrom(sess),
		Email:        in.Email,
		NomeCompleto: in.NomeCompleto,
		Permissao:    in.Permissao,
		Password:     in.Password,
	}, userDeps())
	invitationFailed := errors.Is(err, orchestrators.ErrInvitationNotSent)
	if err != nil && !invitationFailed {
		writeError(w, err, userErrors...)
		return
	}

	writeJSON(w, http.StatusCreated, userResult{
		Account:           accountFrom(result.Account),
		TemporaryPassword: result.TemporaryPassword,
		InvitationSent:    emailSender != nil && !invitationFailed,
	})
}

// handleUpdateUser handles PATCH /api/usuarios/{id}.
func handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSupreme(w, r)
	if !ok {
		return
	}
	var in struct {
		NomeCompleto  *string `json:"nome_completo"`
		Permissao     *string `json:"permissao"`
		ResetPassword bool    `json:"reset_password"`
	}
	if err := strictDecode(r, &in); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	id := r.PathValue("id")
	result, err := orchestrators.ExecuteUpdateUser(r.Context(), orchestrators.UpdateUserInput{
		Actor:         actorFrom(sess),
		AccountID:     id,
		NomeCompleto:  in.NomeCompleto,
		Permissao:     in.Permissao,
		ResetPassword: in.ResetPassword,
	}, userDeps())
	if err != nil {
		writeError(w, err, userErrors...)
		return
	}

	if in.Permissao != nil || in.ResetPassword {
		n := sessions.DeleteAccount(id)
		slog.Info("auth_event", "event", "sessions_revoked", "account_id", id, "count", n)
	}
	writeJSON(w, http.StatusOK, userResult{Account: accountFrom(result.Account), TemporaryPassword: result.TemporaryPassword})
}

// handleDeleteUser handles DELETE /api/usuarios/{id}.
func handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSupreme(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	err := orchestrators.ExecuteDeleteUser(r.Context(), orchestrators.DeleteUserInput{
		Actor:     actorFrom(sess),
		AccountID: id,
	}, userDeps())
	if err != nil {
		writeError(w, err, userErrors...)
		return
	}
	sessions.DeleteAccount(id)
	w.WriteHeader(http.StatusNoContent)
}
