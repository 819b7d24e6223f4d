package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	accountDomain "onda/internal/domain/account"
)

func seedUsuarios(t *testing.T, s *Stores) {
	t.Helper()
	addAccount(t, s, accountDomain.Account{ID: "sup-001", Email: "coord@onda.test", NomeCompleto: "Coordenação", Permissao: "supreme"}, "senha-forte-1")
	addAccount(t, s, accountDomain.Account{ID: "adm-001", Email: "equipe@onda.test", NomeCompleto: "Equipe", Permissao: "admin"}, "senha-forte-2")
}

// TestHandleListUsers verifies only supreme accounts list usuarios and hashes stay hidden.
func TestHandleListUsers(t *testing.T) {
	s, _ := setupHandlers(t)
	seedUsuarios(t, s)

	rec := httptest.NewRecorder()
	handleListUsers(rec, authRequest("GET", "/api/usuarios", "", adminSession))
	if rec.Code != http.StatusForbidden {
		t.Errorf("admin: got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	handleListUsers(rec, authRequest("GET", "/api/usuarios", "", supremeSession))
	if rec.Code != http.StatusOK {
		t.Fatalf("supreme: got %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "$2a$") {
		t.Error("response leaks a password hash")
	}
	var got []accountResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("got %d usuarios, want 2", len(got))
	}
}

// TestHandleListUsers_PasswordChangePending verifies a supreme session that owes a
// password change cannot manage usuarios.
func TestHandleListUsers_PasswordChangePending(t *testing.T) {
	setupHandlers(t)
	sess := supremeSession
	sess.PasswordChangeRequired = true

	rec := httptest.NewRecorder()
	handleListUsers(rec, authRequest("GET", "/api/usuarios", "", sess))
	if rec.Code != http.StatusForbidden {
		t.Errorf("got %d, want 403", rec.Code)
	}
}

// TestHandleCreateUser verifies creation, the invitation and conflict mapping.
func TestHandleCreateUser(t *testing.T) {
	s, sender := setupHandlers(t)
	seedUsuarios(t, s)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"valid", `{"email":"Nova@Onda.test","nome_completo":"Nova Pessoa","permissao":"admin"}`, http.StatusCreated},
		{"duplicate email", `{"email":"equipe@onda.test","nome_completo":"Outra"}`, http.StatusConflict},
		{"bad permission", `{"email":"x@onda.test","nome_completo":"X","permissao":"root"}`, http.StatusBadRequest},
		{"bad email", `{"email":"sem-arroba","nome_completo":"X"}`, http.StatusBadRequest},
		{"missing name", `{"email":"y@onda.test","nome_completo":""}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleCreateUser(rec, authRequest("POST", "/api/usuarios", tt.body, supremeSession))
			if rec.Code != tt.wantCode {
				t.Fatalf("got %d, want %d. Body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				return
			}
			var got userResult
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got.TemporaryPassword == "" || !got.InvitationSent {
				t.Errorf("result = %+v", got)
			}
			if got.Account.Email != "nova@onda.test" || !got.Account.PrimeiroLogin {
				t.Errorf("account = %+v", got.Account)
			}
		})
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("invitations = %d, want 1", len(sent))
	}
	if diff := cmp.Diff([]string{"nova@onda.test"}, sent[0].To); diff != "" {
		t.Errorf("invitation recipient (-want +got):\n%s", diff)
	}
}

// TestHandleUpdateUser verifies partial updates, the last-supreme guard and session revocation.
func TestHandleUpdateUser(t *testing.T) {
	s, _ := setupHandlers(t)
	seedUsuarios(t, s)
	token, err := sessions.Create(adminSession)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		id       string
		body     string
		wantCode int
	}{
		{"nothing to update", "adm-001", `{}`, http.StatusBadRequest},
		{"unknown account", "nope", `{"nome_completo":"X"}`, http.StatusNotFound},
		{"demote last supreme", "sup-001", `{"permissao":"admin"}`, http.StatusConflict},
		{"invalid permission", "adm-001", `{"permissao":"root"}`, http.StatusBadRequest},
		{"rename", "adm-001", `{"nome_completo":"Equipe de Apoio"}`, http.StatusOK},
		{"demote admin", "adm-001", `{"permissao":"user"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withPath(authRequest("PATCH", "/api/usuarios/"+tt.id, tt.body, supremeSession), "id", tt.id)
			rec := httptest.NewRecorder()
			handleUpdateUser(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("got %d, want %d. Body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	acct, _ := s.Accounts.GetByID(context.Background(), "adm-001")
	if acct.NomeCompleto != "Equipe de Apoio" || acct.Permissao != "user" {
		t.Errorf("account after updates = %+v", acct)
	}
	if _, ok := sessions.Get(token); ok {
		t.Error("permission change left the old session alive")
	}
}

// TestHandleUpdateUser_ResetPassword verifies a reset returns a new temporary password.
func TestHandleUpdateUser_ResetPassword(t *testing.T) {
	s, _ := setupHandlers(t)
	seedUsuarios(t, s)

	req := withPath(authRequest("PATCH", "/api/usuarios/adm-001", `{"reset_password":true}`, supremeSession), "id", "adm-001")
	rec := httptest.NewRecorder()
	handleUpdateUser(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200. Body: %s", rec.Code, rec.Body.String())
	}
	var got userResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	acct, _ := s.Accounts.GetByID(context.Background(), "adm-001")
	if err := acct.CheckPassword(got.TemporaryPassword); err != nil {
		t.Errorf("temporary password rejected: %v", err)
	}
	if !acct.PrimeiroLogin {
		t.Error("reset did not force a password change")
	}
}

// TestHandleDeleteUser verifies self-deletion is refused and deletes end sessions.
func TestHandleDeleteUser(t *testing.T) {
	s, _ := setupHandlers(t)
	seedUsuarios(t, s)
	token, err := sessions.Create(adminSession)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		id       string
		wantCode int
	}{
		{"self", "sup-001", http.StatusBadRequest},
		{"other", "adm-001", http.StatusNoContent},
		{"gone", "adm-001", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withPath(authRequest("DELETE", "/api/usuarios/"+tt.id, "", supremeSession), "id", tt.id)
			rec := httptest.NewRecorder()
			handleDeleteUser(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("got %d, want %d. Body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	if _, ok := sessions.Get(token); ok {
		t.Error("deleted account still has a session")
	}
}
