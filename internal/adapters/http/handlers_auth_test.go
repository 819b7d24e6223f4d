package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"onda/internal/adapters/http/middleware"
	accountDomain "onda/internal/domain/account"
)

// TestHandleLogin verifies credentials start a cookie session and failures map to 401/423.
func TestHandleLogin(t *testing.T) {
	s, _ := setupHandlers(t)
	addAccount(t, s, accountDomain.Account{
		ID: "adm-001", Email: "equipe@onda.test", NomeCompleto: "Equipe", Permissao: accountDomain.PermissionAdmin,
	}, "ondas-2026")
	addAccount(t, s, accountDomain.Account{
		ID: "lck-001", Email: "travado@onda.test", NomeCompleto: "Travado", Permissao: accountDomain.PermissionUser,
		LockedUntil: fixedNow.AddDate(1, 0, 0),
	}, "ondas-2026")

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"valid", `{"email":"Equipe@Onda.test","password":"ondas-2026"}`, http.StatusOK},
		{"wrong password", `{"email":"equipe@onda.test","password":"errada123"}`, http.StatusUnauthorized},
		{"unknown email", `{"email":"ninguem@onda.test","password":"ondas-2026"}`, http.StatusUnauthorized},
		{"locked", `{"email":"travado@onda.test","password":"ondas-2026"}`, http.StatusLocked},
		{"unknown field", `{"email":"equipe@onda.test","password":"x","extra":1}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleLogin(rec, jsonRequest("POST", "/api/login", tt.body))
			if rec.Code != tt.wantCode {
				t.Fatalf("got %d, want %d. Body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var cookie *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == middleware.SessionCookieName {
					cookie = c
				}
			}
			if cookie == nil || cookie.Value == "" {
				t.Fatal("session cookie not set")
			}
			sess, ok := sessions.Get(cookie.Value)
			if !ok || sess.AccountID != "adm-001" {
				t.Errorf("session = %+v, %v", sess, ok)
			}

			var got meResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			want := meResponse{AccountID: "adm-001", Email: "equipe@onda.test", NomeCompleto: "Equipe", Permissao: "admin"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("me mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestHandleToken verifies the token endpoint issues a verifiable JWT and refuses
// accounts that still owe a password change.
func TestHandleToken(t *testing.T) {
	s, _ := setupHandlers(t)
	addAccount(t, s, accountDomain.Account{
		ID: "adm-001", Email: "equipe@onda.test", NomeCompleto: "Equipe", Permissao: accountDomain.PermissionAdmin,
	}, "ondas-2026")
	addAccount(t, s, accountDomain.Account{
		ID: "new-001", Email: "novo@onda.test", NomeCompleto: "Novo", Permissao: accountDomain.PermissionUser,
		PrimeiroLogin: true,
	}, "temporaria1")

	rec := httptest.NewRecorder()
	handleToken(rec, jsonRequest("POST", "/api/token", `{"email":"equipe@onda.test","password":"ondas-2026"}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200. Body: %s", rec.Code, rec.Body.String())
	}
	var resp tokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("token_type = %q", resp.TokenType)
	}
	sess, err := tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sess.AccountID != "adm-001" || sess.Permissao != "admin" || !sess.ViaToken {
		t.Errorf("verified session = %+v", sess)
	}

	rec = httptest.NewRecorder()
	handleToken(rec, jsonRequest("POST", "/api/token", `{"email":"novo@onda.test","password":"temporaria1"}`))
	if rec.Code != http.StatusForbidden {
		t.Errorf("first-login token: got %d, want 403", rec.Code)
	}
}

// TestHandleLogout verifies logout drops the session and clears the cookie.
func TestHandleLogout(t *testing.T) {
	setupHandlers(t)
	token, err := sessions.Create(adminSession)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handleLogout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("got %d, want 204", rec.Code)
	}
	if _, ok := sessions.Get(token); ok {
		t.Error("session survived logout")
	}
}

// TestHandleChangePassword verifies a first-login account can set a new password
// and the cookie session loses its pending flag.
func TestHandleChangePassword(t *testing.T) {
	s, _ := setupHandlers(t)
	addAccount(t, s, accountDomain.Account{
		ID: "new-001", Email: "novo@onda.test", NomeCompleto: "Novo", Permissao: accountDomain.PermissionAdmin,
		PrimeiroLogin: true,
	}, "temporaria1")
	sess := middleware.Session{AccountID: "new-001", Email: "novo@onda.test", Permissao: "admin", PasswordChangeRequired: true}
	cookie, err := sessions.Create(sess)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"mismatch", `{"current_password":"temporaria1","new_password":"nova-senha-1","confirm_password":"outra"}`, http.StatusBadRequest},
		{"wrong current", `{"current_password":"errada","new_password":"nova-senha-1"}`, http.StatusBadRequest},
		{"too short", `{"current_password":"temporaria1","new_password":"curta"}`, http.StatusBadRequest},
		{"valid", `{"current_password":"temporaria1","new_password":"nova-senha-1","confirm_password":"nova-senha-1"}`, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authRequest("POST", "/api/password", tt.body, sess)
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: cookie})
			rec := httptest.NewRecorder()
			handleChangePassword(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("got %d, want %d. Body: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}

	acct, err := s.Accounts.GetByID(context.Background(), "new-001")
	if err != nil {
		t.Fatal(err)
	}
	if acct.PrimeiroLogin {
		t.Error("PrimeiroLogin still set")
	}
	if err := acct.CheckPassword("nova-senha-1"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if got, _ := sessions.Get(cookie); got.PasswordChangeRequired {
		t.Error("session still requires a password change")
	}
}

// TestHandleMe verifies /api/me requires a session and echoes it.
func TestHandleMe(t *testing.T) {
	setupHandlers(t)

	rec := httptest.NewRecorder()
	handleMe(rec, httptest.NewRequest("GET", "/api/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: got %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	handleMe(rec, authRequest("GET", "/api/me", "", supremeSession))
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	var got meResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(meFrom(supremeSession), got); diff != "" {
		t.Errorf("me mismatch (-want +got):\n%s", diff)
	}
}
