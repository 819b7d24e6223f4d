package orchestrators

import (
	"context"
	"errors"
	"testing"

	"onda/internal/domain/account"
)

// TestExecuteLogin verifies credential checks and the returned session data.
func TestExecuteLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "ana@onda.org", password: "senha-segura"},
		{name: "email is case-insensitive", email: "  ANA@onda.org ", password: "senha-segura"},
		{name: "wrong password", email: "ana@onda.org", password: "errada-123", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "bia@onda.org", password: "senha-segura", wantErr: ErrInvalidCredentials},
		{name: "empty password", email: "ana@onda.org", password: "", wantErr: ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := mustAccount("a1", "ana@onda.org", account.PermissionAdmin, "senha-segura")
			acct.PrimeiroLogin = true
			store := newMockAccountStore(acct)

			res, err := ExecuteLogin(context.Background(), LoginInput{Email: tt.email, Password: tt.password}, LoginDeps{AccountStore: store})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if res.AccountID != "a1" || res.Permissao != account.PermissionAdmin || !res.PasswordChangeRequired {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

// TestExecuteLogin_Lockout verifies the account locks after repeated failures and a success resets the counter.
func TestExecuteLogin_Lockout(t *testing.T) {
	store := newMockAccountStore(mustAccount("a1", "ana@onda.org", account.PermissionUser, "senha-segura"))
	ctx := context.Background()
	deps := LoginDeps{AccountStore: store}

	if _, err := ExecuteLogin(ctx, LoginInput{Email: "ana@onda.org", Password: "errada-123"}, deps); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("first failure err = %v", err)
	}
	if got := store.accounts["a1"].FailedLogins; got != 1 {
		t.Fatalf("FailedLogins = %d, want 1", got)
	}
	if _, err := ExecuteLogin(ctx, LoginInput{Email: "ana@onda.org", Password: "senha-segura"}, deps); err != nil {
		t.Fatalf("login after one failure: %v", err)
	}
	if got := store.accounts["a1"].FailedLogins; got != 0 {
		t.Fatalf("FailedLogins after success = %d, want 0", got)
	}

	for range account.MaxFailedLogins {
		_, _ = ExecuteLogin(ctx, LoginInput{Email: "ana@onda.org", Password: "errada-123"}, deps)
	}
	_, err := ExecuteLogin(ctx, LoginInput{Email: "ana@onda.org", Password: "senha-segura"}, deps)
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("err = %v, want ErrAccountLocked", err)
	}
}

// TestExecuteChangePassword verifies the password rotation rules.
func TestExecuteChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		input   ChangePasswordInput
		wantErr error
	}{
		{name: "valid", input: ChangePasswordInput{AccountID: "a1", CurrentPassword: "senha-antiga", NewPassword: "senha-nova-1"}},
		{name: "missing field", input: ChangePasswordInput{AccountID: "a1", CurrentPassword: "senha-antiga"}, wantErr: ErrMissingFields},
		{name: "unknown account", input: ChangePasswordInput{AccountID: "zz", CurrentPassword: "senha-antiga", NewPassword: "senha-nova-1"}, wantErr: ErrAccountNotFound},
		{name: "wrong current", input: ChangePasswordInput{AccountID: "a1", CurrentPassword: "outra-senha", NewPassword: "senha-nova-1"}, wantErr: ErrCurrentPasswordWrong},
		{name: "same password", input: ChangePasswordInput{AccountID: "a1", CurrentPassword: "senha-antiga", NewPassword: "senha-antiga"}, wantErr: ErrNewPasswordSame},
		{name: "too short", input: ChangePasswordInput{AccountID: "a1", CurrentPassword: "senha-antiga", NewPassword: "curta"}, wantErr: account.ErrPasswordTooShort},
		{name: "confirmation mismatch", input: ChangePasswordInput{AccountID: "a1", CurrentPassword: "senha-antiga", NewPassword: "senha-nova-1", ConfirmPassword: "senha-nova-2"}, wantErr: ErrPasswordMismatch},
		{name: "confirmed", input: ChangePasswordInput{AccountID: "a1", CurrentPassword: "senha-antiga", NewPassword: "senha-nova-1", ConfirmPassword: "senha-nova-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := mustAccount("a1", "ana@onda.org", account.PermissionUser, "senha-antiga")
			acct.PrimeiroLogin = true
			store := newMockAccountStore(acct)

			err := ExecuteChangePassword(context.Background(), tt.input, ChangePasswordDeps{AccountStore: store, Now: fixedNow})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			got := store.accounts["a1"]
			if got.PrimeiroLogin {
				t.Error("PrimeiroLogin should be cleared")
			}
			if err := got.CheckPassword("senha-nova-1"); err != nil {
				t.Errorf("new password rejected: %v", err)
			}
		})
	}
}

// TestExecuteChangePassword_Lockout verifies wrong current passwords count towards the lockout.
func TestExecuteChangePassword_Lockout(t *testing.T) {
	store := newMockAccountStore(mustAccount("a1", "ana@onda.org", account.PermissionUser, "senha-antiga"))
	deps := ChangePasswordDeps{AccountStore: store, Now: fixedNow}
	ctx := context.Background()

	wrong := ChangePasswordInput{AccountID: "a1", CurrentPassword: "chute-errado", NewPassword: "senha-nova-1"}
	for range account.MaxFailedLogins {
		if err := ExecuteChangePassword(ctx, wrong, deps); !errors.Is(err, ErrCurrentPasswordWrong) {
			t.Fatalf("err = %v, want ErrCurrentPasswordWrong", err)
		}
	}

	right := ChangePasswordInput{AccountID: "a1", CurrentPassword: "senha-antiga", NewPassword: "senha-nova-1"}
	if err := ExecuteChangePassword(ctx, right, deps); !errors.Is(err, ErrAccountLocked) {
		t.Errorf("err = %v, want ErrAccountLocked", err)
	}
}
