package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onda/internal/domain/account"
)

// ChangePasswordInput carries the caller's current password and the replacement.
// ConfirmPassword is optional; when sent it must equal NewPassword.
type ChangePasswordInput struct {
	AccountID       string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// AccountStoreForChangePassword defines the store interface needed by ChangePassword.
type AccountStoreForChangePassword interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ChangePasswordDeps holds dependencies for ChangePassword.
type ChangePasswordDeps struct {
	AccountStore AccountStoreForChangePassword
	Now          func() time.Time
}

var (
	ErrMissingFields        = errors.New("current_password and new_password are required")
	ErrAccountNotFound      = errors.New("account not found")
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password must be different from current password")
	ErrPasswordMismatch     = errors.New("new passwords do not match")
)

// ExecuteChangePassword replaces the caller's password and clears primeiro_login.
// A wrong current password counts towards the login lockout, so this endpoint
// cannot be used to guess passwords past MaxFailedLogins.
// PRE: AccountID names the authenticated caller
// POST: on success the password is replaced, PrimeiroLogin is false and failed attempts are reset
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.AccountID == "" || input.CurrentPassword == "" || input.NewPassword == "" {
		return ErrMissingFields
	}
	if input.ConfirmPassword != "" && input.ConfirmPassword != input.NewPassword {
		return ErrPasswordMismatch
	}

	acct, err := getAccount(ctx, deps.AccountStore, input.AccountID)
	if err != nil {
		return err
	}
	if acct.IsLocked() {
		authEvent("password_change_blocked", "account_id", acct.ID, "reason", "locked")
		return ErrAccountLocked
	}

	if err := acct.CheckPassword(input.CurrentPassword); err != nil {
		acct.RecordFailedLogin()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return fmt.Errorf("record failed attempt: %w", err)
		}
		authEvent("password_change_failed", "account_id", acct.ID, "failed_logins", acct.FailedLogins)
		return ErrCurrentPasswordWrong
	}
	if input.CurrentPassword == input.NewPassword {
		return ErrNewPasswordSame
	}
	if err := acct.SetPassword(input.NewPassword); err != nil {
		return err
	}

	firstLogin := acct.PrimeiroLogin
	acct.PrimeiroLogin = false
	acct.ResetFailedLogins()
	acct.UpdatedAt = deps.Now()
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	authEvent("password_changed", "account_id", acct.ID, "first_login", firstLogin)
	return nil
}
