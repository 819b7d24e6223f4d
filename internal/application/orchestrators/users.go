package orchestrators

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"onda/internal/adapters/email"
	accountStore "onda/internal/adapters/storage/account"
	"onda/internal/domain/account"
)

// getAccount loads id, reporting a missing row as ErrAccountNotFound and wrapping any other store failure.
func getAccount(ctx context.Context, store interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}, id string) (account.Account, error) {
	a, err := store.GetByID(ctx, id)
	switch {
	case errors.Is(err, accountStore.ErrNotFound):
		return account.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, id)
	case err != nil:
		return account.Account{}, fmt.Errorf("load account %s: %w", id, err)
	}
	return a, nil
}

// AccountStoreForUsers defines the store interface needed by user management.
type AccountStoreForUsers interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	CountByPermission(ctx context.Context, permission string) (int, error)
}

// Actor is the authenticated user performing an action.
type Actor struct {
	AccountID string
	Permissao string
}

// CanManageUsers reports whether the actor may create, change or delete usuarios.
func (a Actor) CanManageUsers() bool {
	return a.Permissao == account.PermissionSupreme
}

// CanEdit reports whether the actor may change registrations and the agenda.
func (a Actor) CanEdit() bool {
	return account.CanEdit(a.Permissao)
}

// UserDeps holds dependencies for the user management orchestrators.
type UserDeps struct {
	AccountStore AccountStoreForUsers
	EmailSender  email.Sender // nil skips the invitation
	LoginURL     string
	GenerateID   func() string
	Now          func() time.Time
}

var (
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")
	ErrForbidden          = errors.New("permission denied")
	ErrCannotDeleteSelf   = errors.New("you cannot delete your own account")
	ErrLastSupreme        = errors.New("at least one supreme account must remain")
	ErrNothingToUpdate    = errors.New("no fields to update")
	ErrInvitationNotSent  = errors.New("user created but the invitation email could not be sent")
)

// CreateUserInput carries input for the create-user orchestrator.
type CreateUserInput struct {
	Actor        Actor
	Email        string
	NomeCompleto string
	Permissao    string
	Password     string // empty generates a temporary password
}

// CreateUserResult is the created account plus the temporary password, if one was generated.
type CreateUserResult struct {
	Account           account.Account
	TemporaryPassword string
}

// ExecuteCreateUser creates a usuario that must change the password on first login
// and emails an invitation when a sender is configured.
// PRE: Actor is supreme; Email and NomeCompleto are non-empty
// POST: Account saved with PrimeiroLogin set; ErrInvitationNotSent is returned alongside
// a valid result when only the email failed
// INVARIANT: Email is unique
func ExecuteCreateUser(ctx context.Context, input CreateUserInput, deps UserDeps) (CreateUserResult, error) {
	if !input.Actor.CanManageUsers() {
		return CreateUserResult{}, ErrForbidden
	}
	if input.Permissao == "" {
		input.Permissao = account.PermissionUser
	}

	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := deps.AccountStore.GetByEmail(ctx, emailAddr); err == nil {
		return CreateUserResult{}, ErrEmailAlreadyExists
	}

	now := deps.Now()
	acct := account.Account{
		ID:            deps.GenerateID(),
		Email:         emailAddr,
		NomeCompleto:  strings.TrimSpace(input.NomeCompleto),
		Permissao:     input.Permissao,
		PrimeiroLogin: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := acct.Validate(); err != nil {
		return CreateUserResult{}, err
	}

	result := CreateUserResult{}
	password := input.Password
	if password == "" {
		generated, err := temporaryPassword()
		if err != nil {
			return CreateUserResult{}, err
		}
		password = generated
		result.TemporaryPassword = generated
	}
	if err := acct.SetPassword(password); err != nil {
		return CreateUserResult{}, err
	}

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return CreateUserResult{}, err
	}
	result.Account = acct

	slog.Info("user_event", "event", "user_created", "account_id", acct.ID, "permissao", acct.Permissao, "created_by", input.Actor.AccountID)

	if deps.EmailSender != nil {
		if err := sendInvitation(ctx, acct, deps); err != nil {
			slog.Error("user_event", "event", "invitation_failed", "account_id", acct.ID, "error", err)
			return result, ErrInvitationNotSent
		}
	}
	return result, nil
}

func sendInvitation(ctx context.Context, acct account.Account, deps UserDeps) error {
	subject, body, err := email.RenderInvitation(email.InvitationData{
		Nome:      acct.NomeCompleto,
		Email:     acct.Email,
		LoginURL:  deps.LoginURL,
		Permissao: acct.Permissao,
	})
	if err != nil {
		return err
	}
	_, err = deps.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{acct.Email},
		Subject: subject,
		HTML:    body,
	})
	return err
}

// UpdateUserInput carries a partial update of a usuario. Nil fields are left unchanged.
type UpdateUserInput struct {
	Actor         Actor
	AccountID     string
	NomeCompleto  *string
	Permissao     *string
	ResetPassword bool // sets a new temporary password and PrimeiroLogin
}

// ExecuteUpdateUser changes a usuario's name, permission or password.
// PRE: Actor is supreme
// POST: Account saved; TemporaryPassword is set when ResetPassword was requested
// INVARIANT: at least one supreme account remains
func ExecuteUpdateUser(ctx context.Context, input UpdateUserInput, deps UserDeps) (CreateUserResult, error) {
	if !input.Actor.CanManageUsers() {
		return CreateUserResult{}, ErrForbidden
	}
	if input.NomeCompleto == nil && input.Permissao == nil && !input.ResetPassword {
		return CreateUserResult{}, ErrNothingToUpdate
	}

	acct, err := getAccount(ctx, deps.AccountStore, input.AccountID)
	if err != nil {
		return CreateUserResult{}, err
	}
	if input.NomeCompleto != nil {
		acct.NomeCompleto = strings.TrimSpace(*input.NomeCompleto)
	}
	if input.Permissao != nil && *input.Permissao != acct.Permissao {
		if acct.IsSupreme() {
			if err := ensureAnotherSupreme(ctx, deps); err != nil {
				return CreateUserResult{}, err
			}
		}
		acct.Permissao = *input.Permissao
	}
	if err := acct.Validate(); err != nil {
		return CreateUserResult{}, err
	}

	result := CreateUserResult{}
	if input.ResetPassword {
		generated, err := temporaryPassword()
		if err != nil {
			return CreateUserResult{}, err
		}
		if err := acct.SetPassword(generated); err != nil {
			return CreateUserResult{}, err
		}
		acct.PrimeiroLogin = true
		acct.ResetFailedLogins()
		result.TemporaryPassword = generated
	}
	acct.UpdatedAt = deps.Now()

	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return CreateUserResult{}, err
	}
	result.Account = acct

	slog.Info("user_event", "event", "user_updated", "account_id", acct.ID, "permissao", acct.Permissao,
		"password_reset", input.ResetPassword, "updated_by", input.Actor.AccountID)
	return result, nil
}

// DeleteUserInput identifies the usuario to remove.
type DeleteUserInput struct {
	Actor     Actor
	AccountID string
}

// ExecuteDeleteUser removes a usuario.
// PRE: Actor is supreme
// POST: the account no longer exists
// INVARIANT: actors cannot delete themselves; the last supreme account cannot be deleted
func ExecuteDeleteUser(ctx context.Context, input DeleteUserInput, deps UserDeps) error {
	if !input.Actor.CanManageUsers() {
		return ErrForbidden
	}
	if input.AccountID == input.Actor.AccountID {
		return ErrCannotDeleteSelf
	}

	acct, err := getAccount(ctx, deps.AccountStore, input.AccountID)
	if err != nil {
		return err
	}
	if acct.IsSupreme() {
		if err := ensureAnotherSupreme(ctx, deps); err != nil {
			return err
		}
	}

	if err := deps.AccountStore.Delete(ctx, acct.ID); err != nil {
		return err
	}
	slog.Info("user_event", "event", "user_deleted", "account_id", acct.ID, "deleted_by", input.Actor.AccountID)
	return nil
}

func ensureAnotherSupreme(ctx context.Context, deps UserDeps) error {
	n, err := deps.AccountStore.CountByPermission(ctx, account.PermissionSupreme)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastSupreme
	}
	return nil
}

// ExecuteSeedAdmin creates a supreme account if no accounts exist.
// PRE: Database is migrated
// POST: Supreme account created with PrimeiroLogin set if count == 0; returns whether it seeded
func ExecuteSeedAdmin(ctx context.Context, deps UserDeps, emailAddr, nome, password string) (bool, error) {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	seedDeps := deps
	seedDeps.EmailSender = nil
	_, err = ExecuteCreateUser(ctx, CreateUserInput{
		Actor:        Actor{AccountID: "system", Permissao: account.PermissionSupreme},
		Email:        emailAddr,
		NomeCompleto: nome,
		Permissao:    account.PermissionSupreme,
		Password:     password,
	}, seedDeps)
	if err != nil {
		return false, err
	}

	authEvent("admin_seeded", "email", emailAddr)
	return true, nil
}

// temporaryPassword returns 12 random URL-safe characters.
func temporaryPassword() (string, error) {
	b := make([]byte, 9)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
