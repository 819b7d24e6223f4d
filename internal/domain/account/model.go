package account

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 200
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Permission constants, highest first.
const (
	PermissionSupreme = "supreme"
	PermissionAdmin   = "admin"
	PermissionUser    = "user"
)

// ValidPermissions contains all valid permission values.
var ValidPermissions = []string{PermissionSupreme, PermissionAdmin, PermissionUser}

// PasswordCost is the bcrypt cost used by SetPassword. Tests lower it.
var PasswordCost = 12

// Lockout policy.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// Domain errors
var (
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrInvalidEmail      = errors.New("email is not a valid address")
	ErrEmptyName         = errors.New("nome_completo cannot be empty")
	ErrNameTooLong       = errors.New("nome_completo cannot exceed 200 characters")
	ErrInvalidPermission = errors.New("permissao must be one of: supreme, admin, user")
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrWrongPassword     = errors.New("incorrect password")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Account is a dashboard user (the usuarios table).
type Account struct {
	ID            string
	Email         string
	NomeCompleto  string
	Permissao     string
	PasswordHash  string
	PrimeiroLogin bool // forces a password change on the next login
	FailedLogins  int
	LockedUntil   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if err := validate.Var(a.Email, "email,max=254"); err != nil {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(a.NomeCompleto) == "" {
		return ErrEmptyName
	}
	if len(a.NomeCompleto) > MaxNameLength {
		return ErrNameTooLong
	}
	if !IsValidPermission(a.Permissao) {
		return ErrInvalidPermission
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty and >= MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true if the account is currently locked out.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked() bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return time.Now().Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account after 5 failures.
// PRE: Account exists
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (a *Account) RecordFailedLogin() {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = time.Now().Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
// PRE: Account exists
// POST: FailedLogins is 0, LockedUntil is zero
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsSupreme returns true if the account may manage other users.
// INVARIANT: Account fields are not mutated
func (a *Account) IsSupreme() bool {
	return a.Permissao == PermissionSupreme
}

// CanEdit returns true if the account may change registrations and the agenda.
// INVARIANT: Account fields are not mutated
func (a *Account) CanEdit() bool {
	return CanEdit(a.Permissao)
}

// CanEdit reports whether permission allows mutating records.
func CanEdit(permission string) bool {
	return permission == PermissionSupreme || permission == PermissionAdmin
}

// IsValidPermission reports whether p is a known permission.
func IsValidPermission(p string) bool {
	for _, v := range ValidPermissions {
		if v == p {
			return true
		}
	}
	return false
}
