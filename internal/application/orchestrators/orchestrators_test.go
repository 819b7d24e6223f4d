package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	accountStore "onda/internal/adapters/storage/account"
	agendaStore "onda/internal/adapters/storage/agenda"
	"onda/internal/application/listutil"
	"onda/internal/domain/account"
	"onda/internal/domain/agenda"
)

func init() {
	account.PasswordCost = bcrypt.MinCost
}

var fixedTime = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

var (
	supremeActor = Actor{AccountID: "sup-1", Permissao: account.PermissionSupreme}
	adminActor   = Actor{AccountID: "adm-1", Permissao: account.PermissionAdmin}
	userActor    = Actor{AccountID: "usr-1", Permissao: account.PermissionUser}
)

// mockAccountStore implements every account store interface used by the orchestrators.
type mockAccountStore struct {
	accounts map[string]account.Account
	saves    int
	getErr   error
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

// GetByID implements AccountStoreForUsers.
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	if m.getErr != nil {
		return account.Account{}, m.getErr
	}
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, accountStore.ErrNotFound
	}
	return a, nil
}

// GetByEmail implements AccountStoreForLogin.
func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

// Save implements AccountStoreForLogin.
func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.accounts[a.ID] = a
	return nil
}

// Delete implements AccountStoreForUsers.
func (m *mockAccountStore) Delete(_ context.Context, id string) error {
	delete(m.accounts, id)
	return nil
}

// List implements AccountLister.
func (m *mockAccountStore) List(_ context.Context) ([]account.Account, error) {
	out := make([]account.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	return out, nil
}

// Count implements AccountStoreForUsers.
func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}

// CountByPermission implements AccountStoreForUsers.
func (m *mockAccountStore) CountByPermission(_ context.Context, p string) (int, error) {
	n := 0
	for _, a := range m.accounts {
		if a.Permissao == p {
			n++
		}
	}
	return n, nil
}

func mustAccount(id, email, perm, password string) account.Account {
	a := account.Account{ID: id, Email: email, NomeCompleto: "Conta " + id, Permissao: perm, CreatedAt: fixedTime}
	if err := a.SetPassword(password); err != nil {
		panic(err)
	}
	return a
}

// mockRecordStore implements the record store interfaces over an in-memory map.
type mockRecordStore struct {
	rows      map[string]listutil.Record
	updateErr error
}

func newMockRecordStore(rows ...listutil.Record) *mockRecordStore {
	m := &mockRecordStore{rows: make(map[string]listutil.Record)}
	for _, r := range rows {
		m.rows[r.ID()] = r
	}
	return m
}

// Get implements RecordStoreForUpload.
func (m *mockRecordStore) Get(_ context.Context, id string) (listutil.Record, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return r.Clone(), nil
}

// Update implements RecordStoreForUpdate.
func (m *mockRecordStore) Update(_ context.Context, id string, partial map[string]any) (listutil.Record, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	r, ok := m.rows[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	for k, v := range partial {
		r[k] = v
	}
	return r.Clone(), nil
}

// Delete implements RecordStoreForUpdate.
func (m *mockRecordStore) Delete(_ context.Context, id string) error {
	if _, ok := m.rows[id]; !ok {
		return errors.New("record not found")
	}
	delete(m.rows, id)
	return nil
}

// mockUploader implements blob.Uploader.
type mockUploader struct {
	objects map[string]string
	err     error
}

// Upload implements blob.Uploader.
func (m *mockUploader) Upload(_ context.Context, bucket, name string, r io.Reader, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if m.objects == nil {
		m.objects = make(map[string]string)
	}
	key := bucket + "/" + name
	m.objects[key] = string(b)
	return "https://files.onda.test/" + key, nil
}

// mockEventStore implements EventStoreForOrchestrator.
type mockEventStore struct {
	events map[string]agenda.Event
	getErr error
}

func newMockEventStore(events ...agenda.Event) *mockEventStore {
	m := &mockEventStore{events: make(map[string]agenda.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

// GetByID implements EventStoreForOrchestrator.
func (m *mockEventStore) GetByID(_ context.Context, id string) (agenda.Event, error) {
	if m.getErr != nil {
		return agenda.Event{}, m.getErr
	}
	e, ok := m.events[id]
	if !ok {
		return agenda.Event{}, agendaStore.ErrNotFound
	}
	return e, nil
}

// Save implements EventStoreForOrchestrator.
func (m *mockEventStore) Save(_ context.Context, e agenda.Event) error {
	m.events[e.ID] = e
	return nil
}

// Delete implements EventStoreForOrchestrator.
func (m *mockEventStore) Delete(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func bodyOf(s string) io.Reader { return strings.NewReader(s) }
