package web

import (
	"context"
	"errors"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"onda/internal/adapters/email"
	"onda/internal/adapters/http/middleware"
	accountStore "onda/internal/adapters/storage/account"
	agendaStore "onda/internal/adapters/storage/agenda"
	recordStore "onda/internal/adapters/storage/records"
	"onda/internal/application/catalog"
	"onda/internal/application/listutil"
	accountDomain "onda/internal/domain/account"
	agendaDomain "onda/internal/domain/agenda"
)

// --- Mock stores ---

type mockAccountStore struct {
	mu       sync.Mutex
	accounts map[string]accountDomain.Account
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (accountDomain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return accountDomain.Account{}, accountStore.ErrNotFound
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (accountDomain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return accountDomain.Account{}, accountStore.ErrNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a accountDomain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return accountStore.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func (m *mockAccountStore) List(_ context.Context) ([]accountDomain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slicesFromMap(m.accounts), nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}

func (m *mockAccountStore) CountByPermission(_ context.Context, permission string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.accounts {
		if a.Permissao == permission {
			n++
		}
	}
	return n, nil
}

type mockAgendaStore struct {
	mu     sync.Mutex
	events map[string]agendaDomain.Event
}

func (m *mockAgendaStore) Save(_ context.Context, e agendaDomain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e
	return nil
}

func (m *mockAgendaStore) GetByID(_ context.Context, id string) (agendaDomain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return agendaDomain.Event{}, agendaStore.ErrNotFound
}

func (m *mockAgendaStore) List(_ context.Context, month string) ([]agendaDomain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []agendaDomain.Event
	for _, e := range m.events {
		if month == "" || e.InMonth(month) {
			out = append(out, e)
		}
	}
	agendaDomain.Sort(out)
	return out, nil
}

func (m *mockAgendaStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

func (m *mockAgendaStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events), nil
}

// mockRecordStore keeps rows in insertion order.
type mockRecordStore struct {
	mu   sync.Mutex
	rows []listutil.Record
}

func (m *mockRecordStore) FetchAll(_ context.Context) ([]listutil.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]listutil.Record, len(m.rows))
	for i, r := range m.rows {
		out[i] = maps.Clone(r)
	}
	return out, nil
}

func (m *mockRecordStore) find(id string) int {
	for i, r := range m.rows {
		if r["id"] == id {
			return i
		}
	}
	return -1
}

func (m *mockRecordStore) Get(_ context.Context, id string) (listutil.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return nil, recordStore.ErrNotFound
	}
	return maps.Clone(m.rows[i]), nil
}

func (m *mockRecordStore) Insert(_ context.Context, rec listutil.Record) (listutil.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, maps.Clone(rec))
	return rec, nil
}

func (m *mockRecordStore) Update(_ context.Context, id string, partial map[string]any) (listutil.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return nil, recordStore.ErrNotFound
	}
	maps.Copy(m.rows[i], partial)
	return maps.Clone(m.rows[i]), nil
}

func (m *mockRecordStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return recordStore.ErrNotFound
	}
	m.rows = append(m.rows[:i], m.rows[i+1:]...)
	return nil
}

func (m *mockRecordStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

type uploadCall struct {
	Bucket, Name, ContentType string
	Body                      string
}

type mockUploader struct {
	calls []uploadCall
	err   error
}

func (m *mockUploader) Upload(_ context.Context, bucket, name string, r io.Reader, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.calls = append(m.calls, uploadCall{Bucket: bucket, Name: name, ContentType: contentType, Body: string(body)})
	return "https://cdn.test/" + bucket + "/" + name, nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

var errDatabaseDown = errors.New("database down")

func slicesFromMap[V any](m map[string]V) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// --- Test helpers ---

// fixedNow is the clock every handler test runs against.
var fixedNow = time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)

// newTestStores returns Stores backed by empty mocks, one record store per view.
func newTestStores() *Stores {
	records := make(map[string]recordStore.Store)
	for _, e := range views.All() {
		records[e.Config.Name] = &mockRecordStore{}
	}
	return &Stores{
		Accounts: &mockAccountStore{accounts: make(map[string]accountDomain.Account)},
		Agenda:   &mockAgendaStore{events: make(map[string]agendaDomain.Event)},
		Records:  records,
		Uploader: &mockUploader{},
	}
}

// setupHandlers installs fresh globals for a handler test and returns the stores and sent mail.
func setupHandlers(t *testing.T) (*Stores, *email.NoopSender) {
	t.Helper()
	s := newTestStores()
	sender := email.NewNoopSender()

	prevNow := timeNow
	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() {
		timeNow = prevNow
		emailSender = nil
	})

	stores = s
	settings = Options{BaseURL: "https://onda.test", Location: time.UTC}
	sessions = middleware.NewSessionStore()
	tokens = middleware.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	SetEmailSender(sender)
	return s, sender
}

// surferStore returns the mock behind the surfistas view.
func surferStore(s *Stores) *mockRecordStore {
	return s.Records[catalog.ViewSurfers].(*mockRecordStore)
}

// addAccount stores an account with a bcrypt hash of password.
func addAccount(t *testing.T, s *Stores, a accountDomain.Account, password string) accountDomain.Account {
	t.Helper()
	if password != "" {
		if err := a.SetPassword(password); err != nil {
			t.Fatalf("SetPassword: %v", err)
		}
	}
	if err := s.Accounts.Save(context.Background(), a); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return a
}

// authRequest returns a request with the given session injected into context.
func authRequest(method, url string, body string, sess middleware.Session) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	ctx := middleware.ContextWithSession(req.Context(), sess)
	return req.WithContext(ctx)
}

// jsonRequest returns an anonymous request with a JSON body.
func jsonRequest(method, url, body string) *http.Request {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withPath sets the mux path values a handler reads.
func withPath(r *http.Request, kv ...string) *http.Request {
	for i := 0; i+1 < len(kv); i += 2 {
		r.SetPathValue(kv[i], kv[i+1])
	}
	return r
}

var supremeSession = middleware.Session{
	AccountID:    "sup-001",
	Email:        "coord@onda.test",
	NomeCompleto: "Coordenação",
	Permissao:    accountDomain.PermissionSupreme,
}

var adminSession = middleware.Session{
	AccountID:    "adm-001",
	Email:        "equipe@onda.test",
	NomeCompleto: "Equipe",
	Permissao:    accountDomain.PermissionAdmin,
}

var userSession = middleware.Session{
	AccountID:    "usr-001",
	Email:        "leitura@onda.test",
	NomeCompleto: "Leitura",
	Permissao:    accountDomain.PermissionUser,
}
