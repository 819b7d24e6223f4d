package web

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"onda/internal/adapters/blob"
	"onda/internal/adapters/email"
	"onda/internal/adapters/http/middleware"
	"onda/internal/adapters/http/perf"
	accountStore "onda/internal/adapters/storage/account"
	agendaStore "onda/internal/adapters/storage/agenda"
	recordStore "onda/internal/adapters/storage/records"
	"onda/internal/application/catalog"
	"onda/internal/domain/schedule"
)

// Pinger reports database health.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Stores holds all storage dependencies.
type Stores struct {
	Accounts accountStore.Store
	Agenda   agendaStore.Store
	Records  map[string]recordStore.Store // keyed by view name
	Uploader blob.Uploader
	DB       Pinger // nil skips the database check in /healthz
}

// Options configures the HTTP surface.
type Options struct {
	StaticDir   string
	BaseURL     string // public URL, used in email links and as the trusted CSRF origin
	Production  bool
	CSRFKey     []byte // 32 bytes; random per process when empty outside production
	JWTSecret   []byte // random per process when empty outside production
	TokenTTL    time.Duration
	RateLimit   int // requests per second per IP
	SlowRequest time.Duration
	Location    *time.Location // retreat timezone for the countdown
	Files       http.Handler   // serves /files/ for the local uploader; nil disables the route
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global API token issuer
var tokens *middleware.TokenIssuer

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// views is the list view catalog; age fields are computed against timeNow.
// NewMux rebuilds it in the configured Location.
var views = newViews(time.UTC)

func newViews(loc *time.Location) *catalog.Catalog {
	return catalog.New(func() time.Time { return timeNow() }, loc)
}

// settings holds the Options the handlers read.
var settings Options

// program is the retreat schedule served by /api/cronograma.
var program = schedule.Retreat()

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set; opts passed config validation
func NewMux(opts Options, s *Stores, collector *perf.Collector) http.Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	settings = opts
	stores = s
	views = newViews(opts.Location)
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	tokens = middleware.NewTokenIssuer(secretOrRandom(opts.JWTSecret, "jwt secret"), opts.TokenTTL)
	middleware.SecureCookies = opts.Production

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(opts.StaticDir)))
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(opts.RateLimit, time.Second)

	// Apply middleware: Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Metrics -> Mux
	return middleware.Chain(mux,
		middleware.Metrics,
		middleware.SecurityHeaders,
		middleware.CSRF(secretOrRandom(opts.CSRFKey, "csrf key"), middleware.CSRFOptions{
			Secure:         opts.Production,
			TrustedOrigins: trustedOrigins(opts.BaseURL),
		}),
		middleware.Auth(sessions, tokens),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequest),
	)
}

// secretOrRandom returns key, or a random 32-byte key when key is empty.
// Config validation guarantees both secrets are set in production.
func secretOrRandom(key []byte, name string) []byte {
	if len(key) > 0 {
		return key
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("generate " + name + ": " + err.Error())
	}
	slog.Warn("random_secret", "secret", name, "detail", "sessions and tokens won't survive restart")
	return key
}

func trustedOrigins(baseURL string) []string {
	origins := []string{"localhost:8080", "127.0.0.1:8080"}
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		origins = append(origins, u.Host)
	}
	return origins
}
