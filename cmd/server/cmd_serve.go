package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"onda/internal/adapters/blob"
	emailPkg "onda/internal/adapters/email"
	web "onda/internal/adapters/http"
	"onda/internal/adapters/http/perf"
	"onda/internal/adapters/storage"
	accountStore "onda/internal/adapters/storage/account"
	agendaStore "onda/internal/adapters/storage/agenda"
	recordStore "onda/internal/adapters/storage/records"
	"onda/internal/application/catalog"
	"onda/internal/application/orchestrators"
	"onda/internal/config"
	"onda/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Opens and migrates the database, seeds the first supreme account when
auth.admin_email and auth.admin_password are set, then serves the API and the
static front end until SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logging.Shutdown()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := perf.NewCollector(perf.DefaultRingSize)
	db, err := openDatabase(ctx, cfg, collector)
	if err != nil {
		return err
	}
	defer db.Close()

	stores := &web.Stores{
		Accounts: accountStore.NewSQLStore(db),
		Agenda:   agendaStore.NewSQLStore(db),
		Records:  make(map[string]recordStore.Store),
		DB:       db,
	}
	for _, e := range catalog.New(time.Now, cfg.Location()).All() {
		stores.Records[e.Config.Name] = recordStore.NewSQLStore(db, e.Form)
	}

	var files http.Handler
	stores.Uploader, files, err = newUploader(cfg)
	if err != nil {
		return err
	}

	sender := newEmailSender(cfg)
	web.SetEmailSender(sender)

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		seeded, err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.UserDeps{
			AccountStore: stores.Accounts,
			GenerateID:   uuid.NewString,
			Now:          time.Now,
		}, cfg.Auth.AdminEmail, cfg.Auth.AdminName, cfg.Auth.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if seeded {
			slog.Info("admin_seeded", "email", cfg.Auth.AdminEmail)
		}
	}

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		return err
	}
	mux := web.NewMux(web.Options{
		StaticDir:   cfg.Server.StaticDir,
		BaseURL:     cfg.Server.BaseURL,
		Production:  cfg.IsProduction(),
		CSRFKey:     csrfKey,
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		TokenTTL:    cfg.Auth.TokenTTL,
		RateLimit:   cfg.Server.RateLimit,
		SlowRequest: cfg.Server.SlowRequest,
		Location:    cfg.Location(),
		Files:       files,
	}, stores, collector)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start",
			"version", version,
			"addr", cfg.Server.Addr,
			"env", cfg.Env,
			"schema", storage.LatestSchemaVersion(),
			"storage", cfg.Storage.Backend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server_stop", "timeout", cfg.Server.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newUploader picks the attachment backend. The local backend also returns the
// handler that serves its files under /files/.
func newUploader(cfg *config.Config) (blob.Uploader, http.Handler, error) {
	switch cfg.Storage.Backend {
	case config.StorageS3:
		s3 := cfg.Storage.S3
		u, err := blob.NewS3Uploader(blob.S3Config{
			Region:     s3.Region,
			Endpoint:   s3.Endpoint,
			AccessKey:  s3.AccessKey,
			SecretKey:  s3.SecretKey,
			PathStyle:  s3.PathStyle,
			DisableSSL: s3.DisableSSL,
			PublicURL:  s3.PublicURL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("s3 uploader: %w", err)
		}
		return u, nil, nil
	default:
		u := blob.NewLocalUploader(cfg.Storage.LocalDir, strings.TrimRight(cfg.Server.BaseURL, "/")+"/files")
		return u, u.Handler(), nil
	}
}

func newEmailSender(cfg *config.Config) emailPkg.Sender {
	if cfg.Email.ResendKey != "" {
		slog.Info("email_sender", "backend", "resend", "from", cfg.Email.From)
		return emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From).WithReplyTo(cfg.Email.ReplyTo)
	}
	if cfg.IsProduction() {
		slog.Warn("email_sender", "backend", "noop", "reason", "ONDA_RESEND_KEY is not set, email delivery is disabled")
	} else {
		slog.Info("email_sender", "backend", "noop")
	}
	return emailPkg.NewNoopSender()
}
