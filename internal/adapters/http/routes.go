package web

import (
	"net/http"

	"onda/internal/metrics"
)

// registerRoutes registers every API route on mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)
	mux.HandleFunc("POST /api/token", handleToken)
	mux.HandleFunc("POST /api/password", handleChangePassword)
	mux.HandleFunc("GET /api/me", handleMe)

	mux.HandleFunc("GET /api/views", handleListViews)
	mux.HandleFunc("GET /api/views/{view}", handleGetView)
	mux.HandleFunc("PATCH /api/views/{view}/{id}", handleUpdateRecord)
	mux.HandleFunc("DELETE /api/views/{view}/{id}", handleDeleteRecord)
	mux.HandleFunc("POST /api/views/{view}/{id}/attachments/{slot}", handleUploadAttachment)

	mux.HandleFunc("GET /api/agenda", handleGetAgenda)
	mux.HandleFunc("POST /api/agenda", handleCreateEvent)
	mux.HandleFunc("PUT /api/agenda/{id}", handleUpdateEvent)
	mux.HandleFunc("DELETE /api/agenda/{id}", handleDeleteEvent)

	mux.HandleFunc("GET /api/cronograma", handleCronograma)
	mux.HandleFunc("GET /api/dashboard", handleDashboard)

	mux.HandleFunc("GET /api/usuarios", handleListUsers)
	mux.HandleFunc("POST /api/usuarios", handleCreateUser)
	mux.HandleFunc("PATCH /api/usuarios/{id}", handleUpdateUser)
	mux.HandleFunc("DELETE /api/usuarios/{id}", handleDeleteUser)

	mux.HandleFunc("GET /api/admin/perf", handleAdminPerf)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	if settings.Files != nil {
		mux.Handle("GET /files/", http.StripPrefix("/files", settings.Files))
	}
}
