package web

import (
	"net/http"
	"time"

	"onda/internal/application/catalog"
	"onda/internal/application/projections"
)

func scheduleDeps() projections.GetScheduleDeps {
	return projections.GetScheduleDeps{Program: program, Location: settings.Location, Now: timeNow}
}

// handleCronograma handles GET /api/cronograma: the retreat program and countdown.
func handleCronograma(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, projections.QueryGetSchedule(scheduleDeps()))
}

// handleDashboard handles GET /api/dashboard: per-table counts, surfer status breakdowns and the countdown.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSession(w, r); !ok {
		return
	}

	entries := views.All()
	tables := make([]projections.TableCounter, 0, len(entries)+1)
	for _, e := range entries {
		if store, ok := stores.Records[e.Config.Name]; ok {
			tables = append(tables, projections.TableCounter{Name: e.Config.Name, Label: e.Config.Title, Counter: store})
		}
	}
	tables = append(tables, projections.TableCounter{Name: "agenda", Label: "Agenda", Counter: stores.Agenda})

	deps := projections.GetDashboardDeps{Tables: tables, Schedule: scheduleDeps()}
	if surfers, ok := stores.Records[catalog.ViewSurfers]; ok {
		deps.Surfers = surfers
	}

	result, err := projections.QueryGetDashboard(r.Context(), deps)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAdminPerf handles GET /api/admin/perf?window=15m: request and query timings.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireSupreme(w, r); !ok {
		return
	}
	if perfCollector == nil {
		http.Error(w, "performance collection disabled", http.StatusNotFound)
		return
	}
	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "window must be a positive duration", http.StatusBadRequest)
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), 10))
}

// handleHealth handles GET /healthz.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	if stores != nil && stores.DB != nil {
		if err := stores.DB.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
