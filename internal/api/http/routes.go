package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/prepared/internal/results"
	"github.com/mind-engage/prepared/internal/storage"
	syncx "github.com/mind-engage/prepared/internal/sync"
	"github.com/mind-engage/prepared/internal/workspace"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// EventLog is satisfied by *syncx.EventRepo.
type EventLog interface {
	Append(ctx context.Context, typ, key string, payload any) error
	Since(ctx context.Context, after int64, limit int) ([]syncx.Event, error)
}

type Deps struct {
	Workspace *workspace.Workspace
	Results   results.Store
	Blobs     storage.BlobStore
	DB        Pinger   // optional; checked by /readyz
	Events    EventLog // optional; enables /sync/events
}

// Mount registers every route on r. Middleware is left to the caller.
func Mount(r chi.Router, d Deps) {
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.DB != nil {
			if err := d.DB.PingContext(r.Context()); err != nil {
				http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	r.Route("/modules", func(mr chi.Router) {
		MountModules(mr, d.Workspace.Catalog(), d.Blobs)
	})
	r.Route("/learners/{learnerID}", func(lr chi.Router) {
		MountLearners(lr, d.Workspace, d.Results, d.Events)
	})
	if d.Events != nil {
		r.Get("/sync/events", SyncEventsHandler(d.Events))
	}
}

// SyncEventsHandler pages through the event log: ?after=<seq>&limit=<n>.
func SyncEventsHandler(ev EventLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after := int64(parseIntDefault(r.URL.Query().Get("after"), 0))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		list, err := ev.Since(r.Context(), after, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
