// Package http wires the job API routes and request middleware.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"corpushub/internal/blobstore"
	"corpushub/internal/handlers"
	"corpushub/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB     *sql.DB
	Stores *storage.Stores
	Blobs  *blobstore.Store
	Runner handlers.JobRunner
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	exportHandler := handlers.NewExportHandler(deps.Stores.Corpora, deps.Stores.Jobs, deps.Runner)
	importHandler := handlers.NewImportHandler(deps.Stores.Corpora, deps.Stores.Jobs, deps.Blobs, deps.Runner)
	jobHandler := handlers.NewJobHandler(deps.Stores.Jobs)
	archiveHandler := handlers.NewArchiveHandler(deps.Stores.Jobs, deps.Blobs)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/corpora/{corpusID}/exports", exportHandler)
		r.Method(http.MethodPost, "/imports", importHandler)
		r.Method(http.MethodGet, "/jobs/{jobID}", jobHandler)
		r.Method(http.MethodGet, "/jobs/{jobID}/archive", archiveHandler)
	})

	r.Method(http.MethodGet, "/healthz", handlers.NewHealthHandler(deps.DB))

	return r
}
