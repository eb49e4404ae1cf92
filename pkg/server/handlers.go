package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"mercator-hq/callisto/pkg/archive"
	"mercator-hq/callisto/pkg/interaction"
	"mercator-hq/callisto/pkg/repository"
)

// ArchiveList is the response body of GET /archives.
type ArchiveList struct {
	Archives []string `json:"archives"`
}

// ArchiveSummary is the response body of GET /archives/{name}/entries.
type ArchiveSummary struct {
	Name    string         `json:"name"`
	Entries []EntrySummary `json:"entries"`
}

// EntrySummary is one captured exchange, reduced to the fields a reader
// scans for when deciding which archive to open.
type EntrySummary struct {
	Index         int       `json:"index"`
	Method        string    `json:"method"`
	URL           string    `json:"url"`
	Status        int       `json:"status"`
	Started       time.Time `json:"started"`
	ElapsedMillis float64   `json:"elapsed_ms"`
	RequestBytes  int       `json:"request_bytes"`
	ResponseBytes int       `json:"response_bytes"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.checker.LivenessHandler())
	r.Get("/readyz", s.checker.ReadinessHandler())
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/archives", func(r chi.Router) {
		r.Get("/", s.handleListArchives)
		r.Get("/{name}", s.handleGetArchive)
		r.Get("/{name}/entries", s.handleListEntries)
	})

	return r
}

// handleListArchives enumerates stored interaction names. Listing is an
// optional repository capability; backends without it answer 501.
func (s *Server) handleListArchives(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.repo.(repository.Lister)
	if !ok {
		writeError(w, http.StatusNotImplemented, "archive backend does not support listing")
		return
	}

	names, err := lister.List(r.Context())
	if err != nil {
		s.logger.Error("listing archives failed", "error", err)
		writeError(w, http.StatusInternalServerError, "listing archives failed")
		return
	}
	if names == nil {
		names = []string{}
	}

	writeJSON(w, http.StatusOK, ArchiveList{Archives: names})
}

// handleGetArchive serves the full HAR document for one interaction.
func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	in, ok := s.loadInteraction(w, r)
	if !ok {
		return
	}

	data, err := archive.Encode(archive.Build(in))
	if err != nil {
		s.logger.Error("encoding archive failed", "interaction", in.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "encoding archive failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleListEntries serves a per-entry summary for one interaction.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	in, ok := s.loadInteraction(w, r)
	if !ok {
		return
	}

	summary := ArchiveSummary{
		Name:    in.Name,
		Entries: make([]EntrySummary, 0, len(in.Messages)),
	}
	for i, msg := range in.Messages {
		summary.Entries = append(summary.Entries, EntrySummary{
			Index:         i,
			Method:        msg.Request.Method,
			URL:           msg.Request.URL,
			Status:        msg.Response.Status,
			Started:       msg.Started,
			ElapsedMillis: float64(msg.Elapsed) / float64(time.Millisecond),
			RequestBytes:  len(msg.Request.Body),
			ResponseBytes: len(msg.Response.Body),
		})
	}

	writeJSON(w, http.StatusOK, summary)
}

// loadInteraction resolves the {name} route parameter and loads the
// interaction, writing the error response itself when loading fails.
func (s *Server) loadInteraction(w http.ResponseWriter, r *http.Request) (*interaction.Interaction, bool) {
	name := chi.URLParam(r, "name")

	in, err := s.repo.Load(r.Context(), name)
	if err != nil {
		var missing *repository.NoSuchInteractionError
		if errors.As(err, &missing) {
			writeError(w, http.StatusNotFound, "no such archive: "+name)
			return nil, false
		}
		s.logger.Error("loading archive failed", "interaction", name, "error", err)
		writeError(w, http.StatusInternalServerError, "loading archive failed")
		return nil, false
	}
	return in, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
