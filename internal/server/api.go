package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pldiff/internal/services"
	"github.com/desertthunder/pldiff/internal/shared"
	"github.com/desertthunder/pldiff/internal/tasks"
)

const (
	healthRoute = "GET /health"
	tracksRoute = "GET /playlists/{id}/tracks"
	diffRoute   = "GET /diff"
)

// API serves playlist listings and comparisons as JSON.
// Implements the Handler interface for registration with a Router.
type API struct {
	engine tasks.Comparer
	tokens services.CredentialSource
	logger *log.Logger
	mux    *http.ServeMux
}

// NewAPI creates the JSON API over engine. tokens reports credential state on /health.
func NewAPI(engine tasks.Comparer, tokens services.CredentialSource, logger *log.Logger) *API {
	a := &API{
		engine: engine,
		tokens: tokens,
		logger: shared.WithLogger(logger, "component", "api"),
		mux:    http.NewServeMux(),
	}

	a.mux.HandleFunc(healthRoute, a.health)
	a.mux.HandleFunc(tracksRoute, a.tracks)
	a.mux.HandleFunc(diffRoute, a.diff)
	return a
}

// Routes returns the HTTP routes this handler serves.
func (a *API) Routes() []string {
	return []string{healthRoute, tracksRoute, diffRoute}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status     string `json:"status"`
	Credential bool   `json:"credential"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ok := false
	if a.tokens != nil {
		_, ok = a.tokens.Current()
	}
	a.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Credential: ok})
}

func (a *API) tracks(w http.ResponseWriter, r *http.Request) {
	id, err := services.ParsePlaylistRef(r.PathValue("id"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	pl, err := a.engine.Load(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, pl)
}

func (a *API) diff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	leftID, err := services.ParsePlaylistRef(q.Get("left"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	rightID, err := services.ParsePlaylistRef(q.Get("right"))
	if err != nil {
		a.writeError(w, err)
		return
	}

	cmp, err := a.engine.Compare(r.Context(), leftID, rightID, nil)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, cmp)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		a.logger.Error("failed to encode response", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "status", status, "error", err)
	} else {
		a.logger.Debug("request rejected", "status", status, "error", err)
	}
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// StatusFor maps an error to the HTTP status reported by the API.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidPlaylistID),
		errors.Is(err, shared.ErrInvalidMarket),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrEmptyOrInaccessible):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrNoCredential),
		errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrTransport),
		errors.Is(err, shared.ErrShape):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
