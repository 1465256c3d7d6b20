package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/machine"
	"github.com/aretw0/turing/pkg/ports"
	"github.com/aretw0/turing/pkg/session"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// DefaultMaxStepLimit caps the steps of a single run started over HTTP.
// Every step records the visited tape, so a run costs memory quadratic in
// its length.
const DefaultMaxStepLimit = 2000

// Server exposes an Engine and a Catalog over HTTP.
type Server struct {
	Engine   *turing.Engine
	Catalog  ports.Catalog
	Sessions *session.Manager
	Metrics  http.Handler
	Logger   *slog.Logger

	// MaxStepLimit is the largest step_limit a request may ask for. Requests
	// without one run with the engine limit, capped at MaxStepLimit.
	MaxStepLimit int
}

// Option configures the handler.
type Option func(*Server)

// WithCatalog serves named machines from catalog.
func WithCatalog(catalog ports.Catalog) Option {
	return func(s *Server) {
		s.Catalog = catalog
	}
}

// WithSessions serves interactive sessions from mgr. By default the handler
// creates a manager on its engine.
func WithSessions(mgr *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = mgr
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithMaxStepLimit sets the ceiling for per-request step limits.
// Non-positive values keep DefaultMaxStepLimit.
func WithMaxStepLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.MaxStepLimit = n
		}
	}
}

// WithLogger sets the logger used for request errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
// Runs are persisted through the engine's store; without one the run
// listing endpoints answer 501.
func NewHandler(engine *turing.Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:       engine,
		Logger:       slog.Default(),
		MaxStepLimit: DefaultMaxStepLimit,
	}
	for _, opt := range opts {
		opt(server)
	}
	if server.Sessions == nil {
		server.Sessions = session.NewManager(engine, session.WithLogger(server.Logger))
	}

	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	if server.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", server.Validate)

		r.Get("/runs", server.ListRuns)
		r.Post("/runs", server.CreateRun)
		r.Get("/runs/{id}", server.GetRun)
		r.Delete("/runs/{id}", server.DeleteRun)

		r.Get("/sessions", server.ListSessions)
		r.Post("/sessions", server.CreateSession)
		r.Get("/sessions/{id}", server.GetSession)
		r.Delete("/sessions/{id}", server.DeleteSession)
		r.Post("/sessions/{id}/step", server.StepSession)
		r.Post("/sessions/{id}/undo", server.UndoSession)
		r.Post("/sessions/{id}/run", server.RunSession)
		r.Post("/sessions/{id}/finish", server.FinishSession)

		r.Get("/machines", server.ListMachines)
		r.Get("/machines/{name}", server.GetMachine)
		r.Get("/machines/{name}/graph", server.GetMachineGraph)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Turing API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// ValidationIssue is one violation reported by POST /v1/validate.
type ValidationIssue struct {
	Kind    string `json:"kind,omitempty"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationResponse is the body of POST /v1/validate.
type ValidationResponse struct {
	Valid       bool              `json:"valid"`
	Name        string            `json:"name,omitempty"`
	States      int               `json:"states,omitempty"`
	Transitions int               `json:"transitions,omitempty"`
	Errors      []ValidationIssue `json:"errors,omitempty"`
}

// RunRequest is the body of POST /v1/runs.
type RunRequest struct {
	Machine    string          `json:"machine,omitempty"`
	Definition json.RawMessage `json:"definition,omitempty"`
	Input      string          `json:"input"`
	StepLimit  int             `json:"step_limit,omitempty"`
}

// RunResponse is a stored or fresh run with its output spelled out.
type RunResponse struct {
	*domain.Record
	Output string `json:"output"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Position *int   `json:"position,omitempty"`
	Symbol   string `json:"symbol,omitempty"`
}

// Validate handles the POST /v1/validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	def, err := file.Parse(data, file.FormatJSON)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := machine.New(def)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, validationFailure(err))
		return
	}

	s.writeJSON(w, http.StatusOK, ValidationResponse{
		Valid:       true,
		Name:        m.Name(),
		States:      len(m.States()),
		Transitions: m.Table().Len(),
	})
}

// CreateRun handles the POST /v1/runs request.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	body, m, ok := s.decodeRunRequest(w, r)
	if !ok {
		return
	}

	eng := s.Engine.Derive(turing.WithStepLimit(body.StepLimit))
	record, err := eng.Run(r.Context(), m, body.Input)
	if err != nil {
		s.writeRunError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, present(record, traceWanted(r)))
}

// decodeRunRequest reads a RunRequest and compiles the machine it names.
// The returned StepLimit is the effective limit for the run.
// On failure the response has been written.
func (s *Server) decodeRunRequest(w http.ResponseWriter, r *http.Request) (RunRequest, *machine.Machine, bool) {
	var body RunRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return body, nil, false
	}

	limit, err := s.Engine.RequestLimit(body.StepLimit, s.MaxStepLimit)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return body, nil, false
	}
	body.StepLimit = limit

	def, status, err := s.resolveDefinition(r, body)
	if err != nil {
		s.writeError(w, status, err)
		return body, nil, false
	}

	m, err := machine.New(def)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, validationFailure(err))
		return body, nil, false
	}
	return body, m, true
}

// writeRunError maps errors from starting or running a machine.
func (s *Server) writeRunError(w http.ResponseWriter, err error) {
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		pos := inputErr.Position
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Position: &pos, Symbol: string(inputErr.Symbol)})
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) resolveDefinition(r *http.Request, body RunRequest) (domain.Definition, int, error) {
	if len(body.Definition) > 0 && string(body.Definition) != "null" {
		def, err := file.Parse(body.Definition, file.FormatJSON)
		if err != nil {
			return domain.Definition{}, http.StatusBadRequest, err
		}
		return def, 0, nil
	}

	if body.Machine == "" {
		return domain.Definition{}, http.StatusBadRequest, errors.New("either machine or definition is required")
	}
	if s.Catalog == nil {
		return domain.Definition{}, http.StatusNotFound, fmt.Errorf("%w: %q", domain.ErrMachineNotFound, body.Machine)
	}

	def, err := s.Catalog.Get(r.Context(), body.Machine)
	if err != nil {
		if errors.Is(err, domain.ErrMachineNotFound) {
			return domain.Definition{}, http.StatusNotFound, err
		}
		return domain.Definition{}, http.StatusInternalServerError, err
	}
	return def, 0, nil
}

// ListRuns handles the GET /v1/runs request.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	store := s.Engine.Store()
	if store == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("no run store configured"))
		return
	}

	ids, err := store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"runs": ids})
}

// GetRun handles the GET /v1/runs/{id} request.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	store := s.Engine.Store()
	if store == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("no run store configured"))
		return
	}

	record, err := store.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, present(record, traceWanted(r)))
}

// DeleteRun handles the DELETE /v1/runs/{id} request.
func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	store := s.Engine.Store()
	if store == nil {
		s.writeError(w, http.StatusNotImplemented, errors.New("no run store configured"))
		return
	}

	if err := store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMachines handles the GET /v1/machines request.
func (s *Server) ListMachines(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	if s.Catalog != nil {
		listed, err := s.Catalog.List(r.Context())
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		names = append(names, listed...)
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"machines": names})
}

// GetMachine handles the GET /v1/machines/{name} request.
func (s *Server) GetMachine(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookupMachine(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// GetMachineGraph handles the GET /v1/machines/{name}/graph request.
func (s *Server) GetMachineGraph(w http.ResponseWriter, r *http.Request) {
	def, ok := s.lookupMachine(w, r)
	if !ok {
		return
	}

	m, err := machine.New(def)
	if err != nil {
		s.writeJSON(w, http.StatusUnprocessableEntity, validationFailure(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(m, nil))
}

func (s *Server) lookupMachine(w http.ResponseWriter, r *http.Request) (domain.Definition, bool) {
	name := chi.URLParam(r, "name")
	if s.Catalog == nil {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", domain.ErrMachineNotFound, name))
		return domain.Definition{}, false
	}

	def, err := s.Catalog.Get(r.Context(), name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrMachineNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err)
		return domain.Definition{}, false
	}
	return def, true
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if spec, err := Spec(r.Context()); err == nil && spec.Info != nil {
		apiVersion = spec.Info.Version
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":         "turing-http",
		"version":     strings.TrimSpace(turing.Version),
		"api_version": apiVersion,
	})
}

func validationFailure(err error) ValidationResponse {
	resp := ValidationResponse{Valid: false}
	errs := domain.ValidationErrors(err)
	if len(errs) == 0 {
		errs = []error{err}
	}
	for _, e := range errs {
		issue := ValidationIssue{Message: e.Error()}
		var defErr *domain.DefinitionError
		if errors.As(e, &defErr) {
			issue.Kind = string(defErr.Kind)
			issue.Field = defErr.Field
			issue.Value = defErr.Value
		}
		resp.Errors = append(resp.Errors, issue)
	}
	return resp
}

func present(record *domain.Record, withTrace bool) RunResponse {
	out := RunResponse{Record: record, Output: record.Result.Output()}
	if !withTrace {
		clone := record.Clone()
		clone.Result.Trace = nil
		out.Record = clone
	}
	return out
}

func traceWanted(r *http.Request) bool {
	raw := r.URL.Query().Get("trace")
	if raw == "" {
		return true
	}
	want, err := strconv.ParseBool(raw)
	return err != nil || want
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "status", status, "error", err)
	} else {
		s.Logger.Debug("request rejected", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
