// ABOUTME: HTTP server exposing entity lists, records, writes and CSV exports as JSON
// ABOUTME: Also serves Prometheus metrics and logs every request through zap
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/harperreed/crmdesk/app"
	"github.com/harperreed/crmdesk/form"
	"github.com/harperreed/crmdesk/listview"
	"github.com/harperreed/crmdesk/models"
	"github.com/harperreed/crmdesk/observability"
	"github.com/harperreed/crmdesk/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var errBadRequest = errors.New("bad request")

type Server struct {
	ws      *app.Workspace
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewServer(ws *app.Workspace, metrics *observability.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{ws: ws, metrics: metrics, logger: logger.Named("web")}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/api", s.handleEntities)
	r.Route("/api/{entity}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/export", s.handleExport)
		r.Get("/{id}", s.handleShow)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps the domain error taxonomy onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Error: err.Error()}

	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body.Fields = verr.Fields
	case errors.Is(err, app.ErrUnknownEntity),
		errors.Is(err, services.ErrNotFound),
		errors.Is(err, listview.ErrUnknownRecord):
		status = http.StatusNotFound
	case errors.Is(err, listview.ErrNothingToExport):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, form.ErrUnknownField),
		errors.Is(err, listview.ErrUnknownFilter):
		status = http.StatusBadRequest
	case services.IsKind(err, services.KindTransport):
		status = http.StatusBadGateway
	case services.IsKind(err, services.KindRejected), services.IsKind(err, services.KindRow):
		status = http.StatusUnprocessableEntity
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, body)
}

func (s *Server) entity(r *http.Request) (*app.Entity, error) {
	return s.ws.Entity(chi.URLParam(r, "entity"))
}

func parseID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", services.ErrNotFound, raw)
	}
	return id, nil
}

type entityInfo struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

func (s *Server) handleEntities(w http.ResponseWriter, _ *http.Request) {
	var out []entityInfo
	for _, e := range s.ws.Entities() {
		out = append(out, entityInfo{Key: e.Key, Title: e.Title})
	}
	writeJSON(w, http.StatusOK, out)
}

// loadTable builds a per-request list view so concurrent requests never
// share search or filter state.
func (s *Server) loadTable(r *http.Request) (listview.Table, error) {
	e, err := s.entity(r)
	if err != nil {
		return nil, err
	}
	t := e.NewTable()
	if err := t.Load(r.Context()); err != nil {
		return nil, err
	}
	return t, nil
}

type listBody struct {
	Entity  string            `json:"entity"`
	State   string            `json:"state"`
	Columns []string          `json:"columns"`
	Rows    []listview.Row    `json:"rows"`
	Shown   int               `json:"shown"`
	Total   int               `json:"total"`
	Filters map[string]string `json:"filters,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTable(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := r.URL.Query()
	t.SetSearch(q.Get("q"))
	filters := map[string]string{}
	for _, key := range []string{"status", "priority"} {
		if v := q.Get(key); v != "" {
			if err := t.SetFilter(key, v); err != nil {
				s.writeError(w, err)
				return
			}
			filters[key] = v
		}
	}

	body := listBody{Entity: t.Plural(), State: t.State().String(), Rows: t.Rows(), Filters: filters}
	for _, c := range t.Columns() {
		body.Columns = append(body.Columns, c.Title)
	}
	if body.Rows == nil {
		body.Rows = []listview.Row{}
	}
	body.Shown, body.Total = t.Count()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	e, err := s.entity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rec, err := e.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// decodeValues reads a flat JSON object into form values.
func decodeValues(r *http.Request) (map[string]string, error) {
	defer r.Body.Close()
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = v
		case float64:
			values[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			values[k] = strconv.FormatBool(v)
		default:
			return nil, fmt.Errorf("%w: %s must be a string, number or boolean", errBadRequest, k)
		}
	}
	return values, nil
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, id int) {
	e, err := s.entity(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	values, err := decodeValues(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	saved, err := e.Save(r.Context(), id, values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	rec, err := e.Get(r.Context(), saved)
	if err != nil {
		writeJSON(w, status, map[string]int{"id": saved})
		return
	}
	writeJSON(w, status, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.save(w, r, 0)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.save(w, r, id)
}

// handleDelete confirms implicitly: the HTTP verb is the confirmation.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	t, err := s.loadTable(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := t.Delete(r.Context(), id, nil); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	t, err := s.loadTable(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	file, err := t.Export()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("X-Record-Count", strconv.Itoa(file.Count))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
