// ABOUTME: chi handler that serves the record protocol on top of any Client
// ABOUTME: Used by the backend command to expose the local store and by client tests
package apper

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandlerConfig sets the credentials the handler requires. Empty values
// disable the check.
type HandlerConfig struct {
	ProjectID string
	PublicKey string
}

type handler struct {
	client Client
	cfg    HandlerConfig
	logger *zap.Logger
}

// NewHandler exposes client over HTTP using the same paths HTTPClient calls.
func NewHandler(client Client, cfg HandlerConfig, logger *zap.Logger) http.Handler {
	h := &handler{client: client, cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(h.authenticate)
	r.Route("/v1/tables/{table}", func(r chi.Router) {
		r.Post("/fetch", h.fetch)
		r.Post("/get", h.get)
		r.Post("/records", h.create)
		r.Put("/records", h.update)
		r.Delete("/records", h.remove)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.ProjectID != "" && r.Header.Get(HeaderProjectID) != h.cfg.ProjectID {
			writeError(w, http.StatusUnauthorized, "unknown project")
			return
		}
		if h.cfg.PublicKey != "" && r.Header.Get(HeaderPublicKey) != h.cfg.PublicKey {
			writeError(w, http.StatusUnauthorized, "invalid public key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("apper handler: client call failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, http.StatusBadGateway, err.Error())
}

func (h *handler) fetch(w http.ResponseWriter, r *http.Request) {
	var q Query
	if err := decodeJSON(r, &q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}
	resp, err := h.client.FetchRecords(r.Context(), chi.URLParam(r, "table"), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	var req getRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	resp, err := h.client.GetRecordByID(r.Context(), chi.URLParam(r, "table"), req.ID, req.Query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var req RecordsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid records: "+err.Error())
		return
	}
	resp, err := h.client.CreateRecord(r.Context(), chi.URLParam(r, "table"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	var req RecordsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid records: "+err.Error())
		return
	}
	resp, err := h.client.UpdateRecord(r.Context(), chi.URLParam(r, "table"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid ids: "+err.Error())
		return
	}
	resp, err := h.client.DeleteRecord(r.Context(), chi.URLParam(r, "table"), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
