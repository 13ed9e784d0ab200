package admin

import (
	"embed"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sqliteopus/opus/cfg"
	"github.com/sqliteopus/opus/db"
)

//go:embed ui.html
var uiHTML embed.FS

// writeDenied is the fixed message returned when a mutation is rejected by
// the write gate. The statement never reaches the database.
const writeDenied = "write queries are not allowed"

// Handlers serves the console API against a single connection holder
type Handlers struct {
	holder *db.Holder
	config *cfg.Configuration
}

// NewHandlers creates a new Handlers instance
func NewHandlers(holder *db.Holder, config *cfg.Configuration) *Handlers {
	return &Handlers{
		holder: holder,
		config: config,
	}
}

// ServeUI serves the embedded console HTML page
func (h *Handlers) ServeUI(w http.ResponseWriter, r *http.Request) {
	data, err := uiHTML.ReadFile("ui.html")
	if err != nil {
		http.Error(w, "Failed to load console UI", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

type connectRequest struct {
	DBPath string `json:"db_path"`
}

// handleConnect handles POST /api/connect
func (h *Handlers) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DBPath == "" {
		writeErrorResponse(w, http.StatusBadRequest, "database path required")
		return
	}

	if err := h.holder.Connect(req.DBPath); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSONResponse(w, map[string]interface{}{
		"success": true,
		"message": "connected",
		"tables":  h.holder.Tables(),
	})
}

// handleDisconnect handles POST /api/disconnect. Idempotent.
func (h *Handlers) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	h.holder.Disconnect()
	writeJSONResponse(w, map[string]interface{}{
		"success": true,
		"message": "disconnected",
	})
}

// handleStatus handles GET /api/status
func (h *Handlers) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, map[string]interface{}{
		"connected": h.holder.IsConnected(),
		"db_path":   h.holder.Path(),
		"tables":    h.holder.Tables(),
	})
}

// handleTables handles GET /api/tables
func (h *Handlers) handleTables(w http.ResponseWriter, r *http.Request) {
	if !h.holder.IsConnected() {
		writeErrorResponse(w, http.StatusBadRequest, "not connected")
		return
	}

	writeJSONResponse(w, map[string]interface{}{
		"success": true,
		"tables":  h.holder.Tables(),
	})
}

// handleTable handles GET /api/table/{name}
func (h *Handlers) handleTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	info, err := h.holder.TableInfo(name)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotConnected):
			writeErrorResponse(w, http.StatusBadRequest, "not connected")
		case errors.Is(err, db.ErrTableNotFound):
			writeErrorResponse(w, http.StatusNotFound, "table not found")
		case errors.Is(err, db.ErrUnsafeIdentifier):
			writeErrorResponse(w, http.StatusBadRequest, "invalid table name")
		default:
			writeErrorResponse(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSONResponse(w, map[string]interface{}{
		"success": true,
		"table":   info,
	})
}

type queryRequest struct {
	Query string `json:"query"`
	// Pointers so "pagination requested" is distinguishable from zero values
	Page    *int `json:"page"`
	PerPage *int `json:"per_page"`
}

// handleQuery handles POST /api/query. The write gate runs before any
// execution is attempted; a disallowed mutation never reaches the database.
func (h *Handlers) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !h.holder.IsConnected() {
		writeErrorResponse(w, http.StatusBadRequest, "not connected")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeErrorResponse(w, http.StatusBadRequest, "query required")
		return
	}

	code := db.Classify(req.Query)
	if code.IsMutation() && !h.config.Query.AllowWrite {
		log.Warn().Str("type", code.String()).Msg("Write query rejected by policy")
		writeErrorResponse(w, http.StatusForbidden, writeDenied)
		return
	}

	if req.Page != nil || req.PerPage != nil {
		page := 1
		if req.Page != nil {
			page = *req.Page
		}
		perPage := h.config.Query.DefaultPageSize
		if req.PerPage != nil {
			perPage = *req.PerPage
		}
		result := h.holder.ExecutePaginated(req.Query, page, perPage, h.config.Query.MaxResults)
		writeJSONResponse(w, result)
		return
	}

	query := req.Query
	if code == db.StatementSelect {
		query = db.ApplyDefaultLimit(query, h.config.Query.MaxResults)
	}
	writeJSONResponse(w, h.holder.Execute(query))
}

// writeJSONResponse writes a JSON response with status 200
func writeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes a failure envelope with the given status
func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	response := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
	}
}
