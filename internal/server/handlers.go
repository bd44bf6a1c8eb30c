// Package server exposes the passport services over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	"github.com/rohankatakam/dppgraph/internal/assistant"
	"github.com/rohankatakam/dppgraph/internal/errors"
	"github.com/rohankatakam/dppgraph/internal/graph"
	"github.com/rohankatakam/dppgraph/internal/passport"
	"github.com/rohankatakam/dppgraph/internal/risk"
)

const (
	maxIDLength   = 200
	maxChatBodyKB = 64

	// spoken by the voice client when a chat request fails
	chatFallbackResponse = "I'm having trouble processing that request. Please try again."
)

// HealthFunc reports store connectivity
type HealthFunc func(ctx context.Context) graph.HealthStatus

// Handler serves the graph and assistant endpoints
type Handler struct {
	passport  *passport.Service
	risks     *risk.Analyzer
	assistant *assistant.Assistant
	health    HealthFunc
	logger    *slog.Logger
}

// NewHandler creates a handler. assistant may be nil, in which case the chat
// endpoint reports that no LLM is configured.
func NewHandler(p *passport.Service, r *risk.Analyzer, a *assistant.Assistant, health HealthFunc) *Handler {
	return &Handler{
		passport:  p,
		risks:     r,
		assistant: a,
		health:    health,
		logger:    slog.Default().With("component", "server"),
	}
}

type errorResponse struct {
	Error    string `json:"error"`
	Response string `json:"response,omitempty"`
	Details  string `json:"details,omitempty"`
}

// BuildingGraph handles GET /api/graph/building/{id}
func (h *Handler) BuildingGraph(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid building id", err)
		return
	}

	query := r.URL.Query()
	depth := passport.ParseDepth(query.Get("depth"))
	view := passport.ParseView(query.Get("view"))

	sub, err := h.passport.FetchBuildingGraph(r.Context(), id, depth, view)
	if err != nil {
		h.fail(w, r, "Failed to fetch building graph", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// ExpandNode handles GET /api/graph/expand/{id}
func (h *Handler) ExpandNode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid node id", err)
		return
	}

	sub, err := h.passport.ExpandNode(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to expand node", err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Carbon handles GET /api/graph/carbon/{id}
func (h *Handler) Carbon(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid building id", err)
		return
	}

	breakdown, err := h.passport.CarbonBreakdown(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to fetch carbon data", err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// Risks handles GET /api/graph/risks/{id}
func (h *Handler) Risks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "Invalid building id", err)
		return
	}

	report, err := h.risks.Analyze(r.Context(), id)
	if err != nil {
		h.fail(w, r, "Failed to fetch risk data", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type chatRequest struct {
	Message *string `json:"message"`
}

// Chat handles POST /api/voice/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, maxChatBodyKB<<10)
	if err := json.NewDecoder(body).Decode(&req); err != nil && err != io.EOF {
		h.fail(w, r, "Invalid request body", errors.ValidationErrorf("malformed JSON: %v", err))
		return
	}
	if req.Message == nil || strings.TrimSpace(*req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Message is required"})
		return
	}
	if h.assistant == nil {
		h.failChat(w, r, errors.ConfigError("no LLM provider configured"))
		return
	}

	answer, err := h.assistant.Chat(r.Context(), *req.Message)
	if err != nil {
		h.failChat(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.health(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
		h.logger.Warn("health check failed", "message", status.Message)
	}
	writeJSON(w, code, status)
}

// fail logs err and writes the error body with the status for its type
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.respondError(w, r, errorResponse{Error: message}, err)
}

// failChat adds the fallback reply the voice client speaks on failure
func (h *Handler) failChat(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: "Failed to process voice chat"}
	if errors.HTTPStatus(err) >= http.StatusInternalServerError {
		resp.Response = chatFallbackResponse
	}
	h.respondError(w, r, resp, err)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, resp errorResponse, err error) {
	status := errors.HTTPStatus(err)
	resp.Details = err.Error()

	var e *errors.Error
	if errors.As(err, &e) {
		resp.Details = e.Details()
		if resp.Details == "" {
			resp.Details = e.Message
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(resp.Error, "path", r.URL.Path, "error", err)
		if e != nil {
			h.logger.Debug("error detail", "path", r.URL.Path, "detail", e.DetailedString())
		}
	} else {
		h.logger.Debug(resp.Error, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, resp)
}

// pathID extracts and validates the {id} URL parameter. chi matches against
// the raw path only when the request used a non-canonical escape such as
// %2F, and the parameter is still escaped in that case.
func pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			return "", errors.ValidationErrorf("id is not valid URL encoding")
		}
		id = unescaped
	}
	id = strings.TrimSpace(id)
	switch {
	case id == "":
		return "", errors.ValidationError("id is required")
	case len(id) > maxIDLength:
		return "", errors.ValidationError("id exceeds " + strconv.Itoa(maxIDLength) + " characters")
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		return "", errors.ValidationError("id contains control characters")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
