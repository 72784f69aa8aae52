package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/feebook/feebook/internal"
	"github.com/feebook/feebook/pkg/logger"
)

// BaseHandler carries the response helpers every HTTP handler embeds.
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// apiResponse is the uniform REST envelope: success mirrors the HTTP
// outcome, data carries the payload, error carries the failure.
type apiResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data any) {
	h.writeEnvelope(w, status, apiResponse{Success: true, Data: data})
}

func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.writeEnvelope(w, status, apiResponse{Success: false, Error: message})
}

// HandleError maps service errors onto the HTTP error contract. AppErrors
// carry their own status and serialize with type, code and message; anything
// else is an opaque 500.
func (h *BaseHandler) HandleError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("unhandled error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		h.Logger.Error("request failed", "status", appErr.StatusCode, "error", err)
	} else {
		h.Logger.Warn("request rejected", "status", appErr.StatusCode, "error", err)
	}
	h.writeEnvelope(w, appErr.StatusCode, apiResponse{Success: false, Error: appErr})
}

func (h *BaseHandler) writeEnvelope(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// ExtractTokenFromHeader returns the bearer token from the Authorization
// header, or "" when the header is absent or not a bearer scheme.
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return token
}
