package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/zatekoja/limsgateway/internal/infrastructure/observability"
	"github.com/zatekoja/limsgateway/internal/query/keys"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

// maxBodyBytes bounds request bodies the gateway decodes
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string `json:"error"`
	Type   string `json:"type,omitempty"`
	Detail string `json:"detail,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message})
}

// respondWithAppError maps err onto the gateway response. Upstream 4xx
// statuses pass through so the UI can show validation errors inline.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if errors.Is(err, keys.ErrEmptyID) {
		status = http.StatusBadRequest
	}

	if status >= http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg("Request failed")
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		if status == http.StatusBadRequest {
			respondWithError(w, status, err.Error())
			return
		}
		respondWithError(w, status, "internal server error")
		return
	}

	body := errorResponse{Error: appErr.Message, Type: string(appErr.Type)}
	if appErr.Type == apperrors.ErrorTypeValidation {
		body.Detail = appErr.Detail
	}
	if status >= http.StatusInternalServerError {
		body.Error = "upstream request failed"
		if appErr.Type == apperrors.ErrorTypeInternal {
			body.Error = "internal server error"
		}
	}
	respondWithJSON(w, status, body)
}

// decodeBody reads a JSON request body into dst
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.NewValidationError("request body is required")
		}
		return apperrors.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}
