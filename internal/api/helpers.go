package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/joseph-ayodele/awb-extractor/internal/common"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.LoggerFromContext(r.Context(), nil).Error("encode failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func writeData(w http.ResponseWriter, r *http.Request, v any) {
	writeJSON(w, r, http.StatusOK, envelope{Data: v})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, envelope{Error: msg})
}

// writeAppError maps err onto its HTTP status and a client-safe message.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		common.LoggerFromContext(r.Context(), nil).Error("request failed", "error", err)
	}
	writeError(w, r, status, common.PublicMessage(err))
}

// decodeJSON reads exactly one JSON object into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return common.NewAppError("BODY_TOO_LARGE", "request body too large", common.ErrInvalidInput)
		}
		return common.NewAppError("INVALID_JSON", "invalid json body", common.ErrInvalidInput)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return common.NewAppError("INVALID_JSON", "body must contain only one JSON object", common.ErrInvalidInput)
	}
	return nil
}
