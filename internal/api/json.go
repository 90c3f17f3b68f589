package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/foldernotes/internal/apperr"
)

// Kinds reported for failures that are not domain errors.
const (
	kindBadRequest   = "bad_request"
	kindConflict     = "conflict"
	kindUnauthorized = "unauthorized"
	kindInternal     = "internal"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error string `json:"error" validate:"required"`
	Kind  string `json:"kind" validate:"required"`
}

func errorBody(msg, kind string) errResponse {
	return errResponse{Error: msg, Kind: kind}
}

// writeError maps err to a status code. Domain errors keep their message;
// anything unexpected is logged and reported as an internal error.
func writeError(w http.ResponseWriter, op string, err error) {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		status := http.StatusBadRequest
		switch {
		case ae.Kind.NotFound():
			status = http.StatusNotFound
		case ae.Kind.AlreadyExists():
			status = http.StatusConflict
		}
		writeJSON(w, status, errorBody(ae.Error(), ae.Kind.String()))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch", kindConflict))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error", kindInternal))
	}
}
