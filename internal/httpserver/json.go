package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/geoquest/internal/game"
	"github.com/robalobadob/geoquest/internal/selection"
	"github.com/robalobadob/geoquest/internal/store"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeServiceError maps domain errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidMode), errors.Is(err, game.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrNoUser):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, game.ErrNoQuestionsLeft),
		errors.Is(err, game.ErrQuestionPending),
		errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, selection.ErrSelectionUnavailable):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("selection unavailable")
		writeError(w, http.StatusServiceUnavailable, "location selection unavailable, try again")
	case errors.Is(err, selection.ErrCatalogEmpty):
		log.Error().Err(err).Str("path", r.URL.Path).Msg("catalog empty")
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}
