package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"recipebook/common"
	"recipebook/logging"
)

type M map[string]interface{}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// StatusFor maps an error kind from package common to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithAppError writes err as {"error": msg}. Internal errors are logged
// and replaced with a generic message.
func RespondWithAppError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	code := StatusFor(err)
	msg := common.Message(err)
	switch {
	case code == http.StatusInternalServerError:
		logging.OrNop(log).Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "Internal server error"
	case msg == "":
		msg = http.StatusText(code)
	}
	RespondWithError(w, code, msg)
}
