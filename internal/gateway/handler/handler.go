// Package handler serves the REST surface of the ledger.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"

	"ecoledger/internal/gateway/entity"
	"ecoledger/internal/gateway/handler/dto"
	"ecoledger/internal/util/jsonutil"

	"github.com/rs/zerolog"
)

const (
	genericServerError = "Server error"
	maxBodyBytes       = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	raw, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		http.Error(w, genericServerError, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	err := jsonutil.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return entity.Invalid("%s must be %s", typeErr.Field, kindName(typeErr.Type))
	}
	return entity.Invalid("request body must be a JSON object")
}

func kindName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid value"
	}
}

// classify maps a service error to a status and a client-safe message.
// Store failures and unknown errors are logged with their cause and reported
// generically.
func classify(log zerolog.Logger, r *http.Request, err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrUnknownCategory):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	default:
		log.Error().Err(err).
			Str("op", entity.Op(err)).
			Str("path", r.URL.Path).
			Msg("request failed")
		return http.StatusInternalServerError, genericServerError
	}
}

// writeError renders {error} bodies used by the carbon routes.
func writeError(log zerolog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(log, r, err)
	writeJSON(w, status, dto.ErrorResponse{Error: msg})
}

// writeFailure renders {success:false, message} bodies used by the location routes.
func writeFailure(log zerolog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(log, r, err)
	ok := false
	writeJSON(w, status, dto.ErrorResponse{Success: &ok, Message: msg})
}

func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "OK", Message: "Server is running"})
}
