package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"TRIPPLANNER_BACK-END/internal/dto"
)

// maxJSONBody caps request bodies decoded by DecodeJSONRequest.
const maxJSONBody = 1 << 20

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes the standard error envelope
func WriteErrorResponse(w http.ResponseWriter, status int, errMsg, message string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errMsg, Message: message})
}

// WriteValidationError writes a 400 with per-field messages
func WriteValidationError(w http.ResponseWriter, fields map[string]string) {
	WriteJSONResponse(w, http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Validation error",
		Message: "One or more fields are invalid",
		Fields:  fields,
	})
}

// DecodeJSONRequest decodes the body into dst and writes a 400 on failure.
// Callers return immediately when it reports an error.
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := err.Error()
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is empty"
		case errors.As(err, &syntaxErr):
			msg = fmt.Sprintf("malformed JSON at position %d", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			msg = fmt.Sprintf("field %q must be %s", typeErr.Field, typeErr.Type)
		case strings.HasPrefix(msg, "json: unknown field "):
			msg = "unknown field " + strings.TrimPrefix(msg, "json: unknown field ")
		}
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", msg)
		return err
	}
	return nil
}
