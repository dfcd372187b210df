package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/docvault/internal/api/dto"
	"github.com/hugh/docvault/internal/api/validation"
	"github.com/hugh/docvault/internal/apperr"
)

var errInvalidBody = apperr.Validation("Invalid request body")

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its status code. Internal errors are logged and
// reported; their detail never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInternal {
		slog.Default().ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		sentry.CaptureException(err)
	}
	writeJSON(w, e.Kind.HTTPStatus(), dto.ErrorResponse{Error: e.Message, Details: e.Fields})
}

// decodeAndValidate decodes a JSON body into v and checks its validate tags.
// order picks which field's message leads when several fail.
func decodeAndValidate(r *http.Request, v interface{}, order ...string) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidBody
	}

	fields := validation.Struct(v)
	if len(fields) == 0 {
		return nil
	}

	first := "Validation failed"
	for _, key := range order {
		if msg, ok := fields[key]; ok {
			first = msg
			break
		}
	}
	return apperr.ValidationFields(first, fields)
}

func pathID(r *http.Request, notFound error) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}
