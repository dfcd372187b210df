package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hugh/docvault/internal/api/dto"
	"github.com/hugh/docvault/internal/apperr"
)

func writeError(w http.ResponseWriter, err error) {
	e := apperr.As(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Kind.HTTPStatus())
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: e.Message})
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{Error: msg})
}
