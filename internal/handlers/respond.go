package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/photofeed/server/internal/models"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

// decodeJSON reads a JSON body into v. An empty body is not an error when
// optional is true.
func decodeJSON(r *http.Request, v interface{}, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return io.EOF
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if optional && errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
