package apierror

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Error   string `json:"error"`
	Success *bool  `json:"success,omitempty"`
}

func Write(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// NoMatch answers 200 with an error body; the command ran but produced nothing usable.
func NoMatch(w http.ResponseWriter, message string) {
	Write(w, http.StatusOK, Response{Error: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadRequest, Response{Error: message})
}

func InternalError(w http.ResponseWriter, message string) {
	Write(w, http.StatusInternalServerError, Response{Error: message})
}

// Failed is InternalError for endpoints whose body carries a success flag.
func Failed(w http.ResponseWriter, message string) {
	ok := false
	Write(w, http.StatusInternalServerError, Response{Error: message, Success: &ok})
}
