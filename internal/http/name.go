package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/galbox/galconsole/internal/apierror"
	"github.com/galbox/galconsole/internal/domain"
)

type nameResponse struct {
	Success bool `json:"success"`
	domain.Name
}

func (s *Server) AddNameRoutes() {
	s.r.Get("/api/name", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.namer.GetName())
	})

	s.r.Post("/api/name", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierror.BadRequest(w, "invalid request body")
			return
		}
		n, err := s.namer.SaveName(req.Name)
		if errors.Is(err, domain.ErrNameEmpty) || errors.Is(err, domain.ErrNameTooLong) {
			apierror.BadRequest(w, err.Error())
			return
		}
		if err != nil {
			logFailure(r, err, "failed to save name")
			apierror.InternalError(w, "failed to save name")
			return
		}
		writeJSON(w, http.StatusOK, nameResponse{Success: true, Name: n})
	})
}
