package http

import (
	"net/http"

	"github.com/galbox/galconsole/internal/apierror"
	"github.com/galbox/galconsole/internal/probe"
	"github.com/go-chi/chi/v5"
)

const storageUnavailableMessage = "Unable to read storage information"

type historyResponse struct {
	Current Snapshot       `json:"current"`
	History []HistoryPoint `json:"history"`
}

type modelsResponse struct {
	Success bool          `json:"success"`
	Models  []probe.Model `json:"models"`
}

func (s *Server) AddSystemRoutes() {
	s.r.Route("/api/system", func(r chi.Router) {
		r.Get("/ram", func(w http.ResponseWriter, r *http.Request) {
			mem, err := s.prober.Memory(r.Context())
			if err != nil {
				logFailure(r, err, "memory lookup failed")
				apierror.InternalError(w, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, mem)
		})

		r.Get("/storage", func(w http.ResponseWriter, r *http.Request) {
			st, err := s.prober.Storage(r.Context())
			if err != nil {
				logFailure(r, err, "storage lookup failed")
				apierror.InternalError(w, storageUnavailableMessage)
				return
			}
			writeJSON(w, http.StatusOK, st)
		})

		r.Get("/cpu", func(w http.ResponseWriter, r *http.Request) {
			c, err := s.prober.CPU(r.Context())
			if err != nil {
				logFailure(r, err, "cpu lookup failed")
				apierror.InternalError(w, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, c)
		})

		r.Get("/docker", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, s.prober.Docker(r.Context()))
		})

		r.Get("/elasticsearch", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, s.prober.Elasticsearch(r.Context()))
		})

		r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, historyResponse{
				Current: s.monitor.Snapshot(),
				History: s.monitor.History(),
			})
		})
	})

	s.r.Get("/api/models", func(w http.ResponseWriter, r *http.Request) {
		models, err := s.prober.Models(r.Context())
		if err != nil {
			logFailure(r, err, "ollama list failed")
			apierror.Failed(w, err.Error())
			return
		}
		if models == nil {
			models = []probe.Model{}
		}
		writeJSON(w, http.StatusOK, modelsResponse{Success: true, Models: models})
	})
}
