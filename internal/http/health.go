package http

import (
	"net/http"

	"github.com/galbox/galconsole/internal/metrics"
)

type healthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis"`
}

func (s *Server) AddHealthRoutes() {
	s.r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Redis: "disabled"}
		status := http.StatusOK
		if p, ok := s.mailbox.(Pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				logFailure(r, err, "redis ping failed")
				resp.Status = "degraded"
				resp.Redis = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				resp.Redis = "ok"
			}
		}
		writeJSON(w, status, resp)
	})

	s.r.Handle("/metrics", metrics.Handler())
}
