package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/galbox/galconsole/internal/apierror"
	"github.com/galbox/galconsole/internal/probe"
)

const noWiFiMessage = "No WiFi connection found"

type connectRequest struct {
	SSID     string `json:"ssid"`
	Password string `json:"password"`
}

type connectResponse struct {
	Success bool `json:"success"`
	probe.ConnectResult
}

func (s *Server) AddWiFiRoutes() {
	s.r.Get("/api/wifi", func(w http.ResponseWriter, r *http.Request) {
		wifi, err := s.prober.WiFi(r.Context())
		if errors.Is(err, probe.ErrNoMatch) {
			apierror.NoMatch(w, noWiFiMessage)
			return
		}
		if err != nil {
			logFailure(r, err, "wifi lookup failed")
			apierror.InternalError(w, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, wifi)
	})

	s.r.Post("/api/wifi/connect", func(w http.ResponseWriter, r *http.Request) {
		var req connectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apierror.BadRequest(w, "invalid request body")
			return
		}
		res, err := s.prober.ConnectWiFi(r.Context(), req.SSID, req.Password)
		if errors.Is(err, probe.ErrMissingSSID) {
			apierror.BadRequest(w, err.Error())
			return
		}
		if err != nil {
			logFailure(r, err, "wifi connect failed")
			apierror.Failed(w, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, connectResponse{Success: true, ConnectResult: res})
	})

	s.r.Get("/api/network/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.prober.NetworkStatus(r.Context()))
	})

	s.r.Get("/api/identify", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.prober.Identify(r.Context()))
	})

	s.r.Get("/galbox", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(s.cfg.DiscoveryToken))
	})
}
