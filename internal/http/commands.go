package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/galbox/galconsole/internal/apierror"
	"github.com/galbox/galconsole/internal/mailbox"
	"github.com/galbox/galconsole/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxModelLength = 200

type commandResponse struct {
	Success bool          `json:"success"`
	Command mailbox.Entry `json:"command"`
}

func (s *Server) AddCommandRoutes() {
	s.r.Post("/api/command/{kind}", s.handleCommand)

	s.r.Get("/api/command/recent", func(w http.ResponseWriter, r *http.Request) {
		recent, err := s.mailbox.Recent(r.Context())
		if err != nil {
			logFailure(r, err, "mailbox read failed")
			apierror.InternalError(w, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, recent)
	})
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	kind, err := mailbox.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		apierror.Write(w, http.StatusNotFound, apierror.Response{Error: err.Error()})
		return
	}
	payload, err := decodePayload(r.Body)
	if err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}
	if err := validateCommand(kind, payload); err != nil {
		apierror.BadRequest(w, err.Error())
		return
	}

	entry, err := s.mailbox.Put(r.Context(), kind, payload)
	if err != nil {
		logFailure(r, err, "mailbox write failed")
		apierror.InternalError(w, err.Error())
		return
	}
	metrics.RecordMailboxPut(string(kind))
	log.Debug().
		Str("kind", string(kind)).
		Str("timestamp", entry.Timestamp()).
		Msg("command stored")
	writeJSON(w, http.StatusOK, commandResponse{Success: true, Command: entry})
}

// decodePayload reads a JSON object. An empty body is an empty object.
func decodePayload(body io.Reader) (map[string]any, error) {
	payload := map[string]any{}
	err := json.NewDecoder(body).Decode(&payload)
	if errors.Is(err, io.EOF) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if payload == nil {
		return map[string]any{}, nil
	}
	return payload, nil
}

func validateCommand(kind mailbox.Kind, payload map[string]any) error {
	switch kind {
	case mailbox.Percent:
		v, ok := payload["percent"]
		if !ok || v == nil {
			return errors.New("percent is required")
		}
		f, ok := v.(float64)
		if !ok {
			return errors.New("percent must be a number")
		}
		if f < 0 || f > 100 {
			return errors.New("percent must be between 0 and 100")
		}
	case mailbox.Model:
		v, _ := payload["model"].(string)
		v = strings.TrimSpace(v)
		if v == "" {
			return errors.New("model is required")
		}
		if utf8.RuneCountInString(v) > maxModelLength {
			return fmt.Errorf("model must be %d characters or less", maxModelLength)
		}
		payload["model"] = v
	}
	return nil
}
