package http

import (
	_ "embed"
	"html/template"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
)

//go:embed ui/index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type indexData struct {
	Name   string
	WSPort int
}

// AddStaticRoutes serves the public dir when it exists and the embedded
// dashboard otherwise.
func (s *Server) AddStaticRoutes() {
	if info, err := os.Stat(s.cfg.PublicDir); err == nil && info.IsDir() {
		s.r.Handle("/*", http.FileServer(http.Dir(s.cfg.PublicDir)))
		return
	}

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := indexData{Name: s.namer.GetName().Name, WSPort: s.cfg.WSPort}
		if err := indexTmpl.Execute(w, data); err != nil {
			log.Warn().Err(err).Msg("failed to render index")
		}
	})
}
