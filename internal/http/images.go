package http

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/galbox/galconsole/internal/apierror"
)

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
	".svg":  {},
}

type Image struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

type imagesResponse struct {
	Images []Image `json:"images"`
}

func (s *Server) AddImageRoutes() {
	s.r.Get("/api/images", func(w http.ResponseWriter, r *http.Request) {
		images, err := listImages(s.cfg.ImagesDir)
		if err != nil {
			logFailure(r, err, "failed to list images")
			apierror.InternalError(w, "failed to list images")
			return
		}
		writeJSON(w, http.StatusOK, imagesResponse{Images: images})
	})

	fs := http.StripPrefix("/images/", http.FileServer(http.Dir(s.cfg.ImagesDir)))
	s.r.Get("/images/*", fs.ServeHTTP)
}

// listImages returns the image files in dir sorted by name, creating dir when
// it does not exist yet.
func listImages(dir string) ([]Image, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read images dir: %w", err)
	}

	images := []Image{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageExtensions[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		images = append(images, Image{
			Name: e.Name(),
			URL:  "/images/" + e.Name(),
			Size: info.Size(),
		})
	}
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	return images, nil
}
