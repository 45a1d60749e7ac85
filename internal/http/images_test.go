package http

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestImagesCreatesMissingDir(t *testing.T) {
	s, _ := newTestServer(t, &fakeProber{})

	w := do(t, s, http.MethodGet, "/api/images", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	images, ok := decode(t, w)["images"].([]any)
	if !ok || len(images) != 0 {
		t.Errorf("images = %v", images)
	}
	if info, err := os.Stat(s.cfg.ImagesDir); err != nil || !info.IsDir() {
		t.Errorf("images dir not created: %v", err)
	}
}

func TestImagesListing(t *testing.T) {
	s, _ := newTestServer(t, &fakeProber{})
	dir := s.cfg.ImagesDir
	if err := os.MkdirAll(filepath.Join(dir, "nested.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"b.JPG":     "jpg",
		"a.png":     "png!",
		"notes.txt": "skip",
		"c.svg":     "<svg/>",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	images, err := listImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a.png", "b.JPG", "c.svg"}
	if len(images) != len(want) {
		t.Fatalf("images = %+v", images)
	}
	for i, name := range want {
		if images[i].Name != name || images[i].URL != "/images/"+name {
			t.Errorf("images[%d] = %+v", i, images[i])
		}
	}
	if images[0].Size != 4 {
		t.Errorf("a.png size = %d", images[0].Size)
	}

	w := do(t, s, http.MethodGet, "/images/a.png", "")
	if w.Code != http.StatusOK || w.Body.String() != "png!" {
		t.Errorf("serve image: %d %q", w.Code, w.Body.String())
	}
}

func TestImagesServeMissingFile(t *testing.T) {
	s, _ := newTestServer(t, &fakeProber{})
	if _, err := listImages(s.cfg.ImagesDir); err != nil {
		t.Fatal(err)
	}

	if w := do(t, s, http.MethodGet, "/images/missing.png", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}
