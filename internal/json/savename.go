package json

import (
	stdjson "encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/galbox/galconsole/internal/domain"
)

// SaveName validates, stamps and persists name. The file is replaced atomically.
func (c *Client) SaveName(name string) (domain.Name, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return domain.Name{}, err
	}
	now := time.Now().UTC()
	n := domain.Name{Name: name, Timestamp: &now}

	c.m.Lock()
	defer c.m.Unlock()
	if err := writeJSONFileAtomic(c.Path, n, 0o644); err != nil {
		return domain.Name{}, err
	}
	c.db = Db{Name: n, stored: true}
	return n, nil
}

func writeJSONFileAtomic(path string, v any, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	enc := stdjson.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if mode != 0 {
		_ = os.Chmod(tmpName, mode)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
