package json

import (
	stdjson "encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/galbox/galconsole/internal/domain"
)

type Client struct {
	Path        string
	defaultName string
	db          Db
	m           sync.Mutex
}

type Db struct {
	Name domain.Name
	// set once a name has been saved or loaded from disk
	stored bool
}

// New loads the name file at path. A missing file leaves defaultName in place.
func New(path, defaultName string) (*Client, error) {
	c := &Client{
		Path:        path,
		defaultName: defaultName,
		m:           sync.Mutex{},
	}
	if err := c.readDb(); err != nil {
		return nil, fmt.Errorf("failed to load the name file: %w", err)
	}
	return c, nil
}

func (c *Client) readDb() error {
	b, err := os.ReadFile(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var n domain.Name
	if err := stdjson.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("failed to parse %s: %w", c.Path, err)
	}
	if n.Name == "" {
		return nil
	}
	c.db = Db{Name: n, stored: true}
	return nil
}
