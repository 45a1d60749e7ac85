package json

import "github.com/galbox/galconsole/internal/domain"

func (c *Client) GetName() domain.Name {
	c.m.Lock()
	defer c.m.Unlock()
	if !c.db.stored {
		return domain.Name{Name: c.defaultName}
	}
	return c.db.Name
}
