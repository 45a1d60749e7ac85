package probe

import (
	"context"
	"fmt"
	"strings"
)

type Model struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Size     string `json:"size"`
	Modified string `json:"modified"`
}

// Models lists locally installed ollama models. No models is an empty slice.
func (p *Prober) Models(ctx context.Context) ([]Model, error) {
	out, err := p.runner.Run(ctx, "ollama", "list")
	if err != nil {
		return nil, fmt.Errorf("ollama list: %w", err)
	}
	return parseOllamaList(out), nil
}

func parseOllamaList(out []byte) []Model {
	models := []Model{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "NAME") {
			continue
		}
		cols := multiSpace.Split(line, -1)
		m := Model{Name: cols[0]}
		if len(cols) > 1 {
			m.ID = cols[1]
		}
		if len(cols) > 2 {
			m.Size = cols[2]
		}
		if len(cols) > 3 {
			m.Modified = strings.Join(cols[3:], " ")
		}
		models = append(models, m)
	}
	return models
}
