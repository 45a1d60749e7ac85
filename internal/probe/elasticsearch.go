package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	esURL           = "http://localhost:9200"
	esMaxConcurrent = 4
)

type Elasticsearch struct {
	Count      int           `json:"count"`
	Containers []ESContainer `json:"containers"`
	Error      string        `json:"error,omitempty"`
}

type ESContainer struct {
	Container        string `json:"container"`
	Status           string `json:"status,omitempty"`
	ClusterName      string `json:"clusterName,omitempty"`
	NodeName         string `json:"nodeName,omitempty"`
	Version          string `json:"version,omitempty"`
	NumberOfNodes    int    `json:"numberOfNodes"`
	ActiveShards     int    `json:"activeShards"`
	UnassignedShards int    `json:"unassignedShards"`
	Error            string `json:"error,omitempty"`
}

type esInfo struct {
	Name        string `json:"name"`
	ClusterName string `json:"cluster_name"`
	Version     struct {
		Number string `json:"number"`
	} `json:"version"`
}

type esHealth struct {
	ClusterName      string `json:"cluster_name"`
	Status           string `json:"status"`
	NumberOfNodes    int    `json:"number_of_nodes"`
	ActiveShards     int    `json:"active_shards"`
	UnassignedShards int    `json:"unassigned_shards"`
}

// Elasticsearch queries every container whose name matches the configured
// filter. Errors are kept per container.
func (p *Prober) Elasticsearch(ctx context.Context) Elasticsearch {
	out, err := p.runner.Run(ctx, "docker", "ps", "--filter", "name="+p.opts.ESFilter, "--format", "{{.Names}}")
	if err != nil {
		return Elasticsearch{Containers: []ESContainer{}, Error: err.Error()}
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}

	results := make([]ESContainer, len(names))
	var g errgroup.Group
	g.SetLimit(esMaxConcurrent)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = p.queryES(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	return Elasticsearch{Count: len(results), Containers: results}
}

func (p *Prober) queryES(ctx context.Context, container string) ESContainer {
	res := ESContainer{Container: container}

	out, err := p.runner.Run(ctx, "docker", "exec", container, "curl", "-s", esURL)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	var info esInfo
	if err := json.Unmarshal(out, &info); err != nil {
		res.Error = fmt.Sprintf("decode info: %v", err)
		return res
	}
	res.ClusterName = info.ClusterName
	res.NodeName = info.Name
	res.Version = info.Version.Number

	out, err = p.runner.Run(ctx, "docker", "exec", container, "curl", "-s", esURL+"/_cluster/health")
	if err != nil {
		res.Error = err.Error()
		return res
	}
	var health esHealth
	if err := json.Unmarshal(out, &health); err != nil {
		res.Error = fmt.Sprintf("decode health: %v", err)
		return res
	}
	res.Status = health.Status
	res.NumberOfNodes = health.NumberOfNodes
	res.ActiveShards = health.ActiveShards
	res.UnassignedShards = health.UnassignedShards
	if res.ClusterName == "" {
		res.ClusterName = health.ClusterName
	}
	return res
}
