package probe

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	dockerPSFormat    = "{{.ID}}|{{.Names}}|{{.Image}}|{{.Status}}|{{.State}}"
	dockerStatsFormat = "table {{.Name}}\t{{.CPUPerc}}\t{{.MemUsage}}\t{{.MemPerc}}"
	// each running container adds this much to the usage score.
	dockerScorePerContainer = 25
)

type Docker struct {
	Status     string      `json:"status"`
	Containers int         `json:"containers"`
	Running    int         `json:"running"`
	Images     int         `json:"images"`
	Usage      int         `json:"usage"`
	CPUPercent float64     `json:"cpuPercent"`
	MemPercent float64     `json:"memPercent"`
	List       []Container `json:"list"`
	Message    string      `json:"message,omitempty"`
}

type Container struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Image      string  `json:"image"`
	Status     string  `json:"status"`
	State      string  `json:"state"`
	CPUPercent float64 `json:"cpuPercent"`
	MemUsage   string  `json:"memUsage,omitempty"`
	MemPercent float64 `json:"memPercent"`
}

type containerStats struct {
	CPUPercent float64
	MemUsage   string
	MemPercent float64
}

// Docker never fails: an unreachable docker CLI or daemon yields a stopped status.
func (p *Prober) Docker(ctx context.Context) Docker {
	out, err := p.runner.Run(ctx, "docker", "ps", "--format", dockerPSFormat)
	if err != nil {
		log.Info().Err(err).Msg("docker not available")
		return Docker{Status: "stopped", List: []Container{}, Message: "Docker is not running"}
	}
	list := parseDockerPS(out)

	images := 0
	if out, err := p.runner.Run(ctx, "docker", "images", "-q"); err == nil {
		images = countUniqueLines(out)
	} else {
		log.Warn().Err(err).Msg("docker images failed")
	}

	if len(list) > 0 {
		if out, err := p.runner.Run(ctx, "docker", "stats", "--no-stream", "--format", dockerStatsFormat); err == nil {
			stats := parseDockerStats(out)
			for i := range list {
				if s, ok := stats[list[i].Name]; ok {
					list[i].CPUPercent = s.CPUPercent
					list[i].MemUsage = s.MemUsage
					list[i].MemPercent = s.MemPercent
				}
			}
		} else {
			log.Warn().Err(err).Msg("docker stats failed")
		}
	}

	return summarizeDocker(list, images)
}

func summarizeDocker(list []Container, images int) Docker {
	d := Docker{
		Status:     "running",
		Containers: len(list),
		Images:     images,
		List:       list,
	}
	var cpuSum, memSum float64
	for _, c := range list {
		if c.State == "running" {
			d.Running++
		}
		cpuSum += c.CPUPercent
		memSum += c.MemPercent
	}
	d.CPUPercent = round2(cpuSum)
	d.MemPercent = round2(memSum)
	d.Usage = d.Containers * dockerScorePerContainer
	if d.Usage > 100 {
		d.Usage = 100
	}
	return d
}

func parseDockerPS(out []byte) []Container {
	list := []Container{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}
		c := Container{
			ID:     strings.TrimSpace(parts[0]),
			Name:   strings.TrimSpace(parts[1]),
			Image:  strings.TrimSpace(parts[2]),
			Status: strings.TrimSpace(parts[3]),
		}
		if len(parts) > 4 {
			c.State = strings.TrimSpace(parts[4])
		} else if strings.HasPrefix(c.Status, "Up") {
			c.State = "running"
		}
		list = append(list, c)
	}
	return list
}

func parseDockerStats(out []byte) map[string]containerStats {
	stats := make(map[string]containerStats)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i, line := range lines {
		if i == 0 && strings.HasPrefix(strings.TrimSpace(line), "NAME") {
			continue
		}
		cols := splitColumns(line)
		if len(cols) < 4 || cols[0] == "" {
			continue
		}
		var s containerStats
		s.CPUPercent, _ = parsePercent(cols[1])
		s.MemUsage = cols[2]
		s.MemPercent, _ = parsePercent(cols[3])
		stats[cols[0]] = s
	}
	return stats
}

func countUniqueLines(out []byte) int {
	seen := make(map[string]struct{})
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen[line] = struct{}{}
	}
	return len(seen)
}
