package probe

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
)

type CPU struct {
	Usage  int     `json:"usage"`
	Load1  float64 `json:"load1"`
	Load5  float64 `json:"load5"`
	Load15 float64 `json:"load15"`
	Cores  int     `json:"cores"`
	Model  string  `json:"model,omitempty"`
}

// CPU derives a usage percent from the one-minute load average over the
// logical core count.
func (p *Prober) CPU(ctx context.Context) (CPU, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return CPU{}, fmt.Errorf("load average: %w", err)
	}
	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return CPU{}, fmt.Errorf("cpu count: %w", err)
	}

	c := CPU{
		Usage:  loadUsage(avg.Load1, cores),
		Load1:  round2(avg.Load1),
		Load5:  round2(avg.Load5),
		Load15: round2(avg.Load15),
		Cores:  cores,
		Model:  p.cpuModelName(ctx),
	}
	return c, nil
}

func loadUsage(load1 float64, cores int) int {
	if cores <= 0 || load1 <= 0 || math.IsNaN(load1) {
		return 0
	}
	u := int(math.Round(load1 / float64(cores) * 100))
	if u > 100 {
		return 100
	}
	return u
}

func (p *Prober) cpuModelName(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.cpuModelUpdatedAt.IsZero() && time.Since(p.cpuModelUpdatedAt) < cpuStaticTTL {
		return p.cpuModel
	}
	p.cpuModelUpdatedAt = time.Now()

	info, err := cpu.InfoWithContext(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("cpu info unavailable")
		return p.cpuModel
	}
	if len(info) > 0 {
		p.cpuModel = strings.TrimSpace(info[0].ModelName)
	}
	return p.cpuModel
}
