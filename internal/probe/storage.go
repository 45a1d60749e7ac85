package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jaypipes/ghw"
	"github.com/rs/zerolog/log"
)

// ErrStorageUnavailable is returned when neither mount point could be read.
var ErrStorageUnavailable = errors.New("storage unavailable")

type Storage struct {
	Mount      string  `json:"mount"`
	Filesystem string  `json:"filesystem"`
	Total      float64 `json:"total"`
	Used       float64 `json:"used"`
	Available  float64 `json:"available"`
	Usage      int     `json:"usage"`
	Drive      string  `json:"drive,omitempty"`
}

// Storage runs df on the primary mount, then on the fallback mount.
func (p *Prober) Storage(ctx context.Context) (Storage, error) {
	mounts := []string{p.opts.StorageMount}
	if fb := p.opts.StorageFallbackMount; fb != "" && fb != p.opts.StorageMount {
		mounts = append(mounts, fb)
	}

	for _, mount := range mounts {
		out, err := p.runner.Run(ctx, "df", "-h", mount)
		if err != nil {
			log.Warn().Err(err).Str("mount", mount).Msg("df failed")
			continue
		}
		s, err := parseDF(out)
		if err != nil {
			log.Warn().Err(err).Str("mount", mount).Msg("df output not parseable")
			continue
		}
		if p.opts.Hardware {
			s.Drive = p.driveModel(s.Mount)
		}
		return s, nil
	}
	return Storage{}, ErrStorageUnavailable
}

// parseDF reads `df -h <mount>` output (GNU or BSD layout). Long device names
// that wrap onto a second line are rejoined.
func parseDF(out []byte) (Storage, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return Storage{}, fmt.Errorf("df: %w", ErrNoMatch)
	}
	var fields []string
	for _, line := range lines[1:] {
		fields = append(fields, strings.Fields(line)...)
	}

	pctIdx := -1
	for i, f := range fields {
		if strings.HasSuffix(f, "%") {
			pctIdx = i
			break
		}
	}
	if pctIdx < 4 {
		return Storage{}, fmt.Errorf("df: %w", ErrNoMatch)
	}
	lastPct := pctIdx
	for i := pctIdx + 1; i < len(fields); i++ {
		if strings.HasSuffix(fields[i], "%") {
			lastPct = i
		}
	}
	if lastPct+1 >= len(fields) {
		return Storage{}, fmt.Errorf("df: missing mount point: %w", ErrNoMatch)
	}

	size, err := parseSize(fields[pctIdx-3])
	if err != nil {
		return Storage{}, fmt.Errorf("df size: %w", err)
	}
	used, err := parseSize(fields[pctIdx-2])
	if err != nil {
		return Storage{}, fmt.Errorf("df used: %w", err)
	}
	avail, err := parseSize(fields[pctIdx-1])
	if err != nil {
		return Storage{}, fmt.Errorf("df avail: %w", err)
	}
	pct, err := parsePercent(fields[pctIdx])
	if err != nil {
		return Storage{}, fmt.Errorf("df capacity: %w", err)
	}

	return Storage{
		Filesystem: strings.Join(fields[:pctIdx-3], " "),
		Mount:      strings.Join(fields[lastPct+1:], " "),
		Total:      toGB(size),
		Used:       toGB(used),
		Available:  toGB(avail),
		Usage:      int(pct),
	}, nil
}

func (p *Prober) driveModel(mount string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.diskMeta == nil || time.Since(p.diskMetaUpdatedAt) >= hardwareMetaTTL {
		info, err := ghw.Block()
		if err != nil {
			log.Debug().Err(err).Msg("ghw block info unavailable")
			return ""
		}
		meta := make(map[string]string)
		for _, d := range info.Disks {
			model := normalizeSpaces(strings.TrimSpace(d.Vendor + " " + d.Model))
			for _, part := range d.Partitions {
				if part == nil || part.MountPoint == "" {
					continue
				}
				meta[part.MountPoint] = model
			}
		}
		p.diskMeta = meta
		p.diskMetaUpdatedAt = time.Now()
	}
	return p.diskMeta[mount]
}
