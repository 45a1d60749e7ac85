package probe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
)

var vmStatPageSize = regexp.MustCompile(`page size of (\d+) bytes`)

type Memory struct {
	Total   float64        `json:"total"`
	Used    float64        `json:"used"`
	Free    float64        `json:"free"`
	Usage   int            `json:"usage"`
	Source  string         `json:"source"`
	Modules []MemoryModule `json:"modules,omitempty"`
}

type MemoryModule struct {
	Label     string `json:"label"`
	Vendor    string `json:"vendor"`
	SizeBytes uint64 `json:"sizeBytes"`
}

// Memory reads platform counters and falls back to gopsutil when the
// platform source cannot be read or parsed.
func (p *Prober) Memory(ctx context.Context) (Memory, error) {
	var (
		m   Memory
		err error
	)
	switch p.opts.GOOS {
	case "darwin":
		m, err = p.darwinMemory(ctx)
	case "linux":
		m, err = p.linuxMemory()
	default:
		err = fmt.Errorf("memory: %w: %s", ErrUnsupportedPlatform, p.opts.GOOS)
	}
	if err != nil {
		if errors.Is(err, ErrUnsupportedPlatform) {
			log.Debug().Str("platform", p.opts.GOOS).Msg("no platform memory source, using gopsutil")
		} else {
			log.Warn().Err(err).Msg("platform memory read failed, using gopsutil")
		}
		m, err = gopsutilMemory(ctx)
		if err != nil {
			return Memory{}, err
		}
	}

	if p.opts.Hardware {
		if modules, err := p.memoryModuleInfo(); err == nil && len(modules) > 0 {
			m.Modules = modules
		}
	}
	return m, nil
}

func (p *Prober) darwinMemory(ctx context.Context) (Memory, error) {
	out, err := p.runner.Run(ctx, "sysctl", "-n", "hw.memsize")
	if err != nil {
		return Memory{}, err
	}
	total, err := strconv.ParseUint(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return Memory{}, fmt.Errorf("parse hw.memsize: %w", err)
	}

	out, err = p.runner.Run(ctx, "vm_stat")
	if err != nil {
		return Memory{}, err
	}
	used, err := parseVMStat(out)
	if err != nil {
		return Memory{}, err
	}
	return newMemory(float64(total), float64(used), "vm_stat"), nil
}

// parseVMStat returns used bytes: active + wired + compressor-occupied pages.
func parseVMStat(out []byte) (uint64, error) {
	pageSize := uint64(4096)
	if m := vmStatPageSize.FindSubmatch(out); m != nil {
		if v, err := strconv.ParseUint(string(m[1]), 10, 64); err == nil && v > 0 {
			pageSize = v
		}
	}

	pages := make(map[string]uint64)
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, val, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimSuffix(strings.TrimSpace(val), "."), 10, 64)
		if err != nil {
			continue
		}
		pages[strings.TrimSpace(key)] = n
	}

	active, okActive := pages["Pages active"]
	wired, okWired := pages["Pages wired down"]
	if !okActive || !okWired {
		return 0, fmt.Errorf("vm_stat: %w", ErrNoMatch)
	}
	compressed := pages["Pages occupied by compressor"]
	return (active + wired + compressed) * pageSize, nil
}

func (p *Prober) linuxMemory() (Memory, error) {
	b, err := os.ReadFile(p.opts.MeminfoPath)
	if err != nil {
		return Memory{}, err
	}
	total, used, err := parseMeminfo(b)
	if err != nil {
		return Memory{}, err
	}
	return newMemory(float64(total), float64(used), "meminfo"), nil
}

// parseMeminfo returns total and used bytes; used = MemTotal - MemAvailable.
func parseMeminfo(b []byte) (total, used uint64, err error) {
	values := make(map[string]uint64)
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		values[strings.TrimSuffix(fields[0], ":")] = n * 1024
	}

	total, ok := values["MemTotal"]
	if !ok || total == 0 {
		return 0, 0, fmt.Errorf("meminfo: %w", ErrNoMatch)
	}
	avail, ok := values["MemAvailable"]
	if !ok {
		avail, ok = values["MemFree"]
	}
	if !ok {
		return 0, 0, fmt.Errorf("meminfo: %w", ErrNoMatch)
	}
	if avail > total {
		avail = total
	}
	return total, total - avail, nil
}

func gopsutilMemory(ctx context.Context) (Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Memory{}, fmt.Errorf("virtual memory: %w", err)
	}
	if vm == nil {
		return Memory{}, fmt.Errorf("virtual memory: %w", ErrNoMatch)
	}
	return newMemory(float64(vm.Total), float64(vm.Used), "gopsutil"), nil
}

func newMemory(total, used float64, source string) Memory {
	free := total - used
	if free < 0 {
		free = 0
	}
	return Memory{
		Total:  toGB(total),
		Used:   toGB(used),
		Free:   toGB(free),
		Usage:  usagePercent(used, total),
		Source: source,
	}
}

func (p *Prober) memoryModuleInfo() ([]MemoryModule, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.memoryModulesLoaded {
		return p.memoryModules, nil
	}

	info, err := ghw.Memory()
	if err != nil {
		return nil, err
	}

	modules := make([]MemoryModule, 0, len(info.Modules))
	for _, mod := range info.Modules {
		if mod == nil {
			continue
		}
		size := uint64(0)
		if mod.SizeBytes > 0 {
			size = uint64(mod.SizeBytes)
		}
		modules = append(modules, MemoryModule{
			Label:     strings.TrimSpace(mod.Label),
			Vendor:    strings.TrimSpace(mod.Vendor),
			SizeBytes: size,
		})
	}

	p.memoryModules = modules
	p.memoryModulesLoaded = true
	return modules, nil
}
