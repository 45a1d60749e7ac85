// Package probe collects dashboard metrics by running operating-system
// utilities and parsing their human-readable output.
package probe

import (
	"errors"
	"runtime"
	"sync"
	"time"
)

// ErrNoMatch reports that a command ran but its output held nothing usable.
var ErrNoMatch = errors.New("no match found")

// ErrUnsupportedPlatform reports a collector with no source for the running OS.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

const (
	hardwareMetaTTL = 30 * time.Second
	cpuStaticTTL    = 1 * time.Minute
)

type Options struct {
	GOOS                 string
	StorageMount         string
	StorageFallbackMount string
	ESFilter             string
	MeminfoPath          string
	// Hardware enables ghw lookups (memory modules, drive models).
	Hardware bool
}

type Prober struct {
	runner Runner
	opts   Options

	mu sync.Mutex

	memoryModules       []MemoryModule
	memoryModulesLoaded bool

	diskMeta          map[string]string
	diskMetaUpdatedAt time.Time

	cpuModel          string
	cpuModelUpdatedAt time.Time
}

func New(runner Runner, opts Options) *Prober {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.StorageMount == "" {
		opts.StorageMount = "/"
	}
	if opts.ESFilter == "" {
		opts.ESFilter = "elasticsearch"
	}
	if opts.MeminfoPath == "" {
		opts.MeminfoPath = "/proc/meminfo"
	}
	return &Prober{
		runner: runner,
		opts:   opts,
	}
}

func (p *Prober) GOOS() string {
	return p.opts.GOOS
}
