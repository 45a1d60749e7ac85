package probe

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const vmStatOutput = `Mach Virtual Memory Statistics: (page size of 16384 bytes)
Pages free:                               12345.
Pages active:                            400000.
Pages inactive:                          390000.
Pages speculative:                         5000.
Pages throttled:                              0.
Pages wired down:                        150000.
Pages purgeable:                          10000.
"Translation faults":                 123456789.
Pages copy-on-write:                    1234567.
Pages zero filled:                     98765432.
Pages reactivated:                       123456.
Pages purged:                             12345.
File-backed pages:                       200000.
Anonymous pages:                         595000.
Pages stored in compressor:              300000.
Pages occupied by compressor:            100000.
`

const meminfoOutput = `MemTotal:       16384000 kB
MemFree:         2000000 kB
MemAvailable:    8192000 kB
Buffers:          100000 kB
Cached:          5000000 kB
`

func TestParseVMStat(t *testing.T) {
	used, err := parseVMStat([]byte(vmStatOutput))
	if err != nil {
		t.Fatalf("parseVMStat: %v", err)
	}
	if want := uint64(650000 * 16384); used != want {
		t.Errorf("used = %d, want %d", used, want)
	}

	if _, err := parseVMStat([]byte("Mach Virtual Memory Statistics:\n")); err == nil {
		t.Error("expected error for empty vm_stat")
	}
}

func TestDarwinMemory(t *testing.T) {
	r := newFakeRunner().
		on("sysctl -n hw.memsize", "17179869184\n").
		on("vm_stat", vmStatOutput)
	p := New(r, Options{GOOS: "darwin"})

	m, err := p.Memory(context.Background())
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	want := Memory{Total: 16, Used: 9.92, Free: 6.08, Usage: 62, Source: "vm_stat"}
	if m.Total != want.Total || m.Used != want.Used || m.Free != want.Free || m.Usage != want.Usage || m.Source != want.Source {
		t.Errorf("got %+v, want %+v", m, want)
	}
}

func TestLinuxMemoryFromMeminfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meminfo")
	if err := os.WriteFile(path, []byte(meminfoOutput), 0o644); err != nil {
		t.Fatal(err)
	}
	p := New(newFakeRunner(), Options{GOOS: "linux", MeminfoPath: path})

	m, err := p.Memory(context.Background())
	if err != nil {
		t.Fatalf("Memory: %v", err)
	}
	if m.Usage != 50 || m.Total != 15.63 || m.Used != 7.81 || m.Source != "meminfo" {
		t.Errorf("unexpected memory %+v", m)
	}
}

func TestParseMeminfoWithoutAvailable(t *testing.T) {
	total, used, err := parseMeminfo([]byte("MemTotal: 1000 kB\nMemFree: 250 kB\n"))
	if err != nil {
		t.Fatalf("parseMeminfo: %v", err)
	}
	if total != 1000*1024 || used != 750*1024 {
		t.Errorf("total=%d used=%d", total, used)
	}
}

func TestMemoryFallsBackToGopsutil(t *testing.T) {
	r := newFakeRunner().fail("sysctl -n hw.memsize", errExit)
	p := New(r, Options{GOOS: "darwin"})

	m, err := p.Memory(context.Background())
	if err != nil {
		t.Skipf("gopsutil unavailable on this host: %v", err)
	}
	if m.Source != "gopsutil" {
		t.Errorf("source = %q, want gopsutil", m.Source)
	}
	if m.Total <= 0 {
		t.Errorf("total = %v", m.Total)
	}
}

func TestMemoryUnsupportedPlatformLogsQuietly(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)
	defer func() { log.Logger = prev }()

	p := New(newFakeRunner(), Options{GOOS: "plan9"})
	if _, err := p.Memory(context.Background()); err != nil {
		t.Skipf("gopsutil unavailable on this host: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output at info level: %s", buf.String())
	}
}
