package probe

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"460Gi", 460 * bytesPerGB},
		{"98G", 98 * bytesPerGB},
		{"1.5T", 1.5 * 1024 * bytesPerGB},
		{"512M", 512 * 1024 * 1024},
		{"4.0K", 4096},
		{"0B", 0},
		{"0", 0},
		{"1,5G", 1.5 * bytesPerGB},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		if err != nil {
			t.Errorf("parseSize(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "B", "lots", "G"} {
		if _, err := parseSize(bad); err == nil {
			t.Errorf("parseSize(%q) expected error", bad)
		}
	}
}

func TestSplitColumns(t *testing.T) {
	got := splitColumns("web   1.50%   20MiB / 1GiB   2.00%")
	if len(got) != 4 || got[2] != "20MiB / 1GiB" {
		t.Fatalf("space split = %q", got)
	}
	got = splitColumns("web\t1.50%\t20MiB / 1GiB\t2.00%")
	if len(got) != 4 || got[0] != "web" {
		t.Fatalf("tab split = %q", got)
	}
}

func TestLoadUsage(t *testing.T) {
	tests := []struct {
		load  float64
		cores int
		want  int
	}{
		{2, 8, 25},
		{0.5, 4, 13},
		{12, 4, 100},
		{1, 0, 0},
		{0, 8, 0},
	}
	for _, tt := range tests {
		if got := loadUsage(tt.load, tt.cores); got != tt.want {
			t.Errorf("loadUsage(%v, %d) = %d, want %d", tt.load, tt.cores, got, tt.want)
		}
	}
}
