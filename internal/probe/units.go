package probe

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const bytesPerGB = 1024 * 1024 * 1024

var multiSpace = regexp.MustCompile(`\s{2,}`)

func toGB(b float64) float64 {
	return round2(b / bytesPerGB)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func usagePercent(used, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(used / total * 100))
}

// parseSize reads df -h style sizes: "460Gi", "98G", "4.0K", "0B", "1,5T".
// Units are powers of 1024.
func parseSize(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}
	s = strings.TrimSuffix(s, "i")
	s = strings.TrimSuffix(s, "B")
	if s == "" {
		return 0, fmt.Errorf("invalid size")
	}

	mult := 1.0
	switch unit := s[len(s)-1]; unit {
	case 'K', 'k':
		mult = 1 << 10
	case 'M':
		mult = 1 << 20
	case 'G':
		mult = 1 << 30
	case 'T':
		mult = 1 << 40
	case 'P':
		mult = 1 << 50
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return v * mult, nil
}

func parsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "--" {
		return 0, fmt.Errorf("empty percent")
	}
	return strconv.ParseFloat(s, 64)
}

func splitColumns(line string) []string {
	if strings.Contains(line, "\t") {
		parts := strings.Split(line, "\t")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out
	}
	return multiSpace.Split(strings.TrimSpace(line), -1)
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
