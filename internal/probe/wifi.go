package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"howett.net/plist"
)

const airportPath = "/System/Library/PrivateFrameworks/Apple80211.framework/Versions/Current/Resources/airport"

var (
	airportSSID   = regexp.MustCompile(`[^B]SSID: (.+)`)
	airportSignal = regexp.MustCompile(`agrCtlRSSI: (.+)`)
	leadingInt    = regexp.MustCompile(`-?\d+`)
)

type WiFi struct {
	SSID        string `json:"ssid"`
	SignalLevel *int   `json:"signal_level"`
	SignalUnit  string `json:"signal_unit,omitempty"`
	Source      string `json:"source"`
}

// WiFi reports the connected network. It returns ErrNoMatch when the tools ran
// but no active connection was found.
func (p *Prober) WiFi(ctx context.Context) (WiFi, error) {
	switch p.opts.GOOS {
	case "darwin":
		return p.darwinWiFi(ctx)
	case "linux":
		return p.linuxWiFi(ctx)
	default:
		return WiFi{}, fmt.Errorf("wifi: %w: %s", ErrUnsupportedPlatform, p.opts.GOOS)
	}
}

func (p *Prober) darwinWiFi(ctx context.Context) (WiFi, error) {
	out, err := p.runner.Run(ctx, airportPath, "-I")
	if err == nil {
		w, parseErr := parseAirport(out)
		if parseErr == nil {
			return w, nil
		}
		// newer releases keep the binary but only print a deprecation notice
		err = parseErr
	}

	xml, spErr := p.runner.Run(ctx, "system_profiler", "SPAirPortDataType", "-xml")
	if spErr != nil {
		if errors.Is(err, ErrNoMatch) {
			return WiFi{}, ErrNoMatch
		}
		return WiFi{}, fmt.Errorf("wifi: airport: %v; system_profiler: %w", err, spErr)
	}
	return parseSystemProfilerWiFi(xml)
}

func (p *Prober) linuxWiFi(ctx context.Context) (WiFi, error) {
	out, nmErr := p.runner.Run(ctx, "nmcli", "-t", "-f", "ACTIVE,SSID,SIGNAL", "dev", "wifi")
	if nmErr == nil {
		if w, err := parseNmcli(out); err == nil {
			return w, nil
		}
	}

	out, iwErr := p.runner.Run(ctx, "iwgetid", "-r")
	if iwErr == nil {
		ssid := strings.TrimSpace(string(out))
		if ssid == "" {
			return WiFi{}, ErrNoMatch
		}
		return WiFi{SSID: ssid, Source: "iwgetid"}, nil
	}
	if nmErr != nil {
		return WiFi{}, fmt.Errorf("wifi: nmcli: %v; iwgetid: %w", nmErr, iwErr)
	}
	// nmcli answered without an active row; iwgetid exits non-zero when disconnected.
	return WiFi{}, ErrNoMatch
}

func parseAirport(out []byte) (WiFi, error) {
	m := airportSSID.FindSubmatch(out)
	if m == nil {
		return WiFi{}, ErrNoMatch
	}
	w := WiFi{
		SSID:   strings.TrimSpace(string(m[1])),
		Source: "airport",
	}
	if s := airportSignal.FindSubmatch(out); s != nil {
		if v, err := strconv.Atoi(strings.TrimSpace(string(s[1]))); err == nil {
			w.SignalLevel = &v
			w.SignalUnit = "dBm"
		}
	}
	return w, nil
}

// parseNmcli reads `nmcli -t -f ACTIVE,SSID,SIGNAL dev wifi`. Terse mode
// escapes ':' and '\' inside values with a backslash.
func parseNmcli(out []byte) (WiFi, error) {
	for _, line := range strings.Split(string(out), "\n") {
		fields := splitTerse(strings.TrimRight(line, "\r"))
		if len(fields) < 2 || fields[0] != "yes" || fields[1] == "" {
			continue
		}
		w := WiFi{SSID: fields[1], Source: "nmcli"}
		if len(fields) > 2 {
			if v, err := strconv.Atoi(strings.TrimSpace(fields[2])); err == nil {
				w.SignalLevel = &v
				w.SignalUnit = "percent"
			}
		}
		return w, nil
	}
	return WiFi{}, ErrNoMatch
}

func splitTerse(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}

type spAirportReport struct {
	Items []struct {
		Interfaces []struct {
			Name    string `plist:"_name"`
			Current *struct {
				Name        string `plist:"_name"`
				SignalNoise string `plist:"spairport_signal_noise"`
			} `plist:"spairport_current_network_information"`
		} `plist:"spairport_airport_interfaces"`
	} `plist:"_items"`
}

func parseSystemProfilerWiFi(out []byte) (WiFi, error) {
	var reports []spAirportReport
	if err := plist.NewDecoder(bytes.NewReader(out)).Decode(&reports); err != nil {
		return WiFi{}, fmt.Errorf("wifi: decode system_profiler plist: %w", err)
	}
	for _, r := range reports {
		for _, item := range r.Items {
			for _, iface := range item.Interfaces {
				if iface.Current == nil || strings.TrimSpace(iface.Current.Name) == "" {
					continue
				}
				w := WiFi{
					SSID:   strings.TrimSpace(iface.Current.Name),
					Source: "system_profiler",
				}
				if n := leadingInt.FindString(iface.Current.SignalNoise); n != "" {
					if v, err := strconv.Atoi(n); err == nil {
						w.SignalLevel = &v
						w.SignalUnit = "dBm"
					}
				}
				return w, nil
			}
		}
	}
	return WiFi{}, ErrNoMatch
}
