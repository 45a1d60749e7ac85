package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// connectivityTarget is only used to pick a route; UDP dial sends nothing.
const connectivityTarget = "8.8.8.8:80"

var ErrMissingSSID = errors.New("ssid cannot be empty")

type NetworkStatus struct {
	Connected bool   `json:"connected"`
	LocalIP   string `json:"localIp"`
}

type Identity struct {
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
	Platform string `json:"platform"`
	Message  string `json:"message"`
}

type ConnectResult struct {
	SSID    string `json:"ssid"`
	Output  string `json:"output"`
	LocalIP string `json:"localIp"`
}

func (p *Prober) NetworkStatus(ctx context.Context) NetworkStatus {
	ip, err := routedIP(ctx)
	if err != nil {
		fallback, _ := PreferredHostIP()
		return NetworkStatus{Connected: false, LocalIP: fallback}
	}
	return NetworkStatus{Connected: true, LocalIP: ip}
}

func (p *Prober) Identify(ctx context.Context) Identity {
	id := Identity{Platform: p.opts.GOOS}
	if info, err := host.InfoWithContext(ctx); err == nil && info != nil {
		id.Hostname = info.Hostname
		if info.Platform != "" {
			id.Platform = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		}
	}
	if id.Hostname == "" {
		id.Hostname, _ = os.Hostname()
	}

	ip, err := routedIP(ctx)
	if err != nil {
		ip, _ = PreferredHostIP()
	}
	if ip == "" {
		ip = "Unknown"
	}
	id.IP = ip
	id.Message = fmt.Sprintf("This is %s at %s", id.Hostname, id.IP)
	return id
}

// ConnectWiFi joins a network through NetworkManager.
func (p *Prober) ConnectWiFi(ctx context.Context, ssid, password string) (ConnectResult, error) {
	ssid = strings.TrimSpace(ssid)
	if ssid == "" {
		return ConnectResult{}, ErrMissingSSID
	}
	if p.opts.GOOS != "linux" {
		return ConnectResult{}, fmt.Errorf("wifi connect: %w: %s", ErrUnsupportedPlatform, p.opts.GOOS)
	}

	args := []string{"device", "wifi", "connect", ssid}
	if password = strings.TrimSpace(password); password != "" {
		args = append(args, "password", password)
	}
	out, err := p.runner.Run(ctx, "nmcli", args...)
	if err != nil {
		return ConnectResult{}, fmt.Errorf("failed to connect: %w", err)
	}

	res := ConnectResult{SSID: ssid, Output: strings.TrimSpace(string(out))}
	res.LocalIP = p.NetworkStatus(ctx).LocalIP
	return res, nil
}

func routedIP(ctx context.Context) (string, error) {
	d := net.Dialer{Timeout: 3 * time.Second}
	conn, err := d.DialContext(ctx, "udp", connectivityTarget)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address %v", conn.LocalAddr())
	}
	return addr.IP.String(), nil
}

// PreferredHostIP scans up interfaces for a LAN-looking IPv4 address.
func PreferredHostIP() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch a := addr.(type) {
			case *net.IPNet:
				ip = a.IP
			case *net.IPAddr:
				ip = a.IP
			default:
				continue
			}
			candidates = append(candidates, ip)
		}
	}
	return pickHostIP(candidates), nil
}

func pickHostIP(ips []net.IP) string {
	var candidates []net.IP
	for _, ip := range ips {
		ip = ip.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			continue
		}
		candidates = append(candidates, ip)
	}

	for _, ip := range candidates {
		if ip[0] == 192 && ip[1] == 168 && ip[2] == 1 {
			return ip.String()
		}
	}
	for _, ip := range candidates {
		if ip[0] == 192 && ip[1] == 168 {
			return ip.String()
		}
	}
	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return ""
}
