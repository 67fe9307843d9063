package sequencer

import (
	"net"
	"os"
	"strings"
)

// IsLocalHost reports whether host refers to this machine: localhost, a
// loopback or unspecified (wildcard) address, the machine's own hostname,
// or an address bound to a local network interface.
func IsLocalHost(host string) bool {
	hostname, _ := os.Hostname()
	return isLocalHost(host, hostname, net.InterfaceAddrs)
}

func isLocalHost(host, hostname string, ifaceAddrs func() ([]net.Addr, error)) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	if h == "" || h == "localhost" {
		return true
	}
	if hostname != "" && strings.EqualFold(h, hostname) {
		return true
	}

	ip := net.ParseIP(h)
	if ip == nil {
		return false
	}
	if ip.IsLoopback() || ip.IsUnspecified() {
		return true
	}

	addrs, err := ifaceAddrs()
	if err != nil {
		return false
	}
	for _, addr := range addrs {
		var bound net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			bound = v.IP
		case *net.IPAddr:
			bound = v.IP
		}
		if bound != nil && bound.Equal(ip) {
			return true
		}
	}
	return false
}
