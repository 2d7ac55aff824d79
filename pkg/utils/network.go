package utils

import (
	"net"
	"regexp"
	"strings"
)

var loopbackRe = regexp.MustCompile(`(?i)^(?:localhost|[0:]+1|(?:[0:]+ffff:)?(?:7f00:1|127(?:\.\d+){1,3}))$`)

// IsLoopback reports whether host is only reachable from this machine.
func IsLoopback(host string) bool {
	return loopbackRe.MatchString(strings.Trim(host, "[]"))
}

// LANAddress returns the first non-internal IPv4 address of this machine.
func LANAddress() (string, bool) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", false
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String(), true
		}
	}
	return "", false
}
