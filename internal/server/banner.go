package server

import (
	"fmt"
	"net"
	"strconv"

	"livedev/pkg/utils"
)

func (s *Server) printBanner() {
	if s.Banner == nil {
		return
	}

	fmt.Fprintf(s.Banner, "Serving %s (Ctrl+C to quit)\n", s.resolver.Root)
	fmt.Fprintf(s.Banner, "  Local:   %s\n", s.urlLocked(s.config.Host))

	if utils.IsLoopback(s.config.Host) {
		return
	}
	if lan, ok := utils.LANAddress(); ok {
		fmt.Fprintf(s.Banner, "  Network: %s\n", s.urlLocked(lan))
	}
}

// urlLocked builds a URL without taking s.mu; Start calls it while holding
// the lock.
func (s *Server) urlLocked(host string) string {
	if host == "" {
		host = "localhost"
	}
	port := s.config.Port
	if s.listener != nil {
		if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
			port = addr.Port
		}
	}
	return fmt.Sprintf("%s://%s", s.protocol, net.JoinHostPort(host, strconv.Itoa(port)))
}
