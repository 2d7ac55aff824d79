package server

import (
	"fmt"
	"net"
	"strconv"

	"livedev/internal/logging"
)

// listen binds host:port. If that fails it tries once more with an
// OS-assigned port, and only the second failure is returned.
func listen(host string, port int, logger *logging.Logger) (net.Listener, error) {
	address := net.JoinHostPort(host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", address)
	if err == nil {
		return ln, nil
	}
	if port == 0 {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	logger.Warning(fmt.Sprintf("Port %d is busy, reconfiguring", port), map[string]interface{}{
		"error": err,
	})

	ln, retryErr := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if retryErr != nil {
		return nil, fmt.Errorf("listen on %s: %w (retry on ephemeral port: %v)", address, err, retryErr)
	}

	logger.Info("Bound to ephemeral port", map[string]interface{}{
		"requested": port,
		"port":      ln.Addr().(*net.TCPAddr).Port,
	})
	return ln, nil
}
