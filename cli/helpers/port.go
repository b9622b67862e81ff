package helpers

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// EnsurePortAvailable fails when host:port is already bound.
func EnsurePortAvailable(ctx context.Context, host string, port int) error {
	addr := formatAddress(host, port)
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is not available on %s: %w", port, host, err)
	}
	return listener.Close()
}

func formatAddress(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
