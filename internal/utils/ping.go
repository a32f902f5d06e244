package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// DefaultPingTimeout bounds each dependency check in the health probe
const DefaultPingTimeout = 1500 * time.Millisecond

// PingService checks that the host of a service URL accepts TCP connections
func PingService(ctx context.Context, serviceURL string, timeout time.Duration) error {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	port := u.Port()
	if port == "" {
		port = "80"
		if u.Scheme == "https" {
			port = "443"
		}
	}
	return PingAddress(ctx, net.JoinHostPort(u.Hostname(), port), timeout)
}

// PingAddress dials host:port over TCP within timeout or the context deadline,
// whichever comes first. A URL is accepted too.
func PingAddress(ctx context.Context, address string, timeout time.Duration) error {
	if strings.Contains(address, "://") {
		return PingService(ctx, address, timeout)
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}
