package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Device represents a KLF gateway found on the local network.
type Device struct {
	Serial       string            // Four hex digits from the VELUX_KLF_LAN_XXXX name
	Hostname     string            // mDNS host name (e.g., "VELUX_KLF_LAN_1A2B.local.")
	IP           string            // IPv4 address when available, IPv6 otherwise
	Port         int               // API port, always DefaultPort
	WebPort      int               // Port of the advertised web interface
	Metadata     map[string]string // TXT record key/value pairs
	DiscoveredAt time.Time
}

// String returns a human-readable representation of the device.
func (d *Device) String() string {
	return fmt.Sprintf("KLF Gateway %s (%s) at %s", d.Serial, d.Hostname, d.Address())
}

// Address returns the host:port of the gateway's API endpoint.
func (d *Device) Address() string {
	port := d.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(d.IP, strconv.Itoa(port))
}

// GetMetadata retrieves a specific TXT record value.
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
