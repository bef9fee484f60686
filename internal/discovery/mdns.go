package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the service the gateway advertises for its web interface.
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain.
	ServiceDomain = "local."

	// DefaultScanTimeout bounds a Scan when the context has no deadline.
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the TLS port of the KLF API.
	DefaultPort = 51200
)

// serialPattern matches gateway instance and host names such as
// "VELUX_KLF_LAN_1A2B" or "VELUX_KLF_LAN_1A2B.local.".
var serialPattern = regexp.MustCompile(`^VELUX_KLF_LAN_([0-9A-Fa-f]{4})(\.local\.?)?$`)

// Scanner browses mDNS for KLF gateways.
type Scanner struct {
	Timeout time.Duration
}

// NewScanner creates a scanner with the default timeout.
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses until ctx is done or the scanner timeout elapses and returns
// every gateway seen, deduplicated by serial.
func (s *Scanner) Scan(ctx context.Context) ([]*Device, error) {
	return s.browse(ctx, "")
}

// Find browses until a gateway with the given serial answers. The serial is
// compared case-insensitively.
func (s *Scanner) Find(ctx context.Context, serial string) (*Device, error) {
	devices, err := s.browse(ctx, serial)
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if strings.EqualFold(d.Serial, serial) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("gateway %s not found", serial)
}

// browse collects devices; a non-empty want stops the browse on first match.
func (s *Scanner) browse(ctx context.Context, want string) ([]*Device, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mDNS resolver: %w", err)
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	var (
		mu      sync.Mutex
		devices []*Device
		seen    = make(map[string]bool)
	)

	go func() {
		defer close(done)
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device == nil {
				continue
			}
			key := strings.ToUpper(device.Serial)
			mu.Lock()
			if !seen[key] {
				seen[key] = true
				devices = append(devices, device)
			}
			mu.Unlock()
			if want != "" && strings.EqualFold(device.Serial, want) {
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse mDNS services: %w", err)
	}

	<-ctx.Done()

	// The resolver closes entries once it observes the cancellation.
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]*Device(nil), devices...), nil
}

// parseServiceEntry converts an mDNS entry into a Device, or nil when the
// entry is not a KLF gateway.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	serial := matchSerial(entry.Instance)
	if serial == "" {
		serial = matchSerial(entry.HostName)
	}
	if serial == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	} else {
		return nil
	}

	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}

	return &Device{
		Serial:       strings.ToUpper(serial),
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         DefaultPort,
		WebPort:      entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

func matchSerial(name string) string {
	m := serialPattern.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// ScanForDevices is a convenience wrapper around Scanner.Scan.
func ScanForDevices(ctx context.Context, timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.Scan(ctx)
}

// FindGateway is a convenience wrapper around Scanner.Find.
func FindGateway(ctx context.Context, serial string, timeout time.Duration) (*Device, error) {
	scanner := NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	return scanner.Find(ctx, serial)
}
