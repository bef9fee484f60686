package config

import (
	"strings"
	"time"
)

// Registry represents the entire user configuration file.
// This stores user-defined metadata for gateways and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Gateways    map[string]*Gateway `yaml:"gateways,omitempty"` // Keyed by gateway serial (VELUX_KLF_LAN_xxxx suffix) or host
	Default     string              `yaml:"default,omitempty"`  // Key of the gateway used when --host is omitted
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Gateway represents user-defined metadata for a single KLF gateway.
type Gateway struct {
	Nickname    string            `yaml:"nickname,omitempty"`    // User-friendly name
	Host        string            `yaml:"host,omitempty"`        // Last known host name or IP address
	Port        int               `yaml:"port,omitempty"`        // 0 means the default port 51200
	Fingerprint string            `yaml:"fingerprint,omitempty"` // Pinned SHA-256 certificate fingerprint
	LastSeen    time.Time         `yaml:"last_seen,omitempty"`   // Last discovery/connection time
	Nodes       map[int]*NodeMeta `yaml:"nodes,omitempty"`       // Node metadata keyed by node id
}

// NodeMeta represents user-defined metadata for a single actuator.
// The gateway stores its own node name; these labels are client-side only.
type NodeMeta struct {
	Label string `yaml:"label"`          // User-defined label (e.g., "Bedroom skylight")
	Room  string `yaml:"room,omitempty"` // Optional room for grouping
	Type  string `yaml:"type,omitempty"` // Actuator type identifier (e.g., "window", "blind")
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool    `yaml:"auto_discover"`        // Enable automatic mDNS discovery when no host is known
	DiscoverTimeout int     `yaml:"discover_timeout"`     // mDNS discovery timeout in seconds
	RequestTimeout  int     `yaml:"request_timeout"`      // Confirmation timeout in seconds
	RateLimit       float64 `yaml:"rate_limit,omitempty"` // Maximum requests per second, 0 for unlimited
	KeepAlive       int     `yaml:"keep_alive,omitempty"` // Keepalive interval in seconds, 0 to disable
	TrustOnFirstUse bool    `yaml:"trust_on_first_use"`   // Pin the fingerprint of a gateway seen for the first time
	// Passwords are NEVER stored in the config file
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 5,
		RequestTimeout:  5,
		KeepAlive:       600,
		TrustOnFirstUse: true,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Gateways:    make(map[string]*Gateway),
		Preferences: defaultPreferences(),
	}
}

// GetGateway retrieves gateway metadata by key.
// Returns nil if the gateway doesn't exist in the registry.
func (r *Registry) GetGateway(key string) *Gateway {
	return r.Gateways[key]
}

// FindByHost returns the key and metadata of the gateway last seen at host.
func (r *Registry) FindByHost(host string) (string, *Gateway) {
	for key, gw := range r.Gateways {
		if strings.EqualFold(gw.Host, host) {
			return key, gw
		}
	}
	return "", nil
}

// EnsureGateway ensures a gateway entry exists in the registry.
// If the gateway doesn't exist, creates a new entry with default values.
func (r *Registry) EnsureGateway(key string) *Gateway {
	if r.Gateways == nil {
		r.Gateways = make(map[string]*Gateway)
	}

	if gw, exists := r.Gateways[key]; exists {
		return gw
	}

	gw := &Gateway{
		Nodes: make(map[int]*NodeMeta),
	}
	r.Gateways[key] = gw
	return gw
}

// UpdateLastSeen updates the last seen timestamp and host for a gateway.
func (r *Registry) UpdateLastSeen(key, host string) {
	gw := r.EnsureGateway(key)
	gw.LastSeen = time.Now()
	gw.Host = host
}

// PinFingerprint stores the certificate fingerprint of a gateway.
func (r *Registry) PinFingerprint(key, fingerprint string) {
	gw := r.EnsureGateway(key)
	gw.Fingerprint = fingerprint
}

// SetNodeLabel sets or updates the node metadata for a gateway.
func (r *Registry) SetNodeLabel(key string, node int, label, room, typ string) {
	gw := r.EnsureGateway(key)

	if gw.Nodes == nil {
		gw.Nodes = make(map[int]*NodeMeta)
	}

	gw.Nodes[node] = &NodeMeta{
		Label: label,
		Room:  room,
		Type:  typ,
	}
}

// NodeLabel returns the label of a node, or "" when none is set.
func (r *Registry) NodeLabel(key string, node int) string {
	gw := r.Gateways[key]
	if gw == nil || gw.Nodes[node] == nil {
		return ""
	}
	return gw.Nodes[node].Label
}

// SetGatewayNickname sets a user-friendly nickname for a gateway.
func (r *Registry) SetGatewayNickname(key, nickname string) {
	gw := r.EnsureGateway(key)
	gw.Nickname = nickname
}

// ForgetGateway removes a gateway and its pinned fingerprint.
func (r *Registry) ForgetGateway(key string) bool {
	if _, ok := r.Gateways[key]; !ok {
		return false
	}
	delete(r.Gateways, key)
	if r.Default == key {
		r.Default = ""
	}
	return true
}

// NodeTypeDefinitions maps actuator type identifiers to human-readable names.
// This is used for display and validation purposes.
var NodeTypeDefinitions = map[string]string{
	"window": "Window Opener",
	"blind":  "Interior Blind",
	"roller": "Roller Shutter",
	"awning": "Awning",
	"garage": "Garage Door",
	"light":  "Light",
	"on_off": "On/Off Switch",
	"other":  "Other",
}
