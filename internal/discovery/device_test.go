package discovery

import (
	"testing"
)

func TestDevice_String(t *testing.T) {
	device := &Device{
		Serial:   "1A2B",
		Hostname: "VELUX_KLF_LAN_1A2B.local.",
		IP:       "192.168.1.50",
		Port:     DefaultPort,
	}

	expected := "KLF Gateway 1A2B (VELUX_KLF_LAN_1A2B.local.) at 192.168.1.50:51200"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_Address(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{
			name:     "api port",
			device:   &Device{IP: "192.168.1.50", Port: 51200},
			expected: "192.168.1.50:51200",
		},
		{
			name:     "zero port uses default",
			device:   &Device{IP: "10.0.0.5"},
			expected: "10.0.0.5:51200",
		},
		{
			name:     "ipv6",
			device:   &Device{IP: "fe80::1", Port: 51200},
			expected: "[fe80::1]:51200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.Address(); got != tt.expected {
				t.Errorf("Device.Address() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{
		Metadata: map[string]string{"path": "/"},
	}

	if got := device.GetMetadata("path"); got != "/" {
		t.Errorf("Device.GetMetadata(path) = %v, want /", got)
	}
	if got := device.GetMetadata("missing"); got != "" {
		t.Errorf("Device.GetMetadata(missing) = %v, want empty", got)
	}

	empty := &Device{}
	if got := empty.GetMetadata("anything"); got != "" {
		t.Errorf("Device.GetMetadata() with nil map = %v, want empty string", got)
	}
}
