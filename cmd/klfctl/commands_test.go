package main

import (
	"testing"

	"github.com/muurk/klfgate/internal/klf"
)

func TestParseNode(t *testing.T) {
	tests := []struct {
		in      string
		want    byte
		wantErr bool
	}{
		{"0", 0, false},
		{"199", 199, false},
		{"200", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseNode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseNode(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestPositionPercent(t *testing.T) {
	if got := positionPercent(klf.PositionMax); got != 100 {
		t.Errorf("positionPercent(max) = %v, want 100", got)
	}
	if got := positionPercent(0); got != 0 {
		t.Errorf("positionPercent(0) = %v, want 0", got)
	}
	if got := positionPercent(klf.PositionUnknown); got != -1 {
		t.Errorf("positionPercent(unknown) = %v, want -1", got)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"version", "scan", "info", "nodes", "position", "stop", "rename", "label", "scene",
		"monitor", "clock", "reboot", "trust", "discover", "remove", "leave-learn", "password"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
