package config

import (
	"strings"
	"testing"
)

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"5000", 5000, false},
		{"1", 1, false},
		{"65535", 65535, false},
		{"0", 0, true},
		{"65536", 0, true},
		{"-1", 0, true},
		{"http", 0, true},
		{"", 0, true},
		{"80.5", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePort(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePort(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePort(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePort(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidMode(t *testing.T) {
	if !ValidMode(ModeLine) || !ValidMode(ModeChar) {
		t.Error("line and char must be valid modes")
	}
	for _, bad := range []string{"", "LINE", "byte", "raw"} {
		if ValidMode(bad) {
			t.Errorf("ValidMode(%q) = true", bad)
		}
	}
}

func TestValidate_Listen(t *testing.T) {
	cfg := &Config{Listen: true, LocalPort: 5000, Mode: DefaultMode}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid listen config rejected: %v", err)
	}
}

func TestValidate_ListenWithoutPort(t *testing.T) {
	cfg := &Config{Listen: true, Mode: DefaultMode}
	if err := cfg.Validate(); err == nil {
		t.Error("listen without -p must fail")
	}
}

func TestValidate_ListenWithDestination(t *testing.T) {
	cfg := &Config{Listen: true, LocalPort: 5000, Host: "example.com", Mode: DefaultMode}
	if err := cfg.Validate(); err == nil {
		t.Error("listen mode with a destination host must fail")
	}
}

func TestValidate_Connect(t *testing.T) {
	cfg := &Config{Host: "192.0.2.10", Port: 5000, Mode: ModeLine}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid connect config rejected: %v", err)
	}
}

func TestValidate_ConnectMissingPieces(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no host", Config{Port: 5000, Mode: DefaultMode}},
		{"no port", Config{Host: "example.com", Mode: DefaultMode}},
		{"port out of range", Config{Host: "example.com", Port: 70000, Mode: DefaultMode}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_BadMode(t *testing.T) {
	cfg := &Config{Host: "example.com", Port: 5000, Mode: "words"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected mode error")
	}
	if !strings.Contains(err.Error(), "mode") {
		t.Errorf("error should mention mode: %v", err)
	}
}
