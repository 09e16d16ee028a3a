package main

import (
	"bytes"
	"errors"
	"flag"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-h"}, &out); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(out.String(), "Usage: shareit-gateway") {
		t.Errorf("usage not written: %q", out.String())
	}
}

func TestRunReturnsStartupErrors(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "gateway.log")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"relative server url", []string{"-s", "localhost:9090", "-l", logPath}, "must be absolute"},
		{"zero timeout", []string{"-t", "0s"}, "timeout must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
