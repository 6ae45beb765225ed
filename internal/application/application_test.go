package application

import (
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/grcstudio/transport-planner/internal/config"
	"github.com/grcstudio/transport-planner/internal/planner"
)

func TestNewInitializesDependencies(t *testing.T) {
	cfg := baseTestConfig(":8085")
	cfg.Limits.BedWidth = 2600
	logger := zaptest.NewLogger(t)

	app, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	limits, err := app.storage.GetLimits()
	if err != nil {
		t.Fatalf("GetLimits returned error: %v", err)
	}
	if limits.BedWidth != 2600 {
		t.Fatalf("expected configured bed width 2600, got %v", limits.BedWidth)
	}
	if app.server == nil || app.router == nil || app.handler == nil {
		t.Fatalf("expected server, router, and handler to be initialized")
	}
	if app.Server() != app.server {
		t.Fatalf("Server accessor did not return underlying instance")
	}
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := baseTestConfig("9090")
	handler := http.NewServeMux()

	server := NewServer(cfg, handler)
	if server.Addr != ":9090" {
		t.Fatalf("expected address :9090, got %s", server.Addr)
	}
	if server.Handler != handler {
		t.Fatalf("expected handler to be applied")
	}
	if server.ReadHeaderTimeout != cfg.ReadHeaderTimeout ||
		server.WriteTimeout != cfg.WriteTimeout ||
		server.IdleTimeout != cfg.IdleTimeout {
		t.Fatalf("server timeouts do not match configuration")
	}
}

func TestNewReturnsErrorForInvalidLimits(t *testing.T) {
	cfg := baseTestConfig(":0")
	cfg.Limits = planner.Limits{}

	if _, err := New(cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatalf("expected error for invalid packing limits")
	}
}

func baseTestConfig(port string) config.Config {
	return config.Config{
		Port:                 port,
		Limits:               planner.DefaultLimits(),
		Spacing:              100,
		ShutdownGracePeriod:  50 * time.Millisecond,
		ReadHeaderTimeout:    20 * time.Millisecond,
		WriteTimeout:         30 * time.Millisecond,
		IdleTimeout:          40 * time.Millisecond,
		EnableRequestLogging: false,
		RateLimitRPS:         0,
		RateLimitBurst:       0,
	}
}
