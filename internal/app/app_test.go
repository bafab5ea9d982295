package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fuguang-next/internal/config"
)

type recordingService struct {
	name     string
	startErr error
	block    bool

	mu    *sync.Mutex
	stops *[]string
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *recordingService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.stops = append(*s.stops, s.name)
	return nil
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker, "all": ModeAll}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRunnerStopsInReverseOrder(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	failure := errors.New("worker crashed")
	runner := NewRunner(
		&recordingService{name: "http", block: true, mu: &mu, stops: &stops},
		nil,
		&recordingService{name: "worker", startErr: failure, mu: &mu, stops: &stops},
	)
	if names := runner.Names(); len(names) != 2 {
		t.Fatalf("nil service should be skipped, got %v", names)
	}

	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, failure) {
		t.Fatalf("expected worker failure, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(stops) != 2 || stops[0] != "worker" || stops[1] != "http" {
		t.Fatalf("unexpected stop order %v", stops)
	}
}

func TestRunnerCancelledContextReturnsNil(t *testing.T) {
	var mu sync.Mutex
	var stops []string
	runner := NewRunner(&recordingService{name: "http", block: true, mu: &mu, stops: &stops})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}

func TestNormalizeOptionsUsesServerShutdownTimeout(t *testing.T) {
	opts := normalizeOptions(Options{Config: &config.Config{Server: config.ServerConfig{ShutdownTimeoutSeconds: 3}}})
	if opts.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", opts.ShutdownTimeout)
	}
	if opts.Mode != ModeAll || opts.Logger == nil {
		t.Fatalf("defaults not applied: %+v", opts)
	}
}

func TestNewHTTPServiceAppliesTimeouts(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "0", WriteTimeoutSeconds: 5}, nil)
	if svc.Addr() != "127.0.0.1:0" {
		t.Fatalf("unexpected addr %s", svc.Addr())
	}
	if svc.server.WriteTimeout != 5*time.Second || svc.server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts read=%v write=%v", svc.server.ReadTimeout, svc.server.WriteTimeout)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop before start failed: %v", err)
	}
}

func TestBuildRunnerRejectsBadInput(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := BuildRunner(&config.Config{}, "bogus"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
