package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classbuzz/internal/config"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

var testClockStart = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func newTestConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.StaticDir = t.TempDir()
	cfg.InboxSize = 64
	return cfg
}

// startServer runs srv's dispatcher for the lifetime of the test and serves
// its handler on a loopback listener.
func startServer(t *testing.T, srv *Server) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: srv.Handler()},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := New(newTestConfig(t), zerolog.Nop(), clockwork.NewFakeClockAt(testClockStart))
	return startServer(t, srv)
}
