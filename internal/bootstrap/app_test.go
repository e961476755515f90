package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/astro-profile/internal/infra/config"
)

func TestApp_RunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	cfg := &config.Config{HTTP: config.HTTPConfig{Address: addr}}
	server := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunReportsListenError(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "bad-address"}}
	server := &http.Server{Addr: "bad-address"}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server)

	err := app.Run(context.Background())
	require.Error(t, err)
}
