package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-records/internal/config"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestRunServerReturnsListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	done := make(chan error, 1)
	go func() { done <- runServer(context.Background(), newTestApp(), busy.Addr().String()) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, busy.Addr().String())
	case <-time.After(5 * time.Second):
		t.Fatal("runServer kept waiting after the listener failed")
	}
}

func TestRunServerStopsOnCancel(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := free.Addr().String()
	require.NoError(t, free.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, newTestApp(), addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("runServer did not return after cancel")
	}
}

func TestPoolConfigFromAppConfig(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("DB_MAX_IDLE_CONNS", "2")

	cmdCfg, err := config.Load("")
	require.NoError(t, err)

	pool := poolConfig(cmdCfg)
	assert.Equal(t, 4, pool.MaxOpenConns)
	assert.Equal(t, 2, pool.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, pool.ConnMaxLifetime)
}
