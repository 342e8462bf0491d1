package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/config"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/repositories/repomanager"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.LogLevel = "error"
	c.ShutdownTimeout = time.Second
	return c
}

func TestNewApp_MemoryStore(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, repomanager.DriverMemory, app.repos.Driver())
	assert.NotNil(t, app.reports)
	assert.False(t, app.verifier.Enabled())
}

func TestNewApp_UnknownDriver(t *testing.T) {
	c := testConfig()
	c.StoreDriver = "cassandra"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestNewApp_BadRedisURL(t *testing.T) {
	c := testConfig()
	c.RedisURL = "not-a-url://"

	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "redis url")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
