package injector

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/planetoid/internal/config"
)

func TestInitializeAppRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Server.WebSocketAddr = "127.0.0.1:0"
	cfg.Server.QUICAddr = ""
	cfg.Log.Level = "error"

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, cfg.Simulation.Manager, app.Manager.Config())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool { return app.Server.Addr() != nil }, 3*time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + app.Server.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, app.Server.GetStats().Running)
}

func TestInitializeAppRejectsBadLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "loud"

	_, _, err := InitializeApp(cfg)
	assert.Error(t, err)
}
