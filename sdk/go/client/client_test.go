package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/planetoid/internal/core/observability/log"
)

func testConfig(ts *httptest.Server) Config {
	cfg := DefaultClientConfig()
	cfg.ServerURL = "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	cfg.ConnectTimeout = 100 * time.Millisecond
	return cfg
}

func TestConnectTimesOutWithoutWelcome(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-release
	}))
	defer ts.Close()
	defer close(release)

	c := NewClient(testConfig(ts), log.NewNop())
	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrConnectionTimeout)
}

func TestConnectRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewClient(testConfig(ts), log.NewNop())
	err := c.Connect(context.Background())
	assert.ErrorIs(t, err, ErrRejected)
	assert.NotErrorIs(t, err, ErrConnectionTimeout)
}

func TestConnectAfterClose(t *testing.T) {
	c := NewClient(DefaultClientConfig(), log.NewNop())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Connect(context.Background()), ErrClientClosed)
}
