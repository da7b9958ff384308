package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/harplay/pkg/replay"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func TestServer_ServeAndShutdown(t *testing.T) {
	t.Parallel()

	store, _ := replay.Build(testRecords(), replay.AlwaysLast)
	ln, adminLn := listen(t), listen(t)

	srv := New(Config{Addr: ln.Addr().String(), AdminAddr: adminLn.Addr().String(), ShutdownTimeout: time.Second},
		NewHandler(store, HandlerOptions{}), NewAdminHandler(AdminOptions{Store: store}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, adminLn) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/items?x=1")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"items":[2]}`, string(body))
	assert.Equal(t, "13", resp.Header.Get("Content-Length"))

	resp, err = http.Get("http://" + adminLn.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = http.Get("http://" + ln.Addr().String() + "/api/items?x=1")
	assert.Error(t, err)
}

func TestServer_NoAdmin(t *testing.T) {
	t.Parallel()

	store, _ := replay.Build(testRecords(), replay.AlwaysFirst)
	ln := listen(t)
	srv := New(Config{Addr: ln.Addr().String()}, NewHandler(store, HandlerOptions{}), NewAdminHandler(AdminOptions{}), nil)
	assert.Nil(t, srv.admin)
	assert.Equal(t, DefaultShutdownTimeout, srv.cfg.ShutdownTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, nil) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/items/7")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "method is not part of the key")

	cancel()
	require.NoError(t, <-done)
}

func TestServer_RunListenError(t *testing.T) {
	t.Parallel()

	ln := listen(t)
	defer ln.Close()

	srv := New(Config{Addr: ln.Addr().String()}, http.NotFoundHandler(), nil, nil)
	err := srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}
