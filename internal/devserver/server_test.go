package devserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tourcompanion/internal/testutil"
)

func TestServerStartAndShutdown(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Port = 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	server := NewServer(handler, cfg, testutil.NopLogger())
	require.NoError(t, server.Listen())

	done := make(chan error, 1)
	go func() { done <- server.Start() }()

	resp, err := http.Get("http://" + server.Addr() + "/anything")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
