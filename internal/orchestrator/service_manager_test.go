package orchestrator

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceManagerServesUntilCancelled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	sm := NewServiceManager("127.0.0.1:0", handler)
	sm.ShutdownTimeout = time.Second
	require.NoError(t, sm.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sm.Run(ctx) }()

	resp, err := http.Get("http://" + sm.Addr() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServiceManagerListenError(t *testing.T) {
	first := NewServiceManager("127.0.0.1:0", http.NotFoundHandler())
	require.NoError(t, first.Listen())
	defer first.listener.Close()

	second := NewServiceManager(first.Addr(), http.NotFoundHandler())
	assert.Error(t, second.Run(context.Background()))
}

func TestSignalHandlerStop(t *testing.T) {
	sh := NewSignalHandler()
	cancelled := false
	sh.HandleSignals(func() { cancelled = true })
	sh.Stop()
	assert.False(t, cancelled)
}
