package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
}

func TestLifecycleStartsAndStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	svc1 := &mockService{}
	svc2 := &mockService{}
	lc.Add("api", svc1)
	lc.Add("metrics", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- lc.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycleReturnsServiceFailure(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("address in use")
	healthy := &mockService{}
	lc.Add("healthy", healthy)
	lc.Add("broken", &mockService{startFn: func() error { return boom }})

	err := lc.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, healthy.stopped.Load())
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}

func TestHTTPServiceCleanShutdown(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	svc := NewHTTPService(srv, time.Second)

	var (
		wg       sync.WaitGroup
		startErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		startErr = svc.Start()
	}()

	time.Sleep(50 * time.Millisecond)
	svc.Stop()
	wg.Wait()
	assert.NoError(t, startErr)
}
