package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stopRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *stopRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

type blockingService struct {
	name    string
	stopErr error
	rec     *stopRecorder
}

func (s *blockingService) Name() string { return s.name }

func (s *blockingService) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (s *blockingService) Stop(context.Context) error {
	s.rec.record(s.name)
	return s.stopErr
}

type failingService struct{ rec *stopRecorder }

func (failingService) Name() string { return "failing" }

func (failingService) Start(context.Context) error { return errors.New("listen failed") }

func (s failingService) Stop(context.Context) error {
	s.rec.record("failing")
	return nil
}

func TestRunnerStopsServicesInReverseOrder(t *testing.T) {
	rec := &stopRecorder{}
	runner := NewRunner(&blockingService{name: "http", rec: rec}, &blockingService{name: "worker", rec: rec})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.Equal(t, []string{"worker", "http"}, rec.order)
}

func TestRunnerReturnsFirstServiceError(t *testing.T) {
	rec := &stopRecorder{}
	runner := NewRunner(&blockingService{name: "http", rec: rec}, failingService{rec: rec})

	err := runner.Run(context.Background(), time.Second, nil)
	require.EqualError(t, err, "failing: listen failed")
	assert.ElementsMatch(t, []string{"http", "failing"}, rec.order)
}

func TestRunnerJoinsStopErrors(t *testing.T) {
	rec := &stopRecorder{}
	flushErr := errors.New("flush failed")
	runner := NewRunner(&blockingService{name: "worker", stopErr: flushErr, rec: rec})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runner.Run(ctx, time.Second, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, flushErr)
	assert.Contains(t, err.Error(), "stop worker")
}

func TestRunnerRejectsNilService(t *testing.T) {
	err := NewRunner(nil).Run(context.Background(), time.Second, nil)
	require.EqualError(t, err, "service #0 is nil")

	err = NewRunner().Run(context.Background(), time.Second, nil)
	require.Error(t, err)
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	_, _, err := BuildRunner(nil, ModeAll)
	require.Error(t, err)
}

func TestModeSelection(t *testing.T) {
	assert.True(t, validMode(ModeWorker))
	assert.False(t, validMode("cron"))
	assert.True(t, runsAPI(ModeAll))
	assert.False(t, runsAPI(ModeWorker))
	assert.True(t, runsWorker(ModeWorker))
	assert.False(t, runsWorker(ModeAPI))

	opts := normalizeOptions(Options{})
	assert.Equal(t, ModeAll, opts.Mode)
	assert.Equal(t, defaultStopTimeout, opts.ShutdownTimeout)
	assert.NotNil(t, opts.Logger)
}
