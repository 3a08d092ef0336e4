package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/greencart/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name     string
	startErr error
	block    bool

	mu      sync.Mutex
	stopped bool
	order   *[]string
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return nil
	}
	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	return nil
}

func TestRunnerStopsAllWhenOneServiceFails(t *testing.T) {
	var order []string
	failing := &fakeService{name: "http", startErr: errors.New("bind failed"), order: &order}
	blocking := &fakeService{name: "worker", block: true, order: &order}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http: bind failed")
	assert.True(t, failing.stopped)
	assert.True(t, blocking.stopped)
	assert.Equal(t, []string{"worker", "http"}, order)
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	svc := &fakeService{name: "http", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	require.NoError(t, NewRunner(svc).Run(ctx, time.Second, nil))
	assert.True(t, svc.stopped)
}

func TestRunnerRejectsEmptyAndNil(t *testing.T) {
	assert.Error(t, NewRunner().Run(context.Background(), time.Second, nil))
	assert.Error(t, NewRunner(nil).Run(context.Background(), time.Second, nil))
	assert.Error(t, RunWithOptions(nil, Options{}))
}

func TestBuildRunnerModes(t *testing.T) {
	_, err := BuildRunner(nil, ModeAll)
	assert.Error(t, err)

	cfg := &config.Config{}
	_, err = BuildRunner(cfg, "cron")
	assert.ErrorContains(t, err, "unknown run mode")

	_, err = BuildRunner(cfg, ModeWorker)
	assert.ErrorContains(t, err, "queue.enabled")
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	assert.Equal(t, ModeAll, opts.Mode)
	assert.Equal(t, 10*time.Second, opts.ShutdownTimeout)
	assert.NotNil(t, opts.Logger)
}
