//go:build unit

package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"cinema-reservation/internal/usecase/commands"
	"cinema-reservation/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExpiration struct {
	calls  atomic.Int32
	report commands.ExpireReport
	err    error
}

func (c *countingExpiration) ExpireDue(context.Context) (commands.ExpireReport, error) {
	c.calls.Add(1)
	return c.report, c.err
}

func TestReaper_StartStop(t *testing.T) {
	exp := &countingExpiration{report: commands.ExpireReport{Found: 1, Expired: 1}}
	r := worker.NewReaper(exp, 10*time.Millisecond, nil, nil)

	r.Start()
	r.Start()

	assert.Eventually(t, func() bool { return exp.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))

	stopped := exp.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, exp.calls.Load())

	assert.NoError(t, r.Stop(ctx))
}

func TestReaper_SweepSurvivesFailure(t *testing.T) {
	exp := &countingExpiration{err: errors.New("database unavailable")}
	r := worker.NewReaper(exp, time.Hour, nil, nil)

	assert.NotPanics(t, func() {
		r.Sweep(context.Background())
		r.Sweep(context.Background())
	})
	assert.Equal(t, int32(2), exp.calls.Load())
}
