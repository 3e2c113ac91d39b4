package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/horizon-colors/internal/colors"
)

type countingRunner struct {
	calls int
	err   error
}

func (r *countingRunner) RunOnce(context.Context) (colors.Key, error) {
	r.calls++
	return colors.Key{Date: "2025-09-28", Slot: "22-45"}, r.err
}

func TestCronSpec(t *testing.T) {
	assert.Equal(t, "*/15 * * * *", cronSpec(15))
	assert.Equal(t, "*/7 * * * *", cronSpec(7))
	assert.Equal(t, "0 * * * *", cronSpec(60))
}

func TestTickToleratesRunnerErrors(t *testing.T) {
	for _, err := range []error{nil, colors.ErrUpdateInProgress, errors.New("boom")} {
		r := &countingRunner{err: err}
		s := New(r, 15, time.UTC, zaptest.NewLogger(t))
		s.tick()
		assert.Equal(t, 1, r.calls)
	}
}

func TestStartSchedulesNextBoundary(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)

	s := New(&countingRunner{}, 15, loc, zaptest.NewLogger(t))
	require.NoError(t, s.Start())
	defer s.Stop()

	next := s.job.NextRun().In(loc)
	assert.Zero(t, next.Minute()%15)
	assert.Zero(t, next.Second())
}
