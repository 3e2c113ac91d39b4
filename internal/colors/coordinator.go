package colors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/i474232898/horizon-colors/internal/civiltime"
)

// Coordinator runs the imaging pipeline and stores its result, allowing at
// most one run at a time. Triggers that arrive during a run are rejected with
// ErrUpdateInProgress; they are never queued.
type Coordinator struct {
	pipeline Pipeline
	store    Store
	conv     *civiltime.Converter
	labels   []string
	logger   *zap.Logger

	running *atomic.Bool
	now     func() time.Time // injectable for deterministic tests
}

// NewCoordinator creates an idle Coordinator. labels lists the regions every
// pipeline result must contain; nil accepts any non-empty result.
func NewCoordinator(pipeline Pipeline, store Store, conv *civiltime.Converter, labels []string, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		pipeline: pipeline,
		store:    store,
		conv:     conv,
		labels:   labels,
		logger:   logger.Named("coordinator"),
		running:  atomic.NewBool(false),
		now:      time.Now,
	}
}

// Running reports whether a run is in flight.
func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// tryBegin moves Idle -> Running. It returns false if a run is in flight.
func (c *Coordinator) tryBegin() bool {
	return c.running.CAS(false, true)
}

// end moves Running -> Idle.
func (c *Coordinator) end() {
	c.running.Store(false)
}

// Trigger starts a run in the background and returns its ID without waiting
// for it to finish. The run's outcome is only logged.
func (c *Coordinator) Trigger() (string, error) {
	if !c.tryBegin() {
		return "", ErrUpdateInProgress
	}
	runID := uuid.NewString()
	go func() {
		defer c.end()
		// Detached from the caller: a run is never cancelled from outside.
		_, _ = c.run(context.Background(), runID)
	}()
	return runID, nil
}

// RefreshIfStale starts a background run when the store holds no snapshot or
// its newest snapshot is at least maxAge old. A store that cannot be read also
// gets a run. The running flag is not persisted, so this is how a run lost to
// a restart is made up. It reports the run ID and whether a run was started.
func (c *Coordinator) RefreshIfStale(maxAge time.Duration) (string, bool) {
	latest, err := c.store.Latest()
	switch {
	case errors.Is(err, ErrNotFound):
		c.logger.Info("store is empty, starting update")
	case err != nil:
		c.logger.Warn("could not read latest snapshot, starting update", zap.Error(err))
	case c.now().Sub(latest.Timestamp) < maxAge:
		c.logger.Info("latest snapshot is fresh", zap.String("key", latest.Key.String()))
		return "", false
	default:
		c.logger.Info("latest snapshot is stale, starting update",
			zap.String("key", latest.Key.String()),
			zap.Duration("age", c.now().Sub(latest.Timestamp)),
		)
	}

	runID, err := c.Trigger()
	if err != nil {
		c.logger.Warn("update not started", zap.Error(err))
		return "", false
	}
	return runID, true
}

// Wait blocks until no run is in flight or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for c.Running() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// RunOnce performs a run synchronously and returns the key it wrote.
func (c *Coordinator) RunOnce(ctx context.Context) (Key, error) {
	if !c.tryBegin() {
		return Key{}, ErrUpdateInProgress
	}
	defer c.end()
	return c.run(ctx, uuid.NewString())
}

func (c *Coordinator) run(ctx context.Context, runID string) (Key, error) {
	log := c.logger.With(zap.String("run_id", runID), zap.String("pipeline", c.pipeline.Name()))
	start := c.now()
	log.Info("update started")

	extracted, err := c.pipeline.Extract(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrPipeline, err)
		log.Error("update aborted, store unchanged", zap.Error(err))
		return Key{}, err
	}
	if err := c.checkResult(extracted); err != nil {
		err = fmt.Errorf("%w: %w", ErrPipeline, err)
		log.Error("update aborted, store unchanged", zap.Error(err))
		return Key{}, err
	}

	date, slot := c.conv.ToCivil(c.now())
	key := Key{Date: date, Slot: slot}
	if err := c.store.Write(key, extracted); err != nil {
		log.Error("update failed to write snapshot", zap.String("key", key.String()), zap.Error(err))
		return Key{}, err
	}

	log.Info("update stored snapshot",
		zap.String("key", key.String()),
		zap.Int("regions", len(extracted)),
		zap.Duration("took", c.now().Sub(start)),
	)
	return key, nil
}

// checkResult rejects malformed pipeline output.
func (c *Coordinator) checkResult(extracted Colors) error {
	if len(extracted) == 0 {
		return errors.New("no colors returned")
	}
	for _, label := range c.labels {
		if _, ok := extracted[label]; !ok {
			return fmt.Errorf("missing region %q", label)
		}
	}
	for label, hex := range extracted {
		if !ValidHex(hex) {
			return fmt.Errorf("region %q: malformed color %q", label, hex)
		}
	}
	return nil
}
