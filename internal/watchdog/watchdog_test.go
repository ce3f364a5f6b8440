package watchdog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Sly695/GymEasIA/internal/config"
	"github.com/Sly695/GymEasIA/internal/models"
)

type stubLister struct {
	videos    []models.Video
	err       error
	gotCutoff time.Time
}

func (s *stubLister) ListStuck(ctx context.Context, olderThan time.Time) ([]models.Video, error) {
	s.gotCutoff = olderThan
	return s.videos, s.err
}

func TestSweepReportsStuckVideos(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lister := &stubLister{videos: []models.Video{
		{
			ID:        uuid.New(),
			UserID:    uuid.New(),
			Status:    models.VideoStatusProcessing,
			UpdatedAt: time.Now().Add(-2 * time.Hour),
		},
	}}

	w := New(lister, config.WatchdogConfig{
		Schedule:       "@every 5m",
		StuckThreshold: 30 * time.Minute,
	}, zap.New(core))

	w.sweep()

	if logs.FilterMessage("video stuck in PROCESSING").Len() != 1 {
		t.Fatalf("expected one stuck-video warning, got %d", logs.Len())
	}

	// The cutoff must trail now by the configured threshold.
	drift := time.Since(lister.gotCutoff) - 30*time.Minute
	if drift < 0 || drift > time.Minute {
		t.Errorf("unexpected cutoff: %s", lister.gotCutoff)
	}
}

func TestSweepLogsListerFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	lister := &stubLister{err: errors.New("db down")}

	w := New(lister, config.WatchdogConfig{
		Schedule:       "@every 5m",
		StuckThreshold: 30 * time.Minute,
	}, zap.New(core))

	w.sweep()

	if logs.FilterMessage("stuck-video sweep failed").Len() != 1 {
		t.Fatal("expected sweep failure to be logged")
	}
}
