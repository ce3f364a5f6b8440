package watchdog

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Sly695/GymEasIA/internal/config"
	"github.com/Sly695/GymEasIA/internal/models"
	"github.com/Sly695/GymEasIA/internal/repository"
)

// StuckLister reports videos sitting in PROCESSING past a cutoff.
type StuckLister interface {
	ListStuck(ctx context.Context, olderThan time.Time) ([]models.Video, error)
}

// Watchdog periodically logs videos stuck in PROCESSING. A crash during
// processing leaves a video in that state with no result and no automatic
// recovery; the watchdog surfaces those for operators instead of silently
// resetting them.
type Watchdog struct {
	videos    StuckLister
	logger    *zap.Logger
	cron      *cron.Cron
	schedule  string
	threshold time.Duration
}

// New builds a Watchdog.
func New(videos StuckLister, cfg config.WatchdogConfig, logger *zap.Logger) *Watchdog {
	return &Watchdog{
		videos:    videos,
		logger:    logger,
		cron:      cron.New(),
		schedule:  cfg.Schedule,
		threshold: cfg.StuckThreshold,
	}
}

// Start schedules the periodic sweep.
func (w *Watchdog) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.sweep); err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (w *Watchdog) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *Watchdog) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-w.threshold)
	stuck, err := w.videos.ListStuck(ctx, cutoff)
	if err != nil {
		w.logger.Error("stuck-video sweep failed", zap.Error(err))
		return
	}

	for _, video := range stuck {
		w.logger.Warn("video stuck in PROCESSING",
			zap.String("video_id", video.ID.String()),
			zap.String("user_id", video.UserID.String()),
			zap.Time("updated_at", video.UpdatedAt),
			zap.Duration("stuck_for", time.Since(video.UpdatedAt)),
		)
	}
}

var _ StuckLister = (*repository.VideoRepository)(nil)
