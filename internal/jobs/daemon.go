package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rupamsaini/interviewprep/internal/periodic"
	"github.com/rupamsaini/interviewprep/internal/preferences"
)

// Daemon keeps the periodic schedules in line with the user's preferences.
type Daemon struct {
	scheduler    *periodic.Scheduler
	preferences  *preferences.Preferences
	notification *NotificationJob
	deletion     *DeletionJob
	syncInterval time.Duration
}

func NewDaemon(
	scheduler *periodic.Scheduler,
	prefs *preferences.Preferences,
	notification *NotificationJob,
	deletion *DeletionJob,
	syncInterval time.Duration,
) *Daemon {
	if syncInterval <= 0 {
		syncInterval = time.Minute
	}
	return &Daemon{
		scheduler:    scheduler,
		preferences:  prefs,
		notification: notification,
		deletion:     deletion,
		syncInterval: syncInterval,
	}
}

func (d *Daemon) runNotification(ctx context.Context) {
	if _, err := d.notification.Run(ctx); err != nil {
		slog.Default().Error("notification job failed", "error", err)
	}
}

func (d *Daemon) runDeletion(ctx context.Context) {
	if _, err := d.deletion.Run(ctx); err != nil {
		slog.Default().Error("deletion job failed", "error", err)
	}
}

// Sync schedules or cancels both jobs to match the stored preferences.
func (d *Daemon) Sync(ctx context.Context) error {
	enabled, err := d.preferences.DailyNotificationEnabled(ctx)
	if err != nil {
		return fmt.Errorf("preferences.DailyNotificationEnabled > %w", err)
	}
	hour, minute, err := d.preferences.NotificationTime(ctx)
	if err != nil {
		return fmt.Errorf("preferences.NotificationTime > %w", err)
	}
	if err := d.sync(periodic.KindNotification, enabled, hour, minute, d.runNotification); err != nil {
		return err
	}

	scheduled, err := d.preferences.AutoDeleteScheduled(ctx)
	if err != nil {
		return fmt.Errorf("preferences.AutoDeleteScheduled > %w", err)
	}
	hour, minute, err = d.preferences.AutoDeleteTime(ctx)
	if err != nil {
		return fmt.Errorf("preferences.AutoDeleteTime > %w", err)
	}
	return d.sync(periodic.KindAutoDelete, scheduled, hour, minute, d.runDeletion)
}

func (d *Daemon) sync(kind periodic.Kind, enabled bool, hour, minute int, task periodic.Task) error {
	if !enabled {
		d.scheduler.CancelDaily(kind)
		return nil
	}
	if h, m, ok := d.scheduler.Scheduled(kind); ok && h == hour && m == minute {
		return nil
	}
	if err := d.scheduler.ScheduleDaily(kind, hour, minute, task); err != nil {
		return fmt.Errorf("scheduler.ScheduleDaily(%s) > %w", kind, err)
	}
	return nil
}

// Run syncs immediately and then every sync interval until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.scheduler.Stop()

	if err := d.Sync(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(d.syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.Sync(ctx); err != nil {
				slog.Default().Warn("failed to sync schedules", "error", err)
			}
		}
	}
}
