// Package jobs contains the work the daemon runs on its daily schedules.
package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/rupamsaini/interviewprep/internal/preferences"
	"github.com/rupamsaini/interviewprep/internal/question"
)

//go:generate mockgen -source=notification.go -destination=../mocks/jobs/mock_notifier.go -package=mock_jobs

// Notifier delivers the daily question to the user.
type Notifier interface {
	Notify(ctx context.Context, q question.Question) error
}

// ConsoleNotifier prints the question to a terminal.
type ConsoleNotifier struct {
	writer io.Writer
	title  *color.Color
	meta   *color.Color
}

func NewConsoleNotifier(writer io.Writer) *ConsoleNotifier {
	if writer == nil {
		writer = os.Stdout
	}
	return &ConsoleNotifier{
		writer: writer,
		title:  color.New(color.Bold, color.FgCyan),
		meta:   color.New(color.Faint),
	}
}

func (n *ConsoleNotifier) Notify(_ context.Context, q question.Question) error {
	if _, err := n.title.Fprintln(n.writer, "Time for a quick question!"); err != nil {
		return fmt.Errorf("title.Fprintln > %w", err)
	}
	if _, err := fmt.Fprintln(n.writer, q.Question); err != nil {
		return fmt.Errorf("fmt.Fprintln > %w", err)
	}
	if _, err := n.meta.Fprintf(n.writer, "Category: %s | Difficulty: %s | id: %d\n", q.Category, q.Difficulty, q.ID); err != nil {
		return fmt.Errorf("meta.Fprintf > %w", err)
	}
	return nil
}

// NotificationJob sends one random question unless notifications are off or it is a weekend in weekend mode.
type NotificationJob struct {
	repository  question.Repository
	preferences *preferences.Preferences
	notifier    Notifier
	now         func() time.Time
	location    *time.Location
}

func NewNotificationJob(
	repository question.Repository,
	prefs *preferences.Preferences,
	notifier Notifier,
	now func() time.Time,
	location *time.Location,
) *NotificationJob {
	if now == nil {
		now = time.Now
	}
	if location == nil {
		location = time.Local
	}
	return &NotificationJob{
		repository:  repository,
		preferences: prefs,
		notifier:    notifier,
		now:         now,
		location:    location,
	}
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// Run reports whether a notification was sent.
func (job *NotificationJob) Run(ctx context.Context) (bool, error) {
	enabled, err := job.preferences.DailyNotificationEnabled(ctx)
	if err != nil {
		return false, fmt.Errorf("preferences.DailyNotificationEnabled > %w", err)
	}
	if !enabled {
		return false, nil
	}

	weekendMode, err := job.preferences.WeekendModeEnabled(ctx)
	if err != nil {
		return false, fmt.Errorf("preferences.WeekendModeEnabled > %w", err)
	}
	if weekendMode && isWeekend(job.now().In(job.location)) {
		slog.Default().Debug("skip notification on weekend")
		return false, nil
	}

	q, err := job.repository.GetRandom(ctx, question.RandomQuery{})
	if err != nil {
		return false, fmt.Errorf("repository.GetRandom > %w", err)
	}
	if q == nil {
		slog.Default().Info("no question to notify")
		return false, nil
	}
	if err := job.notifier.Notify(ctx, *q); err != nil {
		return false, fmt.Errorf("notifier.Notify(%d) > %w", q.ID, err)
	}
	return true, nil
}
