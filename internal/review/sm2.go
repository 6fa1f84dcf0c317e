// Package review schedules question reviews with the SM-2 algorithm.
package review

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rupamsaini/interviewprep/internal/question"
)

// Quality grades a recall, 0 (complete blackout) to 5 (perfect response).
const (
	QualityBlackout = 0
	QualityWrong    = 1
	QualityAgain    = 2
	QualityHard     = 3
	QualityGood     = 4
	QualityEasy     = 5

	// PassThreshold is the lowest quality that counts as a successful recall.
	PassThreshold = 3
)

// ErrInvalidQuality is returned for a quality outside [0, 5].
var ErrInvalidQuality = errors.New("quality must be between 0 and 5")

// Labels are the button labels shown to users for the common grades.
var Labels = map[int]string{
	QualityAgain: "Again",
	QualityHard:  "Hard",
	QualityGood:  "Good",
	QualityEasy:  "Easy",
}

// Scheduler computes the next SM-2 state of a question.
type Scheduler struct {
	now func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the clock the next review date is computed from.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a Scheduler using time.Now unless overridden.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateQuality returns ErrInvalidQuality when quality is out of range.
func ValidateQuality(quality int) error {
	if quality < QualityBlackout || quality > QualityEasy {
		return fmt.Errorf("quality %d: %w", quality, ErrInvalidQuality)
	}
	return nil
}

// UpdateEasinessFactor applies the SM-2 EF delta for quality and floors the result at the minimum EF.
func UpdateEasinessFactor(ef float64, quality int) float64 {
	if ef == 0 {
		ef = question.DefaultEasinessFactor
	}
	q := float64(quality)
	newEF := ef + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	return math.Max(newEF, question.MinEasinessFactor)
}

// NextInterval returns the interval in days for a passing recall at the given repetition count.
// Fractional intervals round half up.
func NextInterval(repetition, interval int, ef float64) int {
	switch repetition {
	case 0:
		return 1
	case 1:
		return 6
	default:
		return int(math.Floor(float64(interval)*ef + 0.5))
	}
}

// NextState returns the SM-2 state after a review graded with quality.
func (s *Scheduler) NextState(q question.Question, quality int) (question.State, error) {
	if err := ValidateQuality(quality); err != nil {
		return question.State{}, err
	}

	ef := q.EasinessFactor
	if ef == 0 {
		ef = question.DefaultEasinessFactor
	}

	var next question.State
	if quality >= PassThreshold {
		next.Interval = NextInterval(q.Repetition, q.Interval, ef)
		next.Repetition = q.Repetition + 1
	} else {
		next.Repetition = 0
		next.Interval = 1
	}
	next.EasinessFactor = UpdateEasinessFactor(ef, quality)
	next.NextReviewDate = s.now().AddDate(0, 0, next.Interval)
	return next, nil
}

// Apply returns a copy of q with its SM-2 state advanced. No other field changes.
func (s *Scheduler) Apply(q question.Question, quality int) (question.Question, error) {
	next, err := s.NextState(q, quality)
	if err != nil {
		return q, err
	}
	q.State = next
	return q, nil
}

// IsDue reports whether q should be reviewed at now. A question never reviewed is always due.
func IsDue(q question.Question, now time.Time) bool {
	return q.NextReviewDate.IsZero() || !q.NextReviewDate.After(now)
}
