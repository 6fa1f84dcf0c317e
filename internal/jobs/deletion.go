package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rupamsaini/interviewprep/internal/preferences"
	"github.com/rupamsaini/interviewprep/internal/selection"
)

// ScopeDeleter deletes questions selected by a scope token. *selection.Policy satisfies it.
type ScopeDeleter interface {
	DeleteByScope(ctx context.Context, token string) int64
}

// DeletionJob deletes the questions in the user's auto-delete scope.
type DeletionJob struct {
	deleter     ScopeDeleter
	preferences *preferences.Preferences
}

func NewDeletionJob(deleter ScopeDeleter, prefs *preferences.Preferences) *DeletionJob {
	return &DeletionJob{
		deleter:     deleter,
		preferences: prefs,
	}
}

// Run returns the number of deleted questions.
func (job *DeletionJob) Run(ctx context.Context) (int64, error) {
	scope, err := job.preferences.AutoDeleteScope(ctx)
	if err != nil {
		return 0, fmt.Errorf("preferences.AutoDeleteScope > %w", err)
	}
	deleted := job.deleter.DeleteByScope(ctx, scope)
	slog.Default().Info("auto-deleted questions",
		"scope", selection.ScopeLabel(scope),
		"deleted", deleted,
	)
	return deleted, nil
}
