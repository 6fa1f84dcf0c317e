package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=repository.go -destination=../mocks/question/mock_repository.go -package=mock_question

// Repository defines operations for managing questions.
type Repository interface {
	GetAll(ctx context.Context) ([]Question, error)
	GetByID(ctx context.Context, id int64) (*Question, error)
	GetByCategory(ctx context.Context, category string) ([]Question, error)
	GetDue(ctx context.Context, now time.Time) ([]Question, error)
	GetRandom(ctx context.Context, query RandomQuery) (*Question, error)
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, q *Question) error
	InsertAll(ctx context.Context, questions []Question) error
	Update(ctx context.Context, q Question) error
	Delete(ctx context.Context, id int64) error
	DeleteMatching(ctx context.Context, pred DeletionPredicate) (int64, error)
}

// questionRow is the table representation. Timestamps are epoch milliseconds, 0 means unset.
type questionRow struct {
	ID             int64          `db:"id"`
	Question       string         `db:"question"`
	Answer         string         `db:"answer"`
	Category       string         `db:"category"`
	Difficulty     string         `db:"difficulty"`
	Source         string         `db:"source"`
	Explanation    sql.NullString `db:"explanation"`
	CodeExample    sql.NullString `db:"code_example"`
	LastShownMs    int64          `db:"last_shown_ms"`
	UserRating     int            `db:"user_rating"`
	CreatedAtMs    int64          `db:"created_at_ms"`
	Repetition     int            `db:"repetition"`
	EasinessFactor float64        `db:"easiness_factor"`
	IntervalDays   int            `db:"interval_days"`
	NextReviewMs   int64          `db:"next_review_ms"`
}

const selectQuestions = `SELECT id, question, answer, category, difficulty, source, explanation, code_example,
	last_shown_ms, user_rating, created_at_ms, repetition, easiness_factor, interval_days, next_review_ms
	FROM questions`

const insertQuestion = `INSERT INTO questions (question, answer, category, difficulty, source, explanation, code_example,
	last_shown_ms, user_rating, created_at_ms, repetition, easiness_factor, interval_days, next_review_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (row questionRow) toQuestion() Question {
	return Question{
		ID:          row.ID,
		Question:    row.Question,
		Answer:      row.Answer,
		Category:    row.Category,
		Difficulty:  row.Difficulty,
		Source:      Source(row.Source),
		Explanation: row.Explanation.String,
		CodeExample: row.CodeExample.String,
		LastShown:   fromMillis(row.LastShownMs),
		UserRating:  row.UserRating,
		CreatedAt:   fromMillis(row.CreatedAtMs),
		State: State{
			Repetition:     row.Repetition,
			EasinessFactor: row.EasinessFactor,
			Interval:       row.IntervalDays,
			NextReviewDate: fromMillis(row.NextReviewMs),
		},
	}
}

func toQuestions(rows []questionRow) []Question {
	questions := make([]Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.toQuestion())
	}
	return questions
}

// DBRepository implements Repository using sqlx. It works with both the sqlite and mysql drivers.
type DBRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// RepositoryOption configures a DBRepository.
type RepositoryOption func(*DBRepository)

// WithRepositoryClock overrides the clock used to stamp created_at on insert.
func WithRepositoryClock(now func() time.Time) RepositoryOption {
	return func(r *DBRepository) {
		r.now = now
	}
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB, opts ...RepositoryOption) *DBRepository {
	r := &DBRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *DBRepository) randomFunc() string {
	if r.db.DriverName() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}

// GetAll returns all questions, newest first.
func (r *DBRepository) GetAll(ctx context.Context) ([]Question, error) {
	var rows []questionRow
	if err := r.db.SelectContext(ctx, &rows, selectQuestions+" ORDER BY created_at_ms DESC, id DESC"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(questions) > %w", err)
	}
	return toQuestions(rows), nil
}

// GetByID returns the question with the id, or nil if not found.
func (r *DBRepository) GetByID(ctx context.Context, id int64) (*Question, error) {
	var row questionRow
	err := r.db.GetContext(ctx, &row, selectQuestions+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(question %d) > %w", id, err)
	}
	q := row.toQuestion()
	return &q, nil
}

// GetByCategory returns questions with exactly the category.
func (r *DBRepository) GetByCategory(ctx context.Context, category string) ([]Question, error) {
	var rows []questionRow
	if err := r.db.SelectContext(ctx, &rows, selectQuestions+" WHERE category = ? ORDER BY id", category); err != nil {
		return nil, fmt.Errorf("db.SelectContext(questions by category) > %w", err)
	}
	return toQuestions(rows), nil
}

// GetDue returns questions whose next review date is unset or not after now, most overdue first.
func (r *DBRepository) GetDue(ctx context.Context, now time.Time) ([]Question, error) {
	var rows []questionRow
	if err := r.db.SelectContext(ctx, &rows,
		selectQuestions+" WHERE next_review_ms <= ? ORDER BY next_review_ms, id",
		now.UnixMilli()); err != nil {
		return nil, fmt.Errorf("db.SelectContext(due questions) > %w", err)
	}
	return toQuestions(rows), nil
}

// GetRandom returns a uniformly random question matching the query, or nil when nothing matches.
func (r *DBRepository) GetRandom(ctx context.Context, query RandomQuery) (*Question, error) {
	var conditions []string
	var args []any
	if query.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, query.Category)
	}
	if query.Difficulty != "" {
		conditions = append(conditions, "difficulty = ?")
		args = append(args, query.Difficulty)
	}
	if query.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, string(query.Source))
	}

	statement := selectQuestions
	if len(conditions) > 0 {
		statement += " WHERE " + strings.Join(conditions, " AND ")
	}
	statement += " ORDER BY " + r.randomFunc() + " LIMIT 1"

	var row questionRow
	err := r.db.GetContext(ctx, &row, statement, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(random question) > %w", err)
	}
	q := row.toQuestion()
	return &q, nil
}

// Count returns the number of stored questions.
func (r *DBRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM questions"); err != nil {
		return 0, fmt.Errorf("db.GetContext(count questions) > %w", err)
	}
	return count, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *DBRepository) insert(ctx context.Context, exec execer, q *Question) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = r.now()
	}
	if q.EasinessFactor == 0 {
		q.EasinessFactor = DefaultEasinessFactor
	}
	q.Difficulty = NormalizeDifficulty(q.Difficulty)

	result, err := exec.ExecContext(ctx, insertQuestion,
		q.Question, q.Answer, q.Category, q.Difficulty, string(q.Source),
		nullString(q.Explanation), nullString(q.CodeExample),
		toMillis(q.LastShown), q.UserRating, toMillis(q.CreatedAt),
		q.Repetition, q.EasinessFactor, q.Interval, toMillis(q.NextReviewDate))
	if err != nil {
		return fmt.Errorf("ExecContext(insert question) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	q.ID = id
	return nil
}

// Insert stores a new question and assigns its ID.
func (r *DBRepository) Insert(ctx context.Context, q *Question) error {
	return r.insert(ctx, r.db, q)
}

// InsertAll stores all questions in a single transaction, so either every question is stored or none is.
// IDs are assigned in place.
func (r *DBRepository) InsertAll(ctx context.Context, questions []Question) (err error) {
	if len(questions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range questions {
		if err = r.insert(ctx, tx, &questions[i]); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

// Update stores the mutable fields of a question. Source and creation time are never changed.
func (r *DBRepository) Update(ctx context.Context, q Question) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE questions SET question = ?, answer = ?, category = ?, difficulty = ?, explanation = ?, code_example = ?,
		last_shown_ms = ?, user_rating = ?, repetition = ?, easiness_factor = ?, interval_days = ?, next_review_ms = ?
		WHERE id = ?`,
		q.Question, q.Answer, q.Category, NormalizeDifficulty(q.Difficulty),
		nullString(q.Explanation), nullString(q.CodeExample),
		toMillis(q.LastShown), q.UserRating,
		q.Repetition, q.EasinessFactor, q.Interval, toMillis(q.NextReviewDate),
		q.ID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(update question %d) > %w", q.ID, err)
	}
	return nil
}

// Delete removes the question with the id. Deleting a missing id is not an error.
func (r *DBRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM questions WHERE id = ?", id); err != nil {
		return fmt.Errorf("db.ExecContext(delete question %d) > %w", id, err)
	}
	return nil
}

// DeleteMatching removes every question selected by the predicate and returns how many were removed.
func (r *DBRepository) DeleteMatching(ctx context.Context, pred DeletionPredicate) (int64, error) {
	var statement string
	var args []any
	switch pred.Kind {
	case DeleteAll:
		statement = "DELETE FROM questions"
	case DeleteCreatedSince:
		statement = "DELETE FROM questions WHERE created_at_ms >= ?"
		args = append(args, pred.Since.UnixMilli())
	case DeleteCategory:
		statement = "DELETE FROM questions WHERE category = ?"
		args = append(args, pred.Value)
	case DeleteDifficulty:
		statement = "DELETE FROM questions WHERE difficulty = ?"
		args = append(args, pred.Value)
	default:
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, statement, args...)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(delete questions %s) > %w", pred.Kind, err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return count, nil
}
