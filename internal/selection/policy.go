// Package selection decides which question a user sees next and applies bulk operations on the question store.
package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/rupamsaini/interviewprep/internal/inference"
	"github.com/rupamsaini/interviewprep/internal/preferences"
	"github.com/rupamsaini/interviewprep/internal/question"
	"github.com/rupamsaini/interviewprep/internal/review"
	"github.com/rupamsaini/interviewprep/internal/scraper"
)

// ErrQuestionNotFound is returned when a review is submitted for an unknown question.
var ErrQuestionNotFound = errors.New("question not found")

const (
	ScopeAll            = "All"
	ScopeToday          = "Today"
	scopeCategoryPrefix = "cat:"
	scopeDiffPrefix     = "diff:"
)

// Random is the source of randomness for topic choice and the generation gate.
// *rand.Rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

// globalRandom uses the locked top-level math/rand source so one Policy can serve concurrent callers.
type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
func (globalRandom) Intn(n int) int   { return rand.Intn(n) }

// GateConfig limits how often an external generation may happen.
type GateConfig struct {
	// Enabled=false lets every request through.
	Enabled  bool
	Cooldown time.Duration
	// Chance is the probability a request passing the cooldown is allowed.
	Chance float64
}

// DefaultGate allows at most one generation per hour, each with a 5% chance.
var DefaultGate = GateConfig{
	Enabled:  true,
	Cooldown: time.Hour,
	Chance:   0.05,
}

// FetchRequest asks for an externally generated question.
type FetchRequest struct {
	Category   string
	Difficulty string
	// Force skips the gate.
	Force bool
}

type Option func(*Policy)

func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

func WithRandom(random Random) Option {
	return func(p *Policy) {
		p.random = random
	}
}

func WithGate(gate GateConfig) Option {
	return func(p *Policy) {
		p.gate = gate
	}
}

// WithLocation sets the zone the "Today" deletion scope is computed in.
func WithLocation(location *time.Location) Option {
	return func(p *Policy) {
		if location != nil {
			p.location = location
		}
	}
}

func WithCategories(categories []string) Option {
	return func(p *Policy) {
		p.categories = categories
	}
}

func WithDifficulties(difficulties []string) Option {
	return func(p *Policy) {
		p.difficulties = difficulties
	}
}

// Policy is the question selection policy.
// Collaborator failures are logged and reported as nil or zero results so callers can fall back.
type Policy struct {
	repository  question.Repository
	preferences *preferences.Preferences
	generator   inference.Generator
	scraper     scraper.Scraper
	scheduler   *review.Scheduler

	now          func() time.Time
	random       Random
	gate         GateConfig
	location     *time.Location
	categories   []string
	difficulties []string
}

func NewPolicy(
	repository question.Repository,
	prefs *preferences.Preferences,
	generator inference.Generator,
	scraper scraper.Scraper,
	scheduler *review.Scheduler,
	opts ...Option,
) *Policy {
	p := &Policy{
		repository:   repository,
		preferences:  prefs,
		generator:    generator,
		scraper:      scraper,
		scheduler:    scheduler,
		now:          time.Now,
		random:       globalRandom{},
		gate:         DefaultGate,
		location:     time.Local,
		categories:   question.Categories,
		difficulties: question.Difficulties,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) logger() *slog.Logger {
	return slog.Default().With("component", "selection")
}

// SelectLocalRandom returns a uniformly random stored question matching the filters, or nil.
func (p *Policy) SelectLocalRandom(ctx context.Context, filters question.Filters) *question.Question {
	query := filters.ToRandomQuery()
	q, err := p.repository.GetRandom(ctx, query)
	if err != nil {
		p.logger().Warn("failed to pick a random question",
			"category", query.Category,
			"difficulty", query.Difficulty,
			"error", err,
		)
		return nil
	}
	return q
}

// SelectPreferred picks a random stored question under the user's preferred category and difficulty.
func (p *Policy) SelectPreferred(ctx context.Context) *question.Question {
	req := p.ResolveRequest(ctx, FetchRequest{})
	return p.SelectLocalRandom(ctx, question.Filters{Category: req.Category, Difficulty: req.Difficulty})
}

// ResolveRequest fills an empty category or difficulty with the user's preferred value.
// "All" is an explicit choice and is kept.
func (p *Policy) ResolveRequest(ctx context.Context, req FetchRequest) FetchRequest {
	if strings.TrimSpace(req.Category) == "" {
		category, err := p.preferences.PreferredCategory(ctx)
		if err != nil {
			p.logger().Warn("failed to read preferred category", "error", err)
			category = question.All
		}
		req.Category = category
	}
	if strings.TrimSpace(req.Difficulty) == "" {
		difficulty, err := p.preferences.PreferredDifficulty(ctx)
		if err != nil {
			p.logger().Warn("failed to read preferred difficulty", "error", err)
			difficulty = question.All
		}
		req.Difficulty = difficulty
	}
	return req
}

// topics returns the selected topics that belong to the category vocabulary, or the whole vocabulary when none do.
func (p *Policy) topics(ctx context.Context) []string {
	selected, err := p.preferences.SelectedTopics(ctx)
	if err != nil {
		p.logger().Warn("failed to read selected topics", "error", err)
		return p.categories
	}
	var topics []string
	for _, category := range p.categories {
		for _, topic := range selected {
			if strings.EqualFold(topic, category) {
				topics = append(topics, category)
				break
			}
		}
	}
	if len(topics) == 0 {
		p.logger().Debug("no selected topic is a known category", "selected", selected)
		return p.categories
	}
	return topics
}

// allowGeneration applies the cooldown first and the random draw second.
func (p *Policy) allowGeneration(ctx context.Context) bool {
	if !p.gate.Enabled {
		return true
	}
	last, err := p.preferences.LastExternalGeneration(ctx)
	if err != nil {
		p.logger().Warn("failed to read last generation time", "error", err)
		return false
	}
	if !last.IsZero() && p.now().Sub(last) < p.gate.Cooldown {
		p.logger().Debug("generation gate closed by cooldown", "last", last)
		return false
	}
	return p.random.Float64() < p.gate.Chance
}

func (p *Policy) pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[p.random.Intn(len(values))]
}

// FetchOrGenerate asks the generator for a new question and stores it.
// It returns nil when the gate is closed or anything fails; nothing is stored in that case.
func (p *Policy) FetchOrGenerate(ctx context.Context, req FetchRequest) *question.Question {
	if !req.Force && !p.allowGeneration(ctx) {
		return nil
	}

	category := strings.TrimSpace(req.Category)
	if question.IsAll(category) {
		category = p.pick(p.topics(ctx))
	}
	difficulty := strings.TrimSpace(req.Difficulty)
	if question.IsAll(difficulty) {
		difficulty = p.pick(p.difficulties)
	}

	generated, err := p.generator.GenerateQuestion(ctx, inference.GenerateQuestionRequest{
		Category:   category,
		Difficulty: difficulty,
	})
	if err != nil {
		p.logger().Warn("failed to generate a question",
			"category", category,
			"difficulty", difficulty,
			"error", err,
		)
		return nil
	}
	if err := ctx.Err(); err != nil {
		p.logger().Warn("generation cancelled before saving", "error", err)
		return nil
	}

	q := question.NewQuestion(generated.Question, generated.Answer, category, difficulty, question.SourceAI)
	q.Explanation = generated.Explanation
	q.CodeExample = generated.CodeExample
	if err := p.repository.Insert(ctx, &q); err != nil {
		p.logger().Warn("failed to save a generated question", "category", category, "error", err)
		return nil
	}
	if err := p.preferences.SetLastExternalGeneration(ctx, p.now()); err != nil {
		p.logger().Warn("failed to record generation time", "error", err)
	}
	return &q
}

// FetchOrFallback tries FetchOrGenerate and falls back to a local question with the same filters.
func (p *Policy) FetchOrFallback(ctx context.Context, req FetchRequest) *question.Question {
	if q := p.FetchOrGenerate(ctx, req); q != nil {
		return q
	}
	return p.SelectLocalRandom(ctx, question.Filters{Category: req.Category, Difficulty: req.Difficulty})
}

// ResolveDeletionScope maps a scope token to the questions it deletes.
// Unknown tokens resolve to a predicate that matches nothing.
func (p *Policy) ResolveDeletionScope(token string) question.DeletionPredicate {
	switch {
	case token == ScopeAll:
		return question.DeletionPredicate{Kind: question.DeleteAll}
	case token == ScopeToday:
		now := p.now().In(p.location)
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, p.location)
		return question.DeletionPredicate{Kind: question.DeleteCreatedSince, Since: midnight}
	case strings.HasPrefix(token, scopeCategoryPrefix):
		return question.DeletionPredicate{
			Kind:  question.DeleteCategory,
			Value: strings.TrimPrefix(token, scopeCategoryPrefix),
		}
	case strings.HasPrefix(token, scopeDiffPrefix):
		return question.DeletionPredicate{
			Kind:  question.DeleteDifficulty,
			Value: question.NormalizeDifficulty(strings.TrimPrefix(token, scopeDiffPrefix)),
		}
	}
	return question.DeletionPredicate{Kind: question.DeleteNone}
}

// DeleteByScope deletes the questions selected by a scope token and returns how many were removed.
func (p *Policy) DeleteByScope(ctx context.Context, token string) int64 {
	predicate := p.ResolveDeletionScope(token)
	if predicate.Kind == question.DeleteNone {
		p.logger().Warn("unknown deletion scope", "scope", token)
		return 0
	}
	deleted, err := p.repository.DeleteMatching(ctx, predicate)
	if err != nil {
		p.logger().Warn("failed to delete questions", "scope", token, "error", err)
		return 0
	}
	return deleted
}

// ScopeLabel returns the human readable label of a scope token.
func ScopeLabel(token string) string {
	switch {
	case token == ScopeAll:
		return "All Questions"
	case token == ScopeToday:
		return "Today's Questions"
	case strings.HasPrefix(token, scopeCategoryPrefix):
		return "Category: " + strings.TrimPrefix(token, scopeCategoryPrefix)
	case strings.HasPrefix(token, scopeDiffPrefix):
		return "Difficulty: " + strings.TrimPrefix(token, scopeDiffPrefix)
	}
	return token
}

// Scopes lists every scope token offered to users.
func Scopes() []string {
	scopes := []string{ScopeAll, ScopeToday}
	for _, category := range question.Categories {
		scopes = append(scopes, scopeCategoryPrefix+category)
	}
	for _, difficulty := range question.Difficulties {
		scopes = append(scopes, scopeDiffPrefix+difficulty)
	}
	return scopes
}

// ImportFromURL stores every question found at url in one transaction and returns how many were stored.
func (p *Policy) ImportFromURL(ctx context.Context, url string) int {
	questions, err := p.scraper.Scrape(ctx, url)
	if err != nil {
		p.logger().Warn("failed to scrape questions", "url", url, "error", err)
		return 0
	}
	if len(questions) == 0 {
		return 0
	}
	if err := p.repository.InsertAll(ctx, questions); err != nil {
		p.logger().Warn("failed to save scraped questions", "url", url, "count", len(questions), "error", err)
		return 0
	}
	return len(questions)
}

// SubmitReview grades a question and stores its next review state.
func (p *Policy) SubmitReview(ctx context.Context, id int64, quality int) (*question.Question, error) {
	if err := review.ValidateQuality(quality); err != nil {
		return nil, err
	}
	q, err := p.repository.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("repository.GetByID(%d) > %w", id, err)
	}
	if q == nil {
		return nil, fmt.Errorf("id %d: %w", id, ErrQuestionNotFound)
	}

	updated, err := p.scheduler.Apply(*q, quality)
	if err != nil {
		return nil, fmt.Errorf("scheduler.Apply > %w", err)
	}
	updated.LastShown = p.now()
	updated.UserRating = quality
	if err := p.repository.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("repository.Update(%d) > %w", id, err)
	}
	return &updated, nil
}

// DueQuestions returns the questions whose next review date has passed.
func (p *Policy) DueQuestions(ctx context.Context) []question.Question {
	questions, err := p.repository.GetDue(ctx, p.now())
	if err != nil {
		p.logger().Warn("failed to load due questions", "error", err)
		return nil
	}
	return questions
}
