package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	mock_inference "github.com/rupamsaini/interviewprep/internal/mocks/inference"
	mock_question "github.com/rupamsaini/interviewprep/internal/mocks/question"
	mock_scraper "github.com/rupamsaini/interviewprep/internal/mocks/scraper"
	"github.com/rupamsaini/interviewprep/internal/inference"
	"github.com/rupamsaini/interviewprep/internal/preferences"
	"github.com/rupamsaini/interviewprep/internal/question"
	"github.com/rupamsaini/interviewprep/internal/review"
	"github.com/rupamsaini/interviewprep/internal/selection"
)

var fixedNow = time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC)

type testMocks struct {
	repository *mock_question.MockRepository
	generator  *mock_inference.MockGenerator
	scraper    *mock_scraper.MockScraper
	prefs      *preferences.Preferences
}

func newTestHandler(t *testing.T, gate selection.GateConfig) (*QuestionHandler, testMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := testMocks{
		repository: mock_question.NewMockRepository(ctrl),
		generator:  mock_inference.NewMockGenerator(ctrl),
		scraper:    mock_scraper.NewMockScraper(ctrl),
		prefs:      preferences.New(preferences.NewMemoryStore()),
	}
	clock := func() time.Time { return fixedNow }
	policy := selection.NewPolicy(
		m.repository,
		m.prefs,
		m.generator,
		m.scraper,
		review.NewScheduler(review.WithClock(clock)),
		selection.WithClock(clock),
		selection.WithGate(gate),
	)
	return NewQuestionHandler(policy, m.repository), m
}

func assertConnectCode(t *testing.T, err error, want connect.Code) *connect.Error {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, want, connectErr.Code())
	return connectErr
}

func setPreferred(t *testing.T, m testMocks, category, difficulty string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, m.prefs.SetPreferredCategory(ctx, category))
	require.NoError(t, m.prefs.SetPreferredDifficulty(ctx, difficulty))
}

func intPtr(v int) *int {
	return &v
}

func TestQuestionHandler_NextQuestion(t *testing.T) {
	local := &question.Question{ID: 3, Question: "What is Room?", Category: "Android", Difficulty: "junior", Source: question.SourceLocal}

	tests := []struct {
		name      string
		request   NextQuestionRequest
		gate      selection.GateConfig
		// preferred holds the stored preferred category and difficulty.
		preferred [2]string
		setup     func(m testMocks)
		wantID    int64
		wantNone  bool
		wantCode  connect.Code
	}{
		{
			name:    "local source",
			request: NextQuestionRequest{Category: "Android", Difficulty: "Junior", Source: "local"},
			gate:    selection.DefaultGate,
			setup: func(m testMocks) {
				m.repository.EXPECT().
					GetRandom(gomock.Any(), question.RandomQuery{Category: "Android", Difficulty: "junior"}).
					Return(local, nil)
			},
			wantID: 3,
		},
		{
			name:    "ai source with force",
			request: NextQuestionRequest{Category: "Kotlin", Difficulty: "Senior", Source: "ai", Force: true},
			gate:    selection.DefaultGate,
			setup: func(m testMocks) {
				m.generator.EXPECT().GenerateQuestion(gomock.Any(), inference.GenerateQuestionRequest{Category: "Kotlin", Difficulty: "Senior"}).
					Return(inference.GeneratedQuestion{Question: "What is variance?", Answer: "in and out."}, nil)
				m.repository.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, q *question.Question) error {
						q.ID = 50
						return nil
					})
			},
			wantID: 50,
		},
		{
			name:    "auto falls back to local when generation fails",
			request: NextQuestionRequest{Category: "Android", Difficulty: "Junior"},
			gate:    selection.GateConfig{Enabled: false},
			setup: func(m testMocks) {
				m.generator.EXPECT().GenerateQuestion(gomock.Any(), gomock.Any()).
					Return(inference.GeneratedQuestion{}, inference.ErrDisabled)
				m.repository.EXPECT().GetRandom(gomock.Any(), gomock.Any()).Return(local, nil)
			},
			wantID: 3,
		},
		{
			name:    "nothing found",
			request: NextQuestionRequest{Category: "Security", Source: "local"},
			gate:    selection.DefaultGate,
			setup: func(m testMocks) {
				m.repository.EXPECT().GetRandom(gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantNone: true,
		},
		{
			name:      "omitted filters use the preferences",
			request:   NextQuestionRequest{Source: "local"},
			gate:      selection.DefaultGate,
			preferred: [2]string{"Security", "Senior"},
			setup: func(m testMocks) {
				m.repository.EXPECT().
					GetRandom(gomock.Any(), question.RandomQuery{Category: "Security", Difficulty: "senior"}).
					Return(local, nil)
			},
			wantID: 3,
		},
		{
			name:      "ai source generates under the preferences",
			request:   NextQuestionRequest{Source: "ai", Force: true},
			gate:      selection.DefaultGate,
			preferred: [2]string{"Security", "Junior"},
			setup: func(m testMocks) {
				m.generator.EXPECT().GenerateQuestion(gomock.Any(), inference.GenerateQuestionRequest{Category: "Security", Difficulty: "Junior"}).
					Return(inference.GeneratedQuestion{Question: "What is certificate pinning?", Answer: "Trusting known keys."}, nil)
				m.repository.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, q *question.Question) error {
						q.ID = 51
						return nil
					})
			},
			wantID: 51,
		},
		{
			name:      "auto fallback keeps the preferences",
			request:   NextQuestionRequest{},
			gate:      selection.GateConfig{Enabled: true, Chance: 0},
			preferred: [2]string{"Security", "Mid-Level"},
			setup: func(m testMocks) {
				m.repository.EXPECT().
					GetRandom(gomock.Any(), question.RandomQuery{Category: "Security", Difficulty: "mid"}).
					Return(local, nil)
			},
			wantID: 3,
		},
		{
			name:      "explicit All ignores the preferences",
			request:   NextQuestionRequest{Category: question.All, Difficulty: question.All, Source: "local"},
			gate:      selection.DefaultGate,
			preferred: [2]string{"Security", "Senior"},
			setup: func(m testMocks) {
				m.repository.EXPECT().GetRandom(gomock.Any(), question.RandomQuery{}).Return(local, nil)
			},
			wantID: 3,
		},
		{
			name:     "unknown source",
			request:  NextQuestionRequest{Source: "web"},
			gate:     selection.DefaultGate,
			wantCode: connect.CodeInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := newTestHandler(t, tt.gate)
			if tt.preferred != [2]string{} {
				setPreferred(t, m, tt.preferred[0], tt.preferred[1])
			}
			if tt.setup != nil {
				tt.setup(m)
			}

			res, err := handler.NextQuestion(context.Background(), connect.NewRequest(&tt.request))
			if tt.wantCode != 0 {
				assertConnectCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			if tt.wantNone {
				assert.Nil(t, res.Msg.Question)
				return
			}
			require.NotNil(t, res.Msg.Question)
			assert.Equal(t, tt.wantID, res.Msg.Question.ID)
		})
	}
}

func TestQuestionHandler_SubmitReview(t *testing.T) {
	stored := &question.Question{ID: 8, Question: "What is Hilt?", State: question.State{EasinessFactor: 2.5}}

	tests := []struct {
		name      string
		request   SubmitReviewRequest
		setup     func(m testMocks)
		wantCode  connect.Code
		wantField string
	}{
		{
			name:    "reschedules",
			request: SubmitReviewRequest{ID: 8, Quality: intPtr(5)},
			setup: func(m testMocks) {
				m.repository.EXPECT().GetByID(gomock.Any(), int64(8)).Return(stored, nil)
				m.repository.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "quality out of range",
			request:   SubmitReviewRequest{ID: 8, Quality: intPtr(7)},
			wantCode:  connect.CodeInvalidArgument,
			wantField: "quality",
		},
		{
			name:      "missing quality",
			request:   SubmitReviewRequest{ID: 8},
			wantCode:  connect.CodeInvalidArgument,
			wantField: "quality",
		},
		{
			name:      "missing id",
			request:   SubmitReviewRequest{Quality: intPtr(3)},
			wantCode:  connect.CodeInvalidArgument,
			wantField: "id",
		},
		{
			name:    "unknown question",
			request: SubmitReviewRequest{ID: 99, Quality: intPtr(3)},
			setup: func(m testMocks) {
				m.repository.EXPECT().GetByID(gomock.Any(), int64(99)).Return(nil, nil)
			},
			wantCode: connect.CodeNotFound,
		},
		{
			name:    "store failure",
			request: SubmitReviewRequest{ID: 8, Quality: intPtr(3)},
			setup: func(m testMocks) {
				m.repository.EXPECT().GetByID(gomock.Any(), int64(8)).Return(nil, errors.New("disk I/O error"))
			},
			wantCode: connect.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := newTestHandler(t, selection.DefaultGate)
			if tt.setup != nil {
				tt.setup(m)
			}

			res, err := handler.SubmitReview(context.Background(), connect.NewRequest(&tt.request))
			if tt.wantCode != 0 {
				connectErr := assertConnectCode(t, err, tt.wantCode)
				if tt.wantField != "" {
					details := connectErr.Details()
					require.Len(t, details, 1)
					value, err := details[0].Value()
					require.NoError(t, err)
					badRequest, ok := value.(*errdetails.BadRequest)
					require.True(t, ok)
					require.Len(t, badRequest.GetFieldViolations(), 1)
					assert.Equal(t, tt.wantField, badRequest.GetFieldViolations()[0].GetField())
				}
				return
			}
			require.NoError(t, err)
			got := res.Msg.Question
			assert.Equal(t, int64(8), got.ID)
			assert.Equal(t, 1, got.Repetition)
			assert.Equal(t, 1, got.Interval)
			assert.Equal(t, 5, got.UserRating)
			assert.Equal(t, "2025-02-04T10:00:00Z", got.NextReviewDate)
			assert.Equal(t, "2025-02-03T10:00:00Z", got.LastShown)
		})
	}
}

func TestQuestionHandler_ListQuestions(t *testing.T) {
	all := []question.Question{
		{ID: 1, Category: "Kotlin", Difficulty: "junior", Source: question.SourceLocal},
		{ID: 2, Category: "Kotlin", Difficulty: "senior", Source: question.SourceAI},
		{ID: 3, Category: "Scraped", Difficulty: "unknown", Source: question.SourceScraped},
	}

	tests := []struct {
		name     string
		request  ListQuestionsRequest
		wantIDs  []int64
		wantCode connect.Code
	}{
		{name: "no filters", request: ListQuestionsRequest{}, wantIDs: []int64{1, 2, 3}},
		{name: "category", request: ListQuestionsRequest{Category: "kotlin"}, wantIDs: []int64{1, 2}},
		{name: "difficulty label", request: ListQuestionsRequest{Category: "All", Difficulty: "Senior"}, wantIDs: []int64{2}},
		{name: "source", request: ListQuestionsRequest{Source: "scraped"}, wantIDs: []int64{3}},
		{name: "no match", request: ListQuestionsRequest{Category: "Security"}, wantIDs: []int64{}},
		{name: "bad source", request: ListQuestionsRequest{Source: "web"}, wantCode: connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, m := newTestHandler(t, selection.DefaultGate)
			if tt.wantCode == 0 {
				m.repository.EXPECT().GetAll(gomock.Any()).Return(all, nil)
			}

			res, err := handler.ListQuestions(context.Background(), connect.NewRequest(&tt.request))
			if tt.wantCode != 0 {
				assertConnectCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			ids := []int64{}
			for _, q := range res.Msg.Questions {
				ids = append(ids, q.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestQuestionHandler_DeleteQuestions(t *testing.T) {
	t.Run("deletes by scope", func(t *testing.T) {
		handler, m := newTestHandler(t, selection.DefaultGate)
		m.repository.EXPECT().
			DeleteMatching(gomock.Any(), question.DeletionPredicate{Kind: question.DeleteDifficulty, Value: "senior"}).
			Return(int64(2), nil)

		res, err := handler.DeleteQuestions(context.Background(), connect.NewRequest(&DeleteQuestionsRequest{Scope: "diff:Senior"}))
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Msg.Deleted)
		assert.Equal(t, "Difficulty: Senior", res.Msg.Label)
	})

	t.Run("unknown scope", func(t *testing.T) {
		handler, _ := newTestHandler(t, selection.DefaultGate)
		_, err := handler.DeleteQuestions(context.Background(), connect.NewRequest(&DeleteQuestionsRequest{Scope: "Yesterday"}))
		assertConnectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("empty scope", func(t *testing.T) {
		handler, _ := newTestHandler(t, selection.DefaultGate)
		_, err := handler.DeleteQuestions(context.Background(), connect.NewRequest(&DeleteQuestionsRequest{}))
		assertConnectCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestQuestionHandler_ImportQuestions(t *testing.T) {
	t.Run("imports", func(t *testing.T) {
		handler, m := newTestHandler(t, selection.DefaultGate)
		scraped := []question.Question{{Question: "What is an Intent?", Answer: "A message."}}
		m.scraper.EXPECT().Scrape(gomock.Any(), "https://example.com/android").Return(scraped, nil)
		m.repository.EXPECT().InsertAll(gomock.Any(), scraped).Return(nil)

		res, err := handler.ImportQuestions(context.Background(), connect.NewRequest(&ImportQuestionsRequest{URL: "https://example.com/android"}))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Msg.Imported)
	})

	t.Run("invalid url", func(t *testing.T) {
		handler, _ := newTestHandler(t, selection.DefaultGate)
		_, err := handler.ImportQuestions(context.Background(), connect.NewRequest(&ImportQuestionsRequest{URL: "not a url"}))
		assertConnectCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestQuestionServiceHandler_HTTP(t *testing.T) {
	handler, m := newTestHandler(t, selection.DefaultGate)
	m.repository.EXPECT().GetRandom(gomock.Any(), gomock.Any()).
		Return(&question.Question{ID: 11, Question: "What is Compose?", Source: question.SourceLocal}, nil).
		AnyTimes()

	path, h := NewQuestionServiceHandler(handler)
	assert.Equal(t, "/interviewprep.v1.QuestionService/", path)
	mux := http.NewServeMux()
	mux.Handle(path, h)
	srv := httptest.NewServer(CORSMiddleware(mux, []string{"http://localhost:3000"}))
	defer srv.Close()

	t.Run("connect client", func(t *testing.T) {
		client := connect.NewClient[NextQuestionRequest, NextQuestionResponse](
			srv.Client(),
			srv.URL+NextQuestionProcedure,
			connect.WithCodec(Codec()),
		)
		res, err := client.CallUnary(context.Background(), connect.NewRequest(&NextQuestionRequest{Source: "local"}))
		require.NoError(t, err)
		require.NotNil(t, res.Msg.Question)
		assert.Equal(t, int64(11), res.Msg.Question.ID)
	})

	t.Run("plain JSON post", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL+NextQuestionProcedure, strings.NewReader(`{"source":"local"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Origin", "http://localhost:3000")

		res, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "http://localhost:3000", res.Header.Get("Access-Control-Allow-Origin"))
		assert.Contains(t, string(body), `"id":11`)
	})

	t.Run("preflight", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+NextQuestionProcedure, nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://evil.example")

		res, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusNoContent, res.StatusCode)
		assert.Empty(t, res.Header.Get("Access-Control-Allow-Origin"))
	})
}
