// Package server provides Connect RPC handlers for the question service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/rupamsaini/interviewprep/internal/question"
	"github.com/rupamsaini/interviewprep/internal/review"
	"github.com/rupamsaini/interviewprep/internal/selection"
)

const ServiceName = "interviewprep.v1.QuestionService"

const (
	NextQuestionProcedure    = "/" + ServiceName + "/NextQuestion"
	SubmitReviewProcedure    = "/" + ServiceName + "/SubmitReview"
	ListQuestionsProcedure   = "/" + ServiceName + "/ListQuestions"
	DeleteQuestionsProcedure = "/" + ServiceName + "/DeleteQuestions"
	ImportQuestionsProcedure = "/" + ServiceName + "/ImportQuestions"
)

// jsonCodec encodes plain Go structs, so the service needs no generated messages.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

func (jsonCodec) Unmarshal(data []byte, message any) error {
	return json.Unmarshal(data, message)
}

// Codec returns the codec clients must use to talk to the service.
func Codec() connect.Codec {
	return jsonCodec{}
}

// QuestionHandler serves the question service.
type QuestionHandler struct {
	policy     *selection.Policy
	repository question.Repository
	validate   *validator.Validate
}

func NewQuestionHandler(policy *selection.Policy, repository question.Repository) *QuestionHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &QuestionHandler{
		policy:     policy,
		repository: repository,
		validate:   validate,
	}
}

// NewQuestionServiceHandler returns the path prefix and the handler serving every procedure.
func NewQuestionServiceHandler(h *QuestionHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(NextQuestionProcedure, connect.NewUnaryHandler(NextQuestionProcedure, h.NextQuestion, opts...))
	mux.Handle(SubmitReviewProcedure, connect.NewUnaryHandler(SubmitReviewProcedure, h.SubmitReview, opts...))
	mux.Handle(ListQuestionsProcedure, connect.NewUnaryHandler(ListQuestionsProcedure, h.ListQuestions, opts...))
	mux.Handle(DeleteQuestionsProcedure, connect.NewUnaryHandler(DeleteQuestionsProcedure, h.DeleteQuestions, opts...))
	mux.Handle(ImportQuestionsProcedure, connect.NewUnaryHandler(ImportQuestionsProcedure, h.ImportQuestions, opts...))
	return "/" + ServiceName + "/", mux
}

// NextQuestion returns a stored or generated question depending on the requested source.
func (h *QuestionHandler) NextQuestion(
	ctx context.Context,
	req *connect.Request[NextQuestionRequest],
) (*connect.Response[NextQuestionResponse], error) {
	msg := req.Msg
	if err := h.validateRequest(msg); err != nil {
		return nil, err
	}

	// An omitted filter means the user's preferred value; "All" stays unconstrained.
	fetch := h.policy.ResolveRequest(ctx, selection.FetchRequest{
		Category:   msg.Category,
		Difficulty: msg.Difficulty,
		Force:      msg.Force,
	})

	var q *question.Question
	switch msg.Source {
	case SourceModeLocal:
		q = h.policy.SelectLocalRandom(ctx, question.Filters{Category: fetch.Category, Difficulty: fetch.Difficulty})
	case SourceModeAI:
		q = h.policy.FetchOrGenerate(ctx, fetch)
	default:
		q = h.policy.FetchOrFallback(ctx, fetch)
	}

	var res NextQuestionResponse
	if q != nil {
		m := toMessage(*q)
		res.Question = &m
	}
	return connect.NewResponse(&res), nil
}

// SubmitReview records a recall grade and returns the rescheduled question.
func (h *QuestionHandler) SubmitReview(
	ctx context.Context,
	req *connect.Request[SubmitReviewRequest],
) (*connect.Response[SubmitReviewResponse], error) {
	msg := req.Msg
	if err := h.validateRequest(msg); err != nil {
		return nil, err
	}

	q, err := h.policy.SubmitReview(ctx, msg.ID, *msg.Quality)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrInvalidQuality):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		case errors.Is(err, selection.ErrQuestionNotFound):
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("submit review: %w", err))
	}
	return connect.NewResponse(&SubmitReviewResponse{Question: toMessage(*q)}), nil
}

// ListQuestions returns stored questions matching the filters.
func (h *QuestionHandler) ListQuestions(
	ctx context.Context,
	req *connect.Request[ListQuestionsRequest],
) (*connect.Response[ListQuestionsResponse], error) {
	msg := req.Msg
	source, ok := question.ParseSource(msg.Source)
	if !ok {
		return nil, newFieldViolationError("source", fmt.Sprintf("unknown source %q", msg.Source))
	}

	questions, err := h.repository.GetAll(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("list questions: %w", err))
	}
	filters := question.Filters{Category: msg.Category, Difficulty: msg.Difficulty, Source: source}
	res := ListQuestionsResponse{Questions: []Question{}}
	for _, q := range questions {
		if filters.Matches(q) {
			res.Questions = append(res.Questions, toMessage(q))
		}
	}
	return connect.NewResponse(&res), nil
}

// DeleteQuestions deletes the questions in a scope such as "All", "Today", "cat:Kotlin" or "diff:Senior".
func (h *QuestionHandler) DeleteQuestions(
	ctx context.Context,
	req *connect.Request[DeleteQuestionsRequest],
) (*connect.Response[DeleteQuestionsResponse], error) {
	msg := req.Msg
	if err := h.validateRequest(msg); err != nil {
		return nil, err
	}
	if h.policy.ResolveDeletionScope(msg.Scope).Kind == question.DeleteNone {
		return nil, newFieldViolationError("scope", fmt.Sprintf("unknown scope %q", msg.Scope))
	}

	deleted := h.policy.DeleteByScope(ctx, msg.Scope)
	return connect.NewResponse(&DeleteQuestionsResponse{
		Deleted: deleted,
		Label:   selection.ScopeLabel(msg.Scope),
	}), nil
}

// ImportQuestions scrapes a page and stores the questions found.
func (h *QuestionHandler) ImportQuestions(
	ctx context.Context,
	req *connect.Request[ImportQuestionsRequest],
) (*connect.Response[ImportQuestionsResponse], error) {
	msg := req.Msg
	if err := h.validateRequest(msg); err != nil {
		return nil, err
	}
	return connect.NewResponse(&ImportQuestionsResponse{
		Imported: h.policy.ImportFromURL(ctx, msg.URL),
	}), nil
}

// validateRequest returns an InvalidArgument error with BadRequest details on failure.
func (h *QuestionHandler) validateRequest(msg any) error {
	err := h.validate.Struct(msg)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return connect.NewError(connect.CodeInternal, err)
	}

	connectErr := connect.NewError(connect.CodeInvalidArgument, err)
	var fieldViolations []*errdetails.BadRequest_FieldViolation
	for _, e := range validationErrors {
		fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       e.Field(),
			Description: fmt.Sprintf("failed on the '%s' rule", e.Tag()),
		})
	}
	if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
		FieldViolations: fieldViolations,
	}); detailErr == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}

func newFieldViolationError(field, description string) error {
	connectErr := connect.NewError(connect.CodeInvalidArgument, errors.New(description))
	if detail, err := connect.NewErrorDetail(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: field, Description: description},
		},
	}); err == nil {
		connectErr.AddDetail(detail)
	}
	return connectErr
}

// CORSMiddleware allows browser clients from allowedOrigins.
func CORSMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Connect-Protocol-Version")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
