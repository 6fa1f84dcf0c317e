package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rupamsaini/interviewprep/internal/bootstrap"
	"github.com/rupamsaini/interviewprep/internal/config"
	"github.com/rupamsaini/interviewprep/internal/server"
	"github.com/rupamsaini/interviewprep/internal/testutil"
)

func TestNewHTTPServer(t *testing.T) {
	cfg, err := config.Load(testutil.SetupTestConfig(t, t.TempDir()))
	require.NoError(t, err)
	components, err := bootstrap.NewComponents(context.Background(), cfg)
	require.NoError(t, err)
	defer func() {
		_ = components.Close()
	}()

	srv := newHTTPServer(cfg, components)
	assert.Equal(t, ":8080", srv.Addr)

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	listClient := connect.NewClient[server.ListQuestionsRequest, server.ListQuestionsResponse](
		ts.Client(), ts.URL+server.ListQuestionsProcedure, connect.WithCodec(server.Codec()),
	)
	listed, err := listClient.CallUnary(context.Background(), connect.NewRequest(&server.ListQuestionsRequest{Category: "Kotlin"}))
	require.NoError(t, err)
	require.NotEmpty(t, listed.Msg.Questions)

	reviewClient := connect.NewClient[server.SubmitReviewRequest, server.SubmitReviewResponse](
		ts.Client(), ts.URL+server.SubmitReviewProcedure, connect.WithCodec(server.Codec()),
	)
	quality := 5
	reviewed, err := reviewClient.CallUnary(context.Background(), connect.NewRequest(&server.SubmitReviewRequest{
		ID:      listed.Msg.Questions[0].ID,
		Quality: &quality,
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, reviewed.Msg.Question.Repetition)
	assert.NotEmpty(t, reviewed.Msg.Question.NextReviewDate)

	_, err = reviewClient.CallUnary(context.Background(), connect.NewRequest(&server.SubmitReviewRequest{
		ID:      100000,
		Quality: &quality,
	}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+server.NextQuestionProcedure, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "http://localhost:3000", res.Header.Get("Access-Control-Allow-Origin"))
}
