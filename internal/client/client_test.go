package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"elearn_quiz_backend/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeJSON(data interface{}) []byte {
	raw, _ := json.Marshal(map[string]interface{}{
		"code":    200,
		"message": "success",
		"data":    data,
	})
	return raw
}

func TestLoadProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/quizzes/quiz-1/progress", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Write(envelopeJSON(map[string]interface{}{
			"answers": map[string]string{"q1": "optA"},
		}))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok-123")
	answers, err := c.LoadProgress(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q1": "optA"}, answers)
}

func TestLoadProgressEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(envelopeJSON(map[string]interface{}{"answers": nil}))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	answers, err := c.LoadProgress(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.NotNil(t, answers)
	assert.Empty(t, answers)
}

func TestSaveProgressSendsFullSnapshot(t *testing.T) {
	var got progressPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write(envelopeJSON(nil))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	err := c.SaveProgress(context.Background(), "quiz-1", map[string]string{"q1": "optA", "q2": "optB"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q1": "optA", "q2": "optB"}, got.Answers)
}

func TestSubmitUnwrapsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quizzes/quiz-1/submit", r.URL.Path)

		var req session.SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.IsTimeout)

		w.Write(envelopeJSON(session.GradingResult{
			QuizID:         "quiz-1",
			Score:          50,
			CorrectAnswers: 1,
			TotalQuestions: 2,
		}))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	result, err := c.Submit(context.Background(), "quiz-1", session.SubmitRequest{
		Answers:   map[string]string{"q1": "optA"},
		IsTimeout: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, 1, result.CorrectAnswers)
}

func TestErrorStatusSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":409,"message":"quiz already submitted","data":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	_, err := c.Submit(context.Background(), "quiz-1", session.SubmitRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quiz already submitted")
}

func TestClearProgress(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		w.Write(envelopeJSON(nil))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	require.NoError(t, c.ClearProgress(context.Background(), "quiz-1"))
	assert.True(t, called)
}
