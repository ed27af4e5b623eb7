package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"elearn_quiz_backend/internal/session"
)

// APIClient 通过平台 REST API 实现 session.Backend，
// 供非浏览器端（CLI、机器人）驱动答题会话。
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL, token string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// envelope 服务端统一响应结构
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *APIClient) doRequest(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed response (%d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: %s (%d)", method, path, env.Message, resp.StatusCode)
	}

	return env.Data, nil
}

// FetchQuiz 获取学生端试卷视图
func (c *APIClient) FetchQuiz(ctx context.Context, quizID string) (*session.Quiz, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/quizzes/"+quizID, nil)
	if err != nil {
		return nil, err
	}

	var quiz session.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

type progressPayload struct {
	Answers map[string]string `json:"answers"`
}

func (c *APIClient) LoadProgress(ctx context.Context, quizID string) (map[string]string, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/api/quizzes/"+quizID+"/progress", nil)
	if err != nil {
		return nil, err
	}

	var payload progressPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	if payload.Answers == nil {
		payload.Answers = map[string]string{}
	}
	return payload.Answers, nil
}

func (c *APIClient) SaveProgress(ctx context.Context, quizID string, answers map[string]string) error {
	_, err := c.doRequest(ctx, http.MethodPut, "/api/quizzes/"+quizID+"/progress", progressPayload{Answers: answers})
	return err
}

func (c *APIClient) ClearProgress(ctx context.Context, quizID string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/api/quizzes/"+quizID+"/progress", nil)
	return err
}

func (c *APIClient) Submit(ctx context.Context, quizID string, req session.SubmitRequest) (*session.GradingResult, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/api/quizzes/"+quizID+"/submit", req)
	if err != nil {
		return nil, err
	}

	var result session.GradingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
