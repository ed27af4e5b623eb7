package session

import (
	"context"
	"time"
)

// Quiz 是开卷时由服务端下发的只读试卷视图，会话期间不变。
// 学生端视图不含正确答案标记。
type Quiz struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TimeLimit     int        `json:"timeLimit"` // 分钟，0 表示不限时
	PassingScore  int        `json:"passingScore"`
	AllowRetake   bool       `json:"allowRetake"`
	QuestionCount int        `json:"questionCount"`
	Questions     []Question `json:"questions"`
}

type Question struct {
	ID           string   `json:"id"`
	QuestionType string   `json:"questionType"`
	Content      string   `json:"content"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	Order        int      `json:"order"`
	Options      []Option `json:"options"`
}

type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

type SubmitRequest struct {
	Answers   map[string]string `json:"answers"`
	IsTimeout bool              `json:"isTimeout"`
	StartedAt *time.Time        `json:"startedAt,omitempty"`
}

type QuestionResult struct {
	QuestionID       string `json:"questionId"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
	CorrectOptionID  string `json:"correctOptionId"`
	IsCorrect        bool   `json:"isCorrect"`
	Explanation      string `json:"explanation,omitempty"`
}

type GradingResult struct {
	SubmissionID   string           `json:"submissionId"`
	QuizID         string           `json:"quizId"`
	Score          int              `json:"score"`
	CorrectAnswers int              `json:"correctAnswers"`
	TotalQuestions int              `json:"totalQuestions"`
	IsPassed       bool             `json:"isPassed"`
	Questions      []QuestionResult `json:"questions"`
}

// Backend 是会话依赖的远端接口：进度存取和权威评分。
type Backend interface {
	LoadProgress(ctx context.Context, quizID string) (map[string]string, error)
	SaveProgress(ctx context.Context, quizID string, answers map[string]string) error
	ClearProgress(ctx context.Context, quizID string) error
	Submit(ctx context.Context, quizID string, req SubmitRequest) (*GradingResult, error)
}
