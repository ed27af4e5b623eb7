package model

import "time"

type QuizSubmission struct {
	UUIDBase
	QuizID         string     `gorm:"index;type:varchar(36)" json:"quizId"`
	UserID         uint       `gorm:"index;type:bigint unsigned" json:"userId"`
	Score          int        `gorm:"default:0" json:"score"` // 百分制
	CorrectAnswers int        `gorm:"default:0" json:"correctAnswers"`
	TotalQuestions int        `gorm:"default:0" json:"totalQuestions"`
	IsPassed       bool       `gorm:"default:false" json:"isPassed"`
	IsTimeout      bool       `gorm:"default:false" json:"isTimeout"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt"`
}

func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}

type SubmissionAnswer struct {
	UUIDBase
	SubmissionID     string `gorm:"index;type:varchar(36)" json:"submissionId"`
	QuestionID       string `gorm:"index;type:varchar(36)" json:"questionId"`
	SelectedOptionID string `gorm:"type:varchar(36)" json:"selectedOptionId"`
	IsCorrect        bool   `gorm:"default:false" json:"isCorrect"`
}

func (SubmissionAnswer) TableName() string {
	return "submission_answers"
}
