package model

import "time"

// 题目类型：单选 / 判断
const (
	QuestionSingleChoice = "single_choice"
	QuestionTrueFalse    = "true_false"
)

type Quiz struct {
	UUIDBase
	Title        string     `gorm:"size:255;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description"`
	TimeLimit    int        `gorm:"default:0" json:"timeLimit"` // 分钟，0 表示不限时
	PassingScore int        `gorm:"default:60" json:"passingScore"`
	AllowRetake  bool       `gorm:"default:false" json:"allowRetake"`
	IsPublished  bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	CreatorID    uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizQuestion struct {
	UUIDBase
	QuizID       string `gorm:"index;type:varchar(36)" json:"quizId"`
	QuestionType string `gorm:"size:50;not null" json:"questionType"`
	Content      string `gorm:"type:text;not null" json:"content"`
	ImageURL     string `gorm:"size:255" json:"imageUrl,omitempty"`
	Explanation  string `gorm:"type:text" json:"explanation"`
	Order        int    `gorm:"default:0" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type QuestionOption struct {
	UUIDBase
	QuestionID string `gorm:"index;type:varchar(36)" json:"questionId"`
	Label      string `gorm:"type:text;not null" json:"label"`
	// 正确标记只进教师端接口，学生端响应一律剥离
	IsCorrect bool `gorm:"default:false" json:"isCorrect"`
	Order     int  `gorm:"default:0" json:"order"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
