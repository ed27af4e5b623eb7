package service

import (
	"testing"

	"elearn_quiz_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func singleChoiceReq(options ...QuizOptionReq) QuizQuestionReq {
	return QuizQuestionReq{
		QuestionType: model.QuestionSingleChoice,
		Content:      "What does *p mean?",
		Options:      options,
	}
}

func TestValidateQuestionReq(t *testing.T) {
	t.Run("valid single choice", func(t *testing.T) {
		q := singleChoiceReq(
			QuizOptionReq{Label: "Dereference", IsCorrect: true},
			QuizOptionReq{Label: "Multiply"},
			QuizOptionReq{Label: "Comment"},
		)
		assert.NoError(t, validateQuestionReq(q))
	})

	t.Run("single choice needs two options", func(t *testing.T) {
		q := singleChoiceReq(QuizOptionReq{Label: "Only one", IsCorrect: true})
		assert.Error(t, validateQuestionReq(q))
	})

	t.Run("exactly one correct option", func(t *testing.T) {
		none := singleChoiceReq(
			QuizOptionReq{Label: "A"},
			QuizOptionReq{Label: "B"},
		)
		assert.Error(t, validateQuestionReq(none))

		two := singleChoiceReq(
			QuizOptionReq{Label: "A", IsCorrect: true},
			QuizOptionReq{Label: "B", IsCorrect: true},
		)
		assert.Error(t, validateQuestionReq(two))
	})

	t.Run("true/false needs exactly two options", func(t *testing.T) {
		q := QuizQuestionReq{
			QuestionType: model.QuestionTrueFalse,
			Content:      "Arrays decay to pointers",
			Options: []QuizOptionReq{
				{Label: "True", IsCorrect: true},
				{Label: "False"},
				{Label: "Maybe"},
			},
		}
		assert.Error(t, validateQuestionReq(q))

		q.Options = q.Options[:2]
		assert.NoError(t, validateQuestionReq(q))
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		q := QuizQuestionReq{QuestionType: "essay", Content: "Explain malloc"}
		assert.Error(t, validateQuestionReq(q))
	})
}
