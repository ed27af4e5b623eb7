package service

import (
	"testing"

	"elearn_quiz_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func question(id string) model.QuizQuestion {
	q := model.QuizQuestion{QuestionType: model.QuestionSingleChoice}
	q.ID = id
	return q
}

func option(id string, correct bool) model.QuestionOption {
	o := model.QuestionOption{IsCorrect: correct}
	o.ID = id
	return o
}

func TestGradeQuiz(t *testing.T) {
	questions := []model.QuizQuestion{question("q1"), question("q2")}
	options := map[string][]model.QuestionOption{
		"q1": {option("optA", true), option("optB", false)},
		"q2": {option("optB", false), option("optC", true)},
	}

	correct, results := gradeQuiz(questions, options, map[string]string{
		"q1": "optA",
		"q2": "optB",
	})

	assert.Equal(t, 1, correct)
	assert.Len(t, results, 2)

	assert.True(t, results[0].IsCorrect)
	assert.Equal(t, "optA", results[0].SelectedOptionID)
	assert.Equal(t, "optA", results[0].CorrectOptionID)

	assert.False(t, results[1].IsCorrect)
	assert.Equal(t, "optB", results[1].SelectedOptionID)
	assert.Equal(t, "optC", results[1].CorrectOptionID)
}

func TestGradeQuizUnansweredCountsWrong(t *testing.T) {
	questions := []model.QuizQuestion{question("q1"), question("q2")}
	options := map[string][]model.QuestionOption{
		"q1": {option("optA", true)},
		"q2": {option("optB", true)},
	}

	correct, results := gradeQuiz(questions, options, map[string]string{"q1": "optA"})

	assert.Equal(t, 1, correct)
	assert.False(t, results[1].IsCorrect)
	assert.Empty(t, results[1].SelectedOptionID)
	assert.Equal(t, "optB", results[1].CorrectOptionID)
}

func TestGradeQuizEmptyAnswers(t *testing.T) {
	questions := []model.QuizQuestion{question("q1")}
	options := map[string][]model.QuestionOption{
		"q1": {option("optA", true)},
	}

	correct, results := gradeQuiz(questions, options, nil)

	assert.Equal(t, 0, correct)
	assert.False(t, results[0].IsCorrect)
}

func TestPercentScoreRounding(t *testing.T) {
	cases := []struct {
		correct, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{5, 5, 100},
		{1, 8, 13}, // 12.5 四舍五入
	}
	for _, c := range cases {
		assert.Equal(t, c.want, percentScore(c.correct, c.total), "%d/%d", c.correct, c.total)
	}
}
