package repository

import (
	"elearn_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) CreateQuiz(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindQuizByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *QuizRepository) UpdateQuiz(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

// DeleteQuiz 连同题目、选项和历史提交一并删除
func (r *QuizRepository) DeleteQuiz(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []string
		if err := tx.Model(&model.QuizQuestion{}).Where("quiz_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.QuestionOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizQuestion{}).Error; err != nil {
				return err
			}
		}

		var submissionIDs []string
		if err := tx.Model(&model.QuizSubmission{}).Where("quiz_id = ?", id).Pluck("id", &submissionIDs).Error; err == nil && len(submissionIDs) > 0 {
			if err := tx.Where("submission_id IN ?", submissionIDs).Delete(&model.SubmissionAnswer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizSubmission{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Quiz{}, "id = ?", id).Error
	})
}

type QuizListRow struct {
	model.Quiz
	QuestionCount  int `json:"questionCount"`
	CompletedCount int `json:"completedCount"`
}

func (r *QuizRepository) ListQuizzes(page, limit int, publishedOnly bool) ([]QuizListRow, int64, error) {
	var total int64
	countQuery := r.DB.Model(&model.Quiz{}).Where("deleted_at IS NULL")
	if publishedOnly {
		countQuery = countQuery.Where("is_published = ?", true)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []QuizListRow
	dbQuery := r.DB.Table("quizzes q").
		Select("q.*, " +
			"(SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id AND qq.deleted_at IS NULL) as question_count, " +
			"(SELECT COUNT(*) FROM quiz_submissions s WHERE s.quiz_id = q.id AND s.deleted_at IS NULL) as completed_count").
		Where("q.deleted_at IS NULL")
	if publishedOnly {
		dbQuery = dbQuery.Where("q.is_published = ?", true)
	}

	if limit > 0 {
		offset := (page - 1) * limit
		dbQuery = dbQuery.Offset(offset).Limit(limit)
	}

	err := dbQuery.Order("q.created_at desc").Scan(&quizzes).Error
	return quizzes, total, err
}

func (r *QuizRepository) CreateQuestion(question *model.QuizQuestion) error {
	return r.DB.Create(question).Error
}

func (r *QuizRepository) UpdateQuestion(question *model.QuizQuestion) error {
	return r.DB.Save(question).Error
}

func (r *QuizRepository) DeleteQuestion(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuizQuestion{}, "id = ?", id).Error
	})
}

func (r *QuizRepository) ListQuestions(quizID string) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	err := r.DB.Where("quiz_id = ?", quizID).Order("`order` asc, created_at asc").Find(&qs).Error
	return qs, err
}

func (r *QuizRepository) CreateOption(option *model.QuestionOption) error {
	return r.DB.Create(option).Error
}

func (r *QuizRepository) UpdateOption(option *model.QuestionOption) error {
	return r.DB.Save(option).Error
}

func (r *QuizRepository) DeleteOptionsByQuestion(questionID string) error {
	return r.DB.Where("question_id = ?", questionID).Delete(&model.QuestionOption{}).Error
}

func (r *QuizRepository) ListOptions(questionID string) ([]model.QuestionOption, error) {
	var opts []model.QuestionOption
	err := r.DB.Where("question_id = ?", questionID).Order("`order` asc, created_at asc").Find(&opts).Error
	return opts, err
}

// ListOptionsForQuiz 一次取出整张试卷的全部选项，按题目分组
func (r *QuizRepository) ListOptionsForQuiz(quizID string) (map[string][]model.QuestionOption, error) {
	var opts []model.QuestionOption
	err := r.DB.Table("question_options o").
		Select("o.*").
		Joins("JOIN quiz_questions q ON o.question_id = q.id").
		Where("q.quiz_id = ? AND o.deleted_at IS NULL AND q.deleted_at IS NULL", quizID).
		Order("o.`order` asc, o.created_at asc").
		Scan(&opts).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]model.QuestionOption)
	for _, o := range opts {
		grouped[o.QuestionID] = append(grouped[o.QuestionID], o)
	}
	return grouped, nil
}
