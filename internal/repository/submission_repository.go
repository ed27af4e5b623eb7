package repository

import (
	"elearn_quiz_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) CreateWithAnswers(submission *model.QuizSubmission, answers []model.SubmissionAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].SubmissionID = submission.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReplaceWithAnswers 删除同一用户同一试卷的旧提交后写入新提交，用于允许重考的试卷
func (r *SubmissionRepository) ReplaceWithAnswers(submission *model.QuizSubmission, answers []model.SubmissionAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var oldIDs []string
		if err := tx.Model(&model.QuizSubmission{}).
			Where("user_id = ? AND quiz_id = ?", submission.UserID, submission.QuizID).
			Pluck("id", &oldIDs).Error; err != nil {
			return err
		}
		if len(oldIDs) > 0 {
			if err := tx.Where("submission_id IN ?", oldIDs).Delete(&model.SubmissionAnswer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", oldIDs).Delete(&model.QuizSubmission{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].SubmissionID = submission.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SubmissionRepository) FindByUserAndQuiz(userID uint, quizID string) (*model.QuizSubmission, error) {
	var s model.QuizSubmission
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("created_at desc").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) FindByID(id string) (*model.QuizSubmission, error) {
	var s model.QuizSubmission
	err := r.DB.First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) ListAnswers(submissionID string) ([]model.SubmissionAnswer, error) {
	var answers []model.SubmissionAnswer
	err := r.DB.Where("submission_id = ?", submissionID).Find(&answers).Error
	return answers, err
}

func (r *SubmissionRepository) ListByQuiz(quizID string, page, limit int, studentName string) ([]map[string]interface{}, int64, error) {
	query := r.DB.Table("quiz_submissions s").
		Select("s.*, u.name as user_name, u.email as user_email").
		Joins("JOIN users u ON s.user_id = u.id").
		Where("s.quiz_id = ? AND s.deleted_at IS NULL", quizID)

	if studentName != "" {
		query = query.Where("u.name LIKE ?", "%"+studentName+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var results []map[string]interface{}
	offset := (page - 1) * limit
	err := query.Order("s.created_at desc").Offset(offset).Limit(limit).Scan(&results).Error
	return results, total, err
}

func (r *SubmissionRepository) Delete(submissionID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submissionID).Delete(&model.SubmissionAnswer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuizSubmission{}, "id = ?", submissionID).Error
	})
}
