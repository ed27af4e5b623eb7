package service

import (
	"elearn_quiz_backend/internal/model"
	"elearn_quiz_backend/internal/repository"
	"elearn_quiz_backend/internal/util"
	"errors"
	"fmt"
	"time"
)

type QuizService struct {
	Repo *repository.QuizRepository
}

func NewQuizService(repo *repository.QuizRepository) *QuizService {
	return &QuizService{Repo: repo}
}

type QuizOptionReq struct {
	ID        string `json:"id"`
	Label     string `json:"label" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
	Order     int    `json:"order"`
}

type QuizQuestionReq struct {
	ID           string          `json:"id"`
	QuestionType string          `json:"questionType" binding:"required"`
	Content      string          `json:"content" binding:"required"`
	ImageURL     string          `json:"imageUrl"`
	Explanation  string          `json:"explanation"`
	Order        int             `json:"order"`
	Options      []QuizOptionReq `json:"options" binding:"required"`
}

type QuizReq struct {
	Title        *string            `json:"title"`
	Description  *string            `json:"description"`
	TimeLimit    *int               `json:"timeLimit"`
	PassingScore *int               `json:"passingScore"`
	AllowRetake  *bool              `json:"allowRetake"`
	IsPublished  *bool              `json:"isPublished"`
	Questions    *[]QuizQuestionReq `json:"questions"`
}

func validateQuestionReq(q QuizQuestionReq) error {
	switch q.QuestionType {
	case model.QuestionSingleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("question %q needs at least two options", q.Content)
		}
	case model.QuestionTrueFalse:
		if len(q.Options) != 2 {
			return fmt.Errorf("true/false question %q needs exactly two options", q.Content)
		}
	default:
		return fmt.Errorf("unsupported question type %q", q.QuestionType)
	}

	correct := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("question %q must have exactly one correct option", q.Content)
	}
	return nil
}

func (s *QuizService) CreateQuiz(creatorID uint, req QuizReq) (*model.Quiz, error) {
	if req.Title == nil || *req.Title == "" {
		return nil, errors.New("title is required")
	}

	quiz := &model.Quiz{
		Title:        *req.Title,
		PassingScore: 60,
		CreatorID:    creatorID,
	}

	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.AllowRetake != nil {
		quiz.AllowRetake = *req.AllowRetake
	}
	if req.IsPublished != nil && *req.IsPublished {
		now := time.Now()
		quiz.IsPublished = true
		quiz.PublishedAt = &now
	}

	if err := s.Repo.CreateQuiz(quiz); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		for _, qReq := range *req.Questions {
			if err := validateQuestionReq(qReq); err != nil {
				return nil, err
			}
			if err := s.createQuestion(quiz.ID, qReq); err != nil {
				return nil, err
			}
		}
	}

	return quiz, nil
}

func (s *QuizService) createQuestion(quizID string, qReq QuizQuestionReq) error {
	q := &model.QuizQuestion{
		QuizID:       quizID,
		QuestionType: qReq.QuestionType,
		Content:      qReq.Content,
		ImageURL:     qReq.ImageURL,
		Explanation:  qReq.Explanation,
		Order:        qReq.Order,
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return err
	}
	for _, oReq := range qReq.Options {
		opt := &model.QuestionOption{
			QuestionID: q.ID,
			Label:      oReq.Label,
			IsCorrect:  oReq.IsCorrect,
			Order:      oReq.Order,
		}
		if err := s.Repo.CreateOption(opt); err != nil {
			return err
		}
	}
	return nil
}

// UpdateQuiz 局部更新。只有创建者或管理员可以修改试卷。
func (s *QuizService) UpdateQuiz(quizID string, actorID uint, isAdmin bool, req QuizReq) (*model.Quiz, error) {
	quiz, err := s.Repo.FindQuizByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if !isAdmin && quiz.CreatorID != actorID {
		return nil, util.ErrPermissionDenied
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = *req.Description
	}
	if req.TimeLimit != nil {
		quiz.TimeLimit = *req.TimeLimit
	}
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	if req.AllowRetake != nil {
		quiz.AllowRetake = *req.AllowRetake
	}
	if req.IsPublished != nil {
		if *req.IsPublished && !quiz.IsPublished {
			now := time.Now()
			quiz.PublishedAt = &now
		}
		quiz.IsPublished = *req.IsPublished
	}

	if err := s.Repo.UpdateQuiz(quiz); err != nil {
		return nil, err
	}

	if req.Questions != nil {
		if err := s.reconcileQuestions(quizID, *req.Questions); err != nil {
			return nil, err
		}
	}

	return quiz, nil
}

// reconcileQuestions 按请求对齐题目集合：带ID的更新，缺ID的新建，请求中不存在的删除
func (s *QuizService) reconcileQuestions(quizID string, reqs []QuizQuestionReq) error {
	existingQs, err := s.Repo.ListQuestions(quizID)
	if err != nil {
		return err
	}
	existingMap := make(map[string]*model.QuizQuestion)
	for i := range existingQs {
		existingMap[existingQs[i].ID] = &existingQs[i]
	}

	keepIDs := make(map[string]bool)
	for _, qReq := range reqs {
		if err := validateQuestionReq(qReq); err != nil {
			return err
		}

		if qReq.ID != "" {
			q, ok := existingMap[qReq.ID]
			if !ok {
				continue
			}
			q.QuestionType = qReq.QuestionType
			q.Content = qReq.Content
			q.ImageURL = qReq.ImageURL
			q.Explanation = qReq.Explanation
			q.Order = qReq.Order
			if err := s.Repo.UpdateQuestion(q); err != nil {
				return err
			}
			// 选项整组重建，避免逐条对齐
			if err := s.Repo.DeleteOptionsByQuestion(q.ID); err != nil {
				return err
			}
			for _, oReq := range qReq.Options {
				opt := &model.QuestionOption{
					QuestionID: q.ID,
					Label:      oReq.Label,
					IsCorrect:  oReq.IsCorrect,
					Order:      oReq.Order,
				}
				if err := s.Repo.CreateOption(opt); err != nil {
					return err
				}
			}
			keepIDs[q.ID] = true
		} else {
			if err := s.createQuestion(quizID, qReq); err != nil {
				return err
			}
		}
	}

	for id := range existingMap {
		if !keepIDs[id] {
			if err := s.Repo.DeleteQuestion(id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *QuizService) DeleteQuiz(quizID string, actorID uint, isAdmin bool) error {
	quiz, err := s.Repo.FindQuizByID(quizID)
	if err != nil {
		return util.ErrQuizNotFound
	}
	if !isAdmin && quiz.CreatorID != actorID {
		return util.ErrPermissionDenied
	}
	return s.Repo.DeleteQuiz(quizID)
}

// GetQuiz 教师端详情，包含正确标记
func (s *QuizService) GetQuiz(quizID string) (*model.Quiz, []model.QuizQuestion, map[string][]model.QuestionOption, error) {
	quiz, err := s.Repo.FindQuizByID(quizID)
	if err != nil {
		return nil, nil, nil, util.ErrQuizNotFound
	}
	qs, err := s.Repo.ListQuestions(quizID)
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := s.Repo.ListOptionsForQuiz(quizID)
	if err != nil {
		return nil, nil, nil, err
	}
	return quiz, qs, opts, nil
}

func (s *QuizService) ListQuizzes(page, limit int, publishedOnly bool) ([]repository.QuizListRow, int64, error) {
	return s.Repo.ListQuizzes(page, limit, publishedOnly)
}
