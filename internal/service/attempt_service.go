package service

import (
	"elearn_quiz_backend/internal/model"
	"elearn_quiz_backend/internal/repository"
	"elearn_quiz_backend/internal/util"
	"elearn_quiz_backend/pkg/logger"
	"elearn_quiz_backend/pkg/monitoring"
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptService 承载学生答题的服务端生命周期：
// 进度的读写与清除、提交评分、成绩查询、教师重置。
type AttemptService struct {
	QuizRepo       *repository.QuizRepository
	SubmissionRepo *repository.SubmissionRepository
	ProgressRepo   *repository.ProgressRepository
}

func NewAttemptService(quizRepo *repository.QuizRepository, submissionRepo *repository.SubmissionRepository, progressRepo *repository.ProgressRepository) *AttemptService {
	return &AttemptService{
		QuizRepo:       quizRepo,
		SubmissionRepo: submissionRepo,
		ProgressRepo:   progressRepo,
	}
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

// gradeQuiz 纯评分：未作答按错误计，分数为四舍五入的百分制
func gradeQuiz(questions []model.QuizQuestion, optionsByQuestion map[string][]model.QuestionOption, answers map[string]string) (int, []QuestionResult) {
	correct := 0
	results := make([]QuestionResult, 0, len(questions))

	for _, q := range questions {
		correctOptionID := ""
		for _, o := range optionsByQuestion[q.ID] {
			if o.IsCorrect {
				correctOptionID = o.ID
				break
			}
		}

		selected := answers[q.ID]
		isCorrect := selected != "" && selected == correctOptionID
		if isCorrect {
			correct++
		}

		results = append(results, QuestionResult{
			QuestionID:       q.ID,
			SelectedOptionID: selected,
			CorrectOptionID:  correctOptionID,
			IsCorrect:        isCorrect,
			Explanation:      q.Explanation,
		})
	}

	return correct, results
}

func percentScore(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func (s *AttemptService) findPublishedQuiz(quizID string) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindQuizByID(quizID)
	if err != nil {
		return nil, util.ErrQuizNotFound
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotPublished
	}
	return quiz, nil
}

// GetProgress 返回自动保存的答案快照，没有记录时返回空映射
func (s *AttemptService) GetProgress(ctx context.Context, userID uint, quizID string) (map[string]string, error) {
	if _, err := s.findPublishedQuiz(quizID); err != nil {
		return nil, err
	}
	return s.ProgressRepo.Load(ctx, userID, quizID)
}

func (s *AttemptService) SaveProgress(ctx context.Context, userID uint, quizID string, answers map[string]string) error {
	quiz, err := s.findPublishedQuiz(quizID)
	if err != nil {
		return err
	}

	// 已提交且不允许重考的试卷拒绝再写进度
	if !quiz.AllowRetake {
		if _, err := s.SubmissionRepo.FindByUserAndQuiz(userID, quizID); err == nil {
			return util.ErrQuizAlreadySubmitted
		}
	}

	if answers == nil {
		answers = map[string]string{}
	}
	return s.ProgressRepo.Save(ctx, userID, quizID, answers)
}

func (s *AttemptService) ClearProgress(ctx context.Context, userID uint, quizID string) error {
	return s.ProgressRepo.Clear(ctx, userID, quizID)
}

type SubmitReq struct {
	Answers   map[string]string `json:"answers"`
	IsTimeout bool              `json:"isTimeout"`
	StartedAt *time.Time        `json:"startedAt"`
}

func (s *AttemptService) Submit(ctx context.Context, userID uint, quizID string, req SubmitReq) (*GradingResult, error) {
	quiz, err := s.findPublishedQuiz(quizID)
	if err != nil {
		return nil, err
	}

	existing, err := s.SubmissionRepo.FindByUserAndQuiz(userID, quizID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if existing != nil && !quiz.AllowRetake {
		return nil, util.ErrQuizAlreadySubmitted
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrEmptyQuiz
	}
	options, err := s.QuizRepo.ListOptionsForQuiz(quizID)
	if err != nil {
		return nil, err
	}

	correct, perQuestion := gradeQuiz(questions, options, req.Answers)
	score := percentScore(correct, len(questions))
	passed := score >= quiz.PassingScore

	now := time.Now()
	startedAt := now
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	submission := &model.QuizSubmission{
		QuizID:         quizID,
		UserID:         userID,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: len(questions),
		IsPassed:       passed,
		IsTimeout:      req.IsTimeout,
		StartedAt:      startedAt,
		CompletedAt:    &now,
	}

	answers := make([]model.SubmissionAnswer, 0, len(perQuestion))
	for _, qr := range perQuestion {
		if qr.SelectedOptionID == "" {
			continue
		}
		answers = append(answers, model.SubmissionAnswer{
			QuestionID:       qr.QuestionID,
			SelectedOptionID: qr.SelectedOptionID,
			IsCorrect:        qr.IsCorrect,
		})
	}

	if existing != nil {
		err = s.SubmissionRepo.ReplaceWithAnswers(submission, answers)
	} else {
		err = s.SubmissionRepo.CreateWithAnswers(submission, answers)
	}
	if err != nil {
		return nil, err
	}

	// 提交成功后清除自动保存的进度；失败只记日志，不影响已落库的成绩
	if err := s.ProgressRepo.Clear(ctx, userID, quizID); err != nil {
		logger.Log.Warn("failed to clear saved progress after submit",
			zap.Uint("userID", userID), zap.String("quizID", quizID), zap.Error(err))
	}

	result := "failed"
	if passed {
		result = "passed"
	}
	monitoring.QuizSubmissions.WithLabelValues(result).Inc()

	return &GradingResult{
		SubmissionID:   submission.ID,
		QuizID:         quizID,
		Score:          score,
		CorrectAnswers: correct,
		TotalQuestions: len(questions),
		IsPassed:       passed,
		Questions:      perQuestion,
	}, nil
}

// GetResult 从已落库的提交重建评分结果
func (s *AttemptService) GetResult(userID uint, quizID string) (*GradingResult, error) {
	submission, err := s.SubmissionRepo.FindByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, util.ErrSubmissionNotFound
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}
	options, err := s.QuizRepo.ListOptionsForQuiz(quizID)
	if err != nil {
		return nil, err
	}

	stored, err := s.SubmissionRepo.ListAnswers(submission.ID)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]string, len(stored))
	for _, a := range stored {
		selected[a.QuestionID] = a.SelectedOptionID
	}

	_, perQuestion := gradeQuiz(questions, options, selected)

	return &GradingResult{
		SubmissionID:   submission.ID,
		QuizID:         quizID,
		Score:          submission.Score,
		CorrectAnswers: submission.CorrectAnswers,
		TotalQuestions: submission.TotalQuestions,
		IsPassed:       submission.IsPassed,
		Questions:      perQuestion,
	}, nil
}

// ResetSubmission 教师重置学生成绩，同时清掉残留的自动保存进度
func (s *AttemptService) ResetSubmission(ctx context.Context, submissionID string) error {
	submission, err := s.SubmissionRepo.FindByID(submissionID)
	if err != nil {
		return util.ErrSubmissionNotFound
	}

	if err := s.SubmissionRepo.Delete(submissionID); err != nil {
		return err
	}

	if err := s.ProgressRepo.Clear(ctx, submission.UserID, submission.QuizID); err != nil {
		logger.Log.Warn("failed to clear saved progress on reset",
			zap.Uint("userID", submission.UserID), zap.String("quizID", submission.QuizID), zap.Error(err))
	}
	return nil
}

func (s *AttemptService) ListSubmissions(quizID string, page, limit int, studentName string) ([]map[string]interface{}, int64, error) {
	return s.SubmissionRepo.ListByQuiz(quizID, page, limit, studentName)
}

type StudentOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

type StudentQuestion struct {
	ID           string          `json:"id"`
	QuestionType string          `json:"questionType"`
	Content      string          `json:"content"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	Order        int             `json:"order"`
	Options      []StudentOption `json:"options"`
}

type StudentQuizDetail struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	TimeLimit     int               `json:"timeLimit"` // 分钟，0 表示不限时
	PassingScore  int               `json:"passingScore"`
	AllowRetake   bool              `json:"allowRetake"`
	QuestionCount int               `json:"questionCount"`
	Status        string            `json:"status"` // pending / completed
	Questions     []StudentQuestion `json:"questions"`
	Result        *GradingResult    `json:"result,omitempty"`
}

// GetStudentQuiz 学生端试卷视图。提交前绝不返回正确标记或解析。
func (s *AttemptService) GetStudentQuiz(userID uint, quizID string) (*StudentQuizDetail, error) {
	quiz, err := s.findPublishedQuiz(quizID)
	if err != nil {
		return nil, err
	}

	questions, err := s.QuizRepo.ListQuestions(quizID)
	if err != nil {
		return nil, err
	}
	options, err := s.QuizRepo.ListOptionsForQuiz(quizID)
	if err != nil {
		return nil, err
	}

	studentQs := make([]StudentQuestion, len(questions))
	for i, q := range questions {
		opts := make([]StudentOption, 0, len(options[q.ID]))
		for _, o := range options[q.ID] {
			opts = append(opts, StudentOption{ID: o.ID, Label: o.Label, Order: o.Order})
		}
		studentQs[i] = StudentQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Content:      q.Content,
			ImageURL:     q.ImageURL,
			Order:        q.Order,
			Options:      opts,
		}
	}

	detail := &StudentQuizDetail{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		TimeLimit:     quiz.TimeLimit,
		PassingScore:  quiz.PassingScore,
		AllowRetake:   quiz.AllowRetake,
		QuestionCount: len(questions),
		Status:        "pending",
		Questions:     studentQs,
	}

	if _, err := s.SubmissionRepo.FindByUserAndQuiz(userID, quizID); err == nil {
		detail.Status = "completed"
		if result, err := s.GetResult(userID, quizID); err == nil {
			detail.Result = result
		}
	}

	return detail, nil
}
