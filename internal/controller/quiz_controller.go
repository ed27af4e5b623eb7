package controller

import (
	"elearn_quiz_backend/internal/model"
	"elearn_quiz_backend/internal/service"
	"elearn_quiz_backend/internal/util"
	"errors"
	"io"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuizController struct {
	Service        *service.QuizService
	AttemptService *service.AttemptService
	Storage        *service.StorageService
}

func NewQuizController(svc *service.QuizService, attemptSvc *service.AttemptService, storage *service.StorageService) *QuizController {
	return &QuizController{Service: svc, AttemptService: attemptSvc, Storage: storage}
}

// CreateQuiz godoc
// @Summary 创建试卷
// @Tags 试卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuizReq true "试卷信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.CreateQuiz(user.UserID, req)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, quiz)
}

// ListQuizzes godoc
// @Summary 试卷列表（教师端，含未发布）
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	quizzes, total, err := c.Service.ListQuizzes(page, limit, false)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": quizzes, "total": total})
}

// GetQuiz godoc
// @Summary 试卷详情（教师端，含正确答案）
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id := ctx.Param("id")

	quiz, questions, options, err := c.Service.GetQuiz(id)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, gin.H{"quiz": quiz, "questions": questions, "options": options})
}

// UpdateQuiz godoc
// @Summary 更新试卷
// @Tags 试卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Param body body service.QuizReq true "试卷信息"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	id := ctx.Param("id")
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.QuizReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.UpdateQuiz(id, user.UserID, user.Role == model.Admin, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary 删除试卷
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id := ctx.Param("id")
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.DeleteQuiz(id, user.UserID, user.Role == model.Admin); err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}

// UploadQuestionImage godoc
// @Summary 上传题目配图
// @Tags 试卷管理
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片文件"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/image [post]
func (c *QuizController) UploadQuestionImage(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, []string{"image/"})
	if err != nil {
		util.BadRequest(ctx, "only image uploads are allowed")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ext := filepath.Ext(header.Filename)
	filename := "quiz-images/" + uuid.New().String() + ext

	url, err := c.Storage.Upload(ctx.Request.Context(), filename, file, header.Size, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

// ListPublishedQuizzes godoc
// @Summary 已发布试卷列表（学生端）
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/quizzes [get]
func (c *QuizController) ListPublishedQuizzes(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	quizzes, total, err := c.Service.ListQuizzes(page, limit, true)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": quizzes, "total": total})
}

// GetStudentQuiz godoc
// @Summary 试卷详情（学生端，不含正确答案）
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetStudentQuiz(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id := ctx.Param("id")

	detail, err := c.AttemptService.GetStudentQuiz(user.UserID, id)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, detail)
}
