package controller

import (
	"elearn_quiz_backend/internal/service"
	"elearn_quiz_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

func (c *AttemptController) handleAttemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuizNotFound), errors.Is(err, util.ErrSubmissionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrQuizNotPublished):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrQuizAlreadySubmitted):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrEmptyQuiz):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// GetProgress godoc
// @Summary 读取自动保存的答题进度
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/progress [get]
func (c *AttemptController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	answers, err := c.Service.GetProgress(ctx.Request.Context(), user.UserID, ctx.Param("id"))
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"answers": answers})
}

type SaveProgressRequest struct {
	Answers map[string]string `json:"answers"`
}

// SaveProgress godoc
// @Summary 保存答题进度（整体覆盖）
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Param body body SaveProgressRequest true "完整答案快照"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/progress [put]
func (c *AttemptController) SaveProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SaveProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SaveProgress(ctx.Request.Context(), user.UserID, ctx.Param("id"), req.Answers); err != nil {
		c.handleAttemptError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"saved": true})
}

// ClearProgress godoc
// @Summary 清除答题进度（幂等）
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/progress [delete]
func (c *AttemptController) ClearProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.ClearProgress(ctx.Request.Context(), user.UserID, ctx.Param("id")); err != nil {
		c.handleAttemptError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"cleared": true})
}

// Submit godoc
// @Summary 提交试卷并评分
// @Tags 答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Param body body service.SubmitReq true "完整答案"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.Service.Submit(ctx.Request.Context(), user.UserID, ctx.Param("id"), req)
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// GetResult godoc
// @Summary 查询本人最近一次评分结果
// @Tags 答题
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/result [get]
func (c *AttemptController) GetResult(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.Service.GetResult(user.UserID, ctx.Param("id"))
	if err != nil {
		c.handleAttemptError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// ListSubmissions godoc
// @Summary 试卷答题情况列表
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Param name query string false "学生姓名"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/{id}/submissions [get]
func (c *AttemptController) ListSubmissions(ctx *gin.Context) {
	id := ctx.Param("id")

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	name := ctx.Query("name")

	ss, total, err := c.Service.ListSubmissions(id, page, limit, name)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": ss, "total": total})
}

// ResetSubmission godoc
// @Summary 重置学生成绩（允许重考）
// @Tags 试卷管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "提交ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/quizzes/submissions/{id}/reset [post]
func (c *AttemptController) ResetSubmission(ctx *gin.Context) {
	if err := c.Service.ResetSubmission(ctx.Request.Context(), ctx.Param("id")); err != nil {
		c.handleAttemptError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"reset": true})
}
