package app

import (
	"elearn_quiz_backend/internal/config"
	"elearn_quiz_backend/internal/middleware"
	"elearn_quiz_backend/internal/model"
	"elearn_quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)

	// 答题相关
	rg.GET("/quizzes", c.quiz.ListPublishedQuizzes)
	rg.GET("/quizzes/:id", c.quiz.GetStudentQuiz)
	rg.GET("/quizzes/:id/progress", c.attempt.GetProgress)
	rg.PUT("/quizzes/:id/progress", c.attempt.SaveProgress)
	rg.DELETE("/quizzes/:id/progress", c.attempt.ClearProgress)
	rg.POST("/quizzes/:id/submit", c.attempt.Submit)
	rg.GET("/quizzes/:id/result", c.attempt.GetResult)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.POST("/quizzes", c.quiz.CreateQuiz)
		teacher.GET("/quizzes", c.quiz.ListQuizzes)
		teacher.GET("/quizzes/:id", c.quiz.GetQuiz)
		teacher.PUT("/quizzes/:id", c.quiz.UpdateQuiz)
		teacher.DELETE("/quizzes/:id", c.quiz.DeleteQuiz)
		teacher.POST("/quizzes/:id/image", c.quiz.UploadQuestionImage)
		teacher.GET("/quizzes/:id/submissions", c.attempt.ListSubmissions)
		teacher.POST("/quizzes/submissions/:id/reset", c.attempt.ResetSubmission)
	}
}
