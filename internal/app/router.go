package app

import (
	"mini_lms_backend/docs"
	"mini_lms_backend/internal/config"
	"mini_lms_backend/internal/middleware"
	"mini_lms_backend/internal/model"
	"mini_lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActiveUserMiddleware(repos.user))
	{
		a.registerCommonRoutes(authGroup, c)
		a.registerLearnerRoutes(authGroup, c)
		a.registerTrainerRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
	}
}

// registerCommonRoutes 所有已登录角色可用
func (a *App) registerCommonRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.Me)

	group.GET("/courses", c.course.ListCourses)
	group.GET("/courses/:id", c.course.GetCourse)
	group.GET("/courses/:id/modules", c.module.ListCourseModules)
	group.GET("/courses/:id/feedback", c.feedback.ListForCourse)
	group.GET("/modules/:id", c.module.GetModule)

	group.GET("/progress/courses/:id", c.progress.CourseProgress)
	group.GET("/progress/courses/:id/modules", c.progress.ModuleProgress)

	group.GET("/notifications", c.notification.MyNotifications)
	group.PATCH("/notifications/:id/read", c.notification.MarkRead)
}

func (a *App) registerLearnerRoutes(group *gin.RouterGroup, c *controllers) {
	learner := group.Group("")
	learner.Use(middleware.StrictRoleMiddleware(model.Learner))
	{
		learner.POST("/enrollments", c.enrollment.Enroll)
		learner.GET("/enrollments/mine", c.enrollment.MyCourses)
		learner.DELETE("/enrollments/:id", c.enrollment.Drop)

		learner.POST("/progress", c.progress.UpdateProgress)
		learner.POST("/progress/complete", c.progress.CompleteModule)

		learner.POST("/feedback", c.feedback.Submit)
	}
}

func (a *App) registerTrainerRoutes(group *gin.RouterGroup, c *controllers) {
	trainer := group.Group("")
	trainer.Use(middleware.StrictRoleMiddleware(model.Trainer))
	{
		trainer.POST("/courses", c.course.CreateCourse)
		trainer.PUT("/courses/:id", c.course.UpdateCourse)
		trainer.POST("/courses/:id/takedown", c.course.RequestTakedown)

		trainer.POST("/modules", c.module.CreateModule)
		trainer.PUT("/modules/:id", c.module.UpdateModule)
		trainer.DELETE("/modules/:id", c.module.DeleteModule)

		trainer.GET("/analytics/trainer", c.analytics.TrainerAnalytics)
		trainer.GET("/analytics/trainer/learners", c.analytics.TrainerLearners)
	}

	// 讲师删除自己的课程，管理员可删除任意课程
	owner := group.Group("")
	owner.Use(middleware.RoleMiddleware(model.Trainer))
	{
		owner.DELETE("/courses/:id", c.course.DeleteCourse)
		owner.GET("/courses/:id/learners", c.enrollment.CourseLearners)
	}
}

func (a *App) registerAdminRoutes(group *gin.RouterGroup, c *controllers) {
	admin := group.Group("/admin")
	admin.Use(middleware.StrictRoleMiddleware(model.Admin))
	{
		admin.GET("/notifications", c.notification.ListAll)
		admin.GET("/notifications/takedowns", c.notification.ListTakedowns)
		admin.GET("/notifications/takedowns/count", c.notification.CountTakedowns)
		admin.DELETE("/notifications/:id", c.notification.Delete)

		admin.GET("/analytics/trainers/:trainerId", c.analytics.TrainerAnalytics)
		admin.GET("/analytics/trainers/:trainerId/learners", c.analytics.TrainerLearners)

		admin.GET("/users", c.user.GetUsers)
		admin.GET("/users/:id", c.user.GetUser)
		admin.PUT("/users/:id", c.user.UpdateUser)
		admin.PATCH("/users/:id/toggle-status", c.user.ToggleUserStatus)
		admin.DELETE("/users/:id", c.user.DeleteUser)
	}
}
