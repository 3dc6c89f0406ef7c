package controller

import (
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	AnalyticsService *service.AnalyticsService
}

func NewAnalyticsController(analyticsService *service.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{AnalyticsService: analyticsService}
}

// trainerID 管理员路由从路径读取讲师ID，讲师路由使用自己的ID
func trainerID(ctx *gin.Context) (uint, bool) {
	if ctx.Param("trainerId") != "" {
		return pathID(ctx, "trainerId")
	}
	caller, ok := currentCaller(ctx)
	if !ok {
		return 0, false
	}
	return caller.UserID, true
}

// TrainerAnalytics godoc
// @Summary 讲师课程统计
// @Description 每门课程的选课数、平均评分、平均进度，无数据时为 0
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.TrainerAnalytics}
// @Router /api/analytics/trainer [get]
func (c *AnalyticsController) TrainerAnalytics(ctx *gin.Context) {
	id, ok := trainerID(ctx)
	if !ok {
		return
	}
	result, err := c.AnalyticsService.PerCourseAnalytics(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// TrainerLearners godoc
// @Summary 讲师学员进度
// @Description 讲师名下课程的学员及每门课的平均进度
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.LearnerRoster}
// @Router /api/analytics/trainer/learners [get]
func (c *AnalyticsController) TrainerLearners(ctx *gin.Context) {
	id, ok := trainerID(ctx)
	if !ok {
		return
	}
	roster, err := c.AnalyticsService.LearnerRosterForTrainer(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, roster)
}
