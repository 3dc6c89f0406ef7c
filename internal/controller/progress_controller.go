package controller

import (
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// UpdateProgressRequest 进度更新，courseId 可省略
// swagger:model UpdateProgressRequest
type UpdateProgressRequest struct {
	ModuleID           uint     `json:"moduleId" binding:"required"`
	CourseID           *uint    `json:"courseId"`
	ProgressPercentage *float64 `json:"progressPercentage"`
	IsCompleted        *bool    `json:"isCompleted"`
}

// CompleteModuleRequest 标记模块完成
// swagger:model CompleteModuleRequest
type CompleteModuleRequest struct {
	ModuleID uint `json:"moduleId" binding:"required"`
}

// CourseProgress godoc
// @Summary 课程平均进度
// @Description 当前用户在课程下所有模块的平均进度，没有记录时为 0
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=map[string]interface{}}
// @Router /api/progress/courses/{id} [get]
func (c *ProgressController) CourseProgress(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	avg, err := c.ProgressService.CourseAverage(ctx.Request.Context(), caller, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"courseId": id,
		"progress": avg,
	})
}

// ModuleProgress godoc
// @Summary 课程下各模块进度
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.ModuleProgressView}
// @Router /api/progress/courses/{id}/modules [get]
func (c *ProgressController) ModuleProgress(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	views, err := c.ProgressService.ModuleProgress(ctx.Request.Context(), caller, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// UpdateProgress godoc
// @Summary 更新模块进度
// @Description progressPercentage 必须在 0 到 100 之间
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProgressRequest true "进度"
// @Success 200 {object} util.Response{data=model.ModuleProgress}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/progress [post]
func (c *ProgressController) UpdateProgress(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.UpdateProgress(ctx.Request.Context(), caller, service.ProgressUpdate{
		ModuleID:           req.ModuleID,
		CourseID:           req.CourseID,
		ProgressPercentage: req.ProgressPercentage,
		IsCompleted:        req.IsCompleted,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CompleteModule godoc
// @Summary 标记模块完成
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CompleteModuleRequest true "模块ID"
// @Success 200 {object} util.Response{data=model.ModuleProgress}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/progress/complete [post]
func (c *ProgressController) CompleteModule(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	var req CompleteModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.CompleteModule(ctx.Request.Context(), caller, req.ModuleID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
