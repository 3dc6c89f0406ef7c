package controller

import (
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// CourseRequest 创建/更新课程
// swagger:model CourseRequest
type CourseRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	Type       string `json:"type" binding:"max=50"`
	Duration   *int   `json:"duration"`
	Visibility string `json:"visibility" binding:"omitempty,max=20"`
}

func (r CourseRequest) input() service.CourseInput {
	return service.CourseInput{
		Name:       r.Name,
		Type:       r.Type,
		Duration:   r.Duration,
		Visibility: r.Visibility,
	}
}

// TakedownRequest 下架申请
// swagger:model TakedownRequest
type TakedownRequest struct {
	Reason string `json:"reason"`
}

// CreateCourse godoc
// @Summary 创建课程
// @Description 讲师创建课程，所有在册学员会收到新课程通知
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	var req CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), caller, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListCourses(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param request body CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), caller, id, req.input())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Description 级联删除模块、进度、反馈、下架申请通知和选课记录
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.CourseService.DeleteCourse(ctx.Request.Context(), caller, id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Course and related data deleted"})
}

// RequestTakedown godoc
// @Summary 申请下架课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Param request body TakedownRequest true "下架原因"
// @Success 200 {object} util.Response{data=model.Notification}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/takedown [post]
func (c *CourseController) RequestTakedown(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req TakedownRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	notification, err := c.CourseService.RequestTakedown(ctx.Request.Context(), caller, id, req.Reason)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, notification)
}
