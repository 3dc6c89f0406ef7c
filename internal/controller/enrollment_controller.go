package controller

import (
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// EnrollRequest 选课请求
// swagger:model EnrollRequest
type EnrollRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// Enroll godoc
// @Summary 选课
// @Tags 选课
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EnrollRequest true "课程ID"
// @Success 201 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response
// @Router /api/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	enrollment, err := c.EnrollmentService.CreateEnrollment(ctx.Request.Context(), caller, req.CourseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// MyCourses godoc
// @Summary 我的课程
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.EnrolledCourse}
// @Router /api/enrollments/mine [get]
func (c *EnrollmentController) MyCourses(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	courses, err := c.EnrollmentService.MyCourses(ctx.Request.Context(), caller)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// Drop godoc
// @Summary 退课
// @Description 删除选课记录以及该课程下自己的进度和反馈
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Param id path int true "选课记录ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/enrollments/{id} [delete]
func (c *EnrollmentController) Drop(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.EnrollmentService.DropEnrollment(ctx.Request.Context(), caller, id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Enrollment dropped"})
}

// CourseLearners godoc
// @Summary 课程学员
// @Tags 选课
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.CourseLearner}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/learners [get]
func (c *EnrollmentController) CourseLearners(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	learners, err := c.EnrollmentService.LearnersOfCourse(ctx.Request.Context(), caller, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, learners)
}
