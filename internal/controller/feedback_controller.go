package controller

import (
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FeedbackController struct {
	FeedbackService *service.FeedbackService
}

func NewFeedbackController(feedbackService *service.FeedbackService) *FeedbackController {
	return &FeedbackController{FeedbackService: feedbackService}
}

// FeedbackRequest 课程评价
// swagger:model FeedbackRequest
type FeedbackRequest struct {
	CourseID uint   `json:"courseId" binding:"required"`
	Message  string `json:"message"`
	Rating   int    `json:"rating" binding:"required"`
}

// Submit godoc
// @Summary 提交课程评价
// @Tags 评价
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FeedbackRequest true "评价"
// @Success 201 {object} util.Response{data=model.Feedback}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/feedback [post]
func (c *FeedbackController) Submit(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	var req FeedbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	feedback, err := c.FeedbackService.Submit(ctx.Request.Context(), caller, req.CourseID, req.Message, req.Rating)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, feedback)
}

// ListForCourse godoc
// @Summary 课程评价列表
// @Tags 评价
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Feedback}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/feedback [get]
func (c *FeedbackController) ListForCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	feedbacks, err := c.FeedbackService.ListForCourse(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, feedbacks)
}
