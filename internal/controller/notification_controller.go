package controller

import (
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
}

func NewNotificationController(notificationService *service.NotificationService) *NotificationController {
	return &NotificationController{NotificationService: notificationService}
}

// MyNotifications godoc
// @Summary 我的通知
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/notifications [get]
func (c *NotificationController) MyNotifications(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	notifications, err := c.NotificationService.ListForUser(ctx.Request.Context(), caller)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, notifications)
}

// MarkRead godoc
// @Summary 标记已读
// @Tags 通知
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/notifications/{id}/read [patch]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.NotificationService.MarkRead(ctx.Request.Context(), caller, id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Notification marked as read"})
}

// ListAll godoc
// @Summary 全部通知
// @Tags 通知管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/admin/notifications [get]
func (c *NotificationController) ListAll(ctx *gin.Context) {
	notifications, err := c.NotificationService.ListAll(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, notifications)
}

// ListTakedowns godoc
// @Summary 下架申请列表
// @Tags 通知管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Notification}
// @Router /api/admin/notifications/takedowns [get]
func (c *NotificationController) ListTakedowns(ctx *gin.Context) {
	notifications, err := c.NotificationService.ListTakedownRequests(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, notifications)
}

// CountTakedowns godoc
// @Summary 下架申请数量
// @Tags 通知管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=map[string]interface{}}
// @Router /api/admin/notifications/takedowns/count [get]
func (c *NotificationController) CountTakedowns(ctx *gin.Context) {
	count, err := c.NotificationService.CountTakedownRequests(ctx.Request.Context())
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"count": count})
}

// Delete godoc
// @Summary 删除通知
// @Tags 通知管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "通知ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/notifications/{id} [delete]
func (c *NotificationController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.NotificationService.Delete(ctx.Request.Context(), id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Notification deleted"})
}
