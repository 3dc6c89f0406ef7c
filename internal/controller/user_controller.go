package controller

import (
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/repository"
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserController 管理端用户接口
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

// UpdateUserRequest 定义用户更新请求结构，未提供的字段不修改
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	Username *string         `json:"username"`
	Email    *string         `json:"email" binding:"omitempty,email"`
	Role     *model.UserRole `json:"role" binding:"omitempty,oneof=Trainer Learner Admin"`
	IsActive *bool           `json:"isActive"`
}

// GetUsers godoc
// @Summary 获取用户列表
// @Description 获取用户列表，支持分页和筛选
// @Tags 用户管理
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页条数" default(20)
// @Param role query string false "角色筛选"
// @Param active query bool false "是否启用"
// @Param search query string false "搜索关键词"
// @Success 200 {object} util.Response{data=map[string]interface{}} "成功"
// @Failure 403 {object} util.Response "权限不足"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.UserFilter{
		Role:   model.UserRole(ctx.Query("role")),
		Search: ctx.Query("search"),
	}
	if activeStr := ctx.Query("active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			util.BadRequest(ctx, "invalid active filter")
			return
		}
		filter.Active = &active
	}

	users, total, err := c.UserService.GetUsers(ctx.Request.Context(), filter, page, pageSize)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"items": users,
		"total": total,
		"page":  page,
		"pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetUser godoc
// @Summary 获取单个用户信息
// @Tags 用户管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	user, err := c.UserService.GetUserByID(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateUser godoc
// @Summary 更新用户
// @Tags 用户管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body UpdateUserRequest true "用户信息"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "用户不存在"
// @Failure 409 {object} util.Response "邮箱已被使用"
// @Router /api/admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateUser(ctx.Request.Context(), id, service.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ToggleUserStatus godoc
// @Summary 启用/停用用户
// @Tags 用户管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/toggle-status [patch]
func (c *UserController) ToggleUserStatus(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.UserService.ToggleUserStatus(ctx.Request.Context(), caller, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DeleteUser godoc
// @Summary 删除用户
// @Description 同时删除学员的进度、评价、选课和通知；仍有课程的讲师不能删除
// @Tags 用户管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "讲师仍有课程"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [delete]
func (c *UserController) DeleteUser(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.UserService.DeleteUser(ctx.Request.Context(), caller, id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "User deleted"})
}
