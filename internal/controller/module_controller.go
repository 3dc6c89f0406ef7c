package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"mini_lms_backend/internal/service"
	"mini_lms_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

// CreateModuleRequest 创建模块（multipart 表单）
// swagger:model CreateModuleRequest
type CreateModuleRequest struct {
	CourseID uint   `form:"courseId" binding:"required"`
	Title    string `form:"title" binding:"required,max=200"`
	Content  string `form:"content"`
}

// UpdateModuleRequest 更新模块（multipart 表单）
// swagger:model UpdateModuleRequest
type UpdateModuleRequest struct {
	Title   string `form:"title" binding:"required,max=200"`
	Content string `form:"content"`
}

// readAttachment 读取可选的 file 字段；返回的 closer 需在服务调用结束后关闭
func readAttachment(ctx *gin.Context) (*service.Attachment, io.Closer, error) {
	header, err := ctx.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if header.Size > util.MaxAttachmentSize {
		return nil, nil, fmt.Errorf("file exceeds %d bytes", util.MaxAttachmentSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	contentType, err := detectAttachmentType(file)
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	return &service.Attachment{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	}, file, nil
}

func detectAttachmentType(file multipart.File) (string, error) {
	contentType, err := util.DetectMimeType(file, util.AllowedAttachmentTypes)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return contentType, nil
}

// CreateModule godoc
// @Summary 创建模块
// @Description 为自己的课程添加模块，并为所有已选课学员初始化进度
// @Tags 模块
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param courseId formData int true "课程ID"
// @Param title formData string true "模块标题"
// @Param content formData string false "模块内容"
// @Param file formData file false "附件"
// @Success 201 {object} util.Response{data=model.Module}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 502 {object} util.Response "附件上传失败"
// @Router /api/modules [post]
func (c *ModuleController) CreateModule(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}

	var req CreateModuleRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attachment, closer, err := readAttachment(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	module, err := c.ModuleService.CreateModule(ctx.Request.Context(), caller, req.CourseID, service.ModuleInput{
		Title:      req.Title,
		Content:    req.Content,
		Attachment: attachment,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// UpdateModule godoc
// @Summary 更新模块
// @Description 更新模块内容，所有学员在该模块上的进度归零
// @Tags 模块
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Param title formData string true "模块标题"
// @Param content formData string false "模块内容"
// @Param file formData file false "附件"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/modules/{id} [put]
func (c *ModuleController) UpdateModule(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateModuleRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attachment, closer, err := readAttachment(ctx)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if closer != nil {
		defer closer.Close()
	}

	module, err := c.ModuleService.UpdateModule(ctx.Request.Context(), caller, id, service.ModuleInput{
		Title:      req.Title,
		Content:    req.Content,
		Attachment: attachment,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// DeleteModule godoc
// @Summary 删除模块
// @Tags 模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/modules/{id} [delete]
func (c *ModuleController) DeleteModule(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.ModuleService.DeleteModule(ctx.Request.Context(), caller, id); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "Module deleted"})
}

// GetModule godoc
// @Summary 模块详情
// @Tags 模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 404 {object} util.Response
// @Router /api/modules/{id} [get]
func (c *ModuleController) GetModule(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	module, err := c.ModuleService.GetModule(ctx.Request.Context(), id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// ListCourseModules godoc
// @Summary 课程模块列表
// @Description 返回课程的模块及当前用户的进度
// @Tags 模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.ModuleWithProgress}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/modules [get]
func (c *ModuleController) ListCourseModules(ctx *gin.Context) {
	caller, ok := currentCaller(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	modules, err := c.ModuleService.ListModulesWithProgress(ctx.Request.Context(), caller, id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, modules)
}
