package controller

import (
	"mini_lms_backend/internal/model"
	"mini_lms_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID 解析路径中的数字 ID，失败时直接返回 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func currentCaller(ctx *gin.Context) (model.Caller, bool) {
	caller, ok := util.GetCaller(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return model.Caller{}, false
	}
	return caller, true
}
