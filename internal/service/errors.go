package service

import (
	"errors"
	"fmt"
	"mini_lms_backend/internal/util"

	"gorm.io/gorm"
)

// notFoundOr 把 gorm.ErrRecordNotFound 转换为 util.ErrNotFound，其余错误原样返回
func notFoundOr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", util.ErrNotFound, entity, id)
	}
	return err
}
