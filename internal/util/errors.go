package util

import "errors"

// 错误分类，服务层用 fmt.Errorf("%w: ...") 包装，控制器通过 errors.Is 映射状态码
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrValidation        = errors.New("validation error")
	ErrDependencyFailure = errors.New("dependency failure")
)

var (
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
)
