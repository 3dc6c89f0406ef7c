package model

// Caller 是已解析的请求身份，显式传入每个服务操作
type Caller struct {
	UserID uint
	Role   UserRole
	Email  string
}

func (c Caller) Is(role UserRole) bool {
	return c.Role == role
}
