package model

import (
	"time"
)

// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BoolPtr / Float64Ptr 便于构造可空字段
func BoolPtr(v bool) *bool { return &v }

func Float64Ptr(v float64) *float64 { return &v }
