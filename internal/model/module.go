package model

// swagger:model Module
type Module struct {
	BaseModel
	CourseID    uint    `gorm:"not null;index" json:"courseId"`
	Name        string  `gorm:"size:200;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	FilePath    *string `gorm:"size:500" json:"filePath"`
}

func (Module) TableName() string {
	return "modules"
}
