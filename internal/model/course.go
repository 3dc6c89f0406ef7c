package model

const DefaultVisibility = "Public"

// swagger:model Course
type Course struct {
	BaseModel
	TrainerID  uint     `gorm:"not null;index" json:"trainerId"`
	Name       string   `gorm:"size:200;not null" json:"name"`
	Type       string   `gorm:"size:50" json:"type"`
	Duration   *int     `json:"duration"`
	Visibility string   `gorm:"size:20;default:'Public'" json:"visibility"`
	IsApproved bool     `gorm:"default:false" json:"isApproved"`
	Trainer    *User    `gorm:"foreignKey:TrainerID" json:"trainer,omitempty"`
	Modules    []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
