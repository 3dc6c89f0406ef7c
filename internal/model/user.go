package model

type UserRole string

const (
	Trainer UserRole = "Trainer"
	Learner UserRole = "Learner"
	Admin   UserRole = "Admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case Trainer, Learner, Admin:
		return true
	}
	return false
}

// swagger:model User
type User struct {
	BaseModel
	Username     string   `gorm:"size:100;not null" json:"username"`
	Email        string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"size:100;not null" json:"-"`
	Role         UserRole `gorm:"size:20;not null;index" json:"role"`
	IsActive     bool     `gorm:"default:true" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}
