package models

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	IsVerified   bool   `gorm:"default:false" json:"is_verified"`
}

func (User) TableName() string {
	return "users"
}
