package models

type User struct {
	BaseModel

	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"size:191;uniqueIndex;not null"`
	Title        string
	Address      string
	Phone        string
}
