package models

import "fmt"

type StudentLevel string

const (
	LevelPhD           StudentLevel = "PhD"
	LevelMS            StudentLevel = "MS"
	LevelBS            StudentLevel = "BS"
	LevelUndergraduate StudentLevel = "Undergraduate"
	LevelGraduate      StudentLevel = "Graduate"
)

var studentLevels = []StudentLevel{LevelPhD, LevelMS, LevelBS, LevelUndergraduate, LevelGraduate}

func ParseStudentLevel(s string) (StudentLevel, error) {
	for _, l := range studentLevels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("invalid student level %q", s)
}

type Student struct {
	BaseModel

	Name    string       `gorm:"not null"`
	Email   string       `gorm:"size:191;uniqueIndex;not null"`
	Program string       `gorm:"not null"`
	Level   StudentLevel `gorm:"type:varchar(16);not null"`
	UserID  string       `gorm:"type:varchar(36);not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
