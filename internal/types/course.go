package types

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title          string    `gorm:"column:title;not null" json:"title"`
	Description    string    `gorm:"column:description" json:"description"`
	Topic          string    `gorm:"column:topic;not null;index" json:"topic"`
	LearningGoal   *string   `gorm:"column:learning_goal;type:text" json:"learning_goal,omitempty"`
	PreferredLevel *string   `gorm:"column:preferred_level;type:varchar(20)" json:"preferred_level,omitempty"`
	Language       string    `gorm:"column:language;type:varchar(20);not null;default:'english'" json:"language"`

	Modules []*CourseModule `gorm:"foreignKey:CourseID;references:ID" json:"modules,omitempty"`

	// Computed per request from UserProgress, never stored.
	ProgressPercentage float64 `gorm:"-" json:"progress_percentage"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Course) TableName() string { return "course" }
