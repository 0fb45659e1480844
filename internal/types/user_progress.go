package types

import (
	"time"

	"github.com/google/uuid"
)

type UserProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_user_progress_user_lesson,unique" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_progress_user_lesson,unique" json:"lesson_id"`
	Lesson      *Lesson   `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	IsCompleted bool      `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	QuizScore   *int      `gorm:"column:quiz_score" json:"quiz_score,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }
