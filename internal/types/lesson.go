package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Lesson content and quiz_data stay NULL until the first just-in-time
// generation succeeds; content_generated_at is set exactly once.
type Lesson struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ModuleID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"module_id"`
	Module             *CourseModule  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	Title              string         `gorm:"column:title;not null" json:"title"`
	Description        string         `gorm:"column:description;type:text" json:"description"`
	OrderIndex         int            `gorm:"column:order_index;not null" json:"order_index"`
	Content            *string        `gorm:"column:content;type:text" json:"content,omitempty"`
	QuizData           datatypes.JSON `gorm:"column:quiz_data;type:jsonb" json:"quiz_data,omitempty"`
	ContentGeneratedAt *time.Time     `gorm:"column:content_generated_at;index" json:"content_generated_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }
