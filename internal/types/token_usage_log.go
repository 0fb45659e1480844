package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	UsageOperationCourseSyllabus = "course_syllabus"
	UsageOperationLessonContent  = "lesson_content"
)

// TokenUsageLog is append-only: one row per successful LLM call.
type TokenUsageLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User         *User      `gorm:"constraint:OnDelete:SET NULL;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Operation    string     `gorm:"column:operation;type:varchar(50);not null" json:"operation"`
	InputTokens  int        `gorm:"column:input_tokens;not null;default:0" json:"input_tokens"`
	OutputTokens int        `gorm:"column:output_tokens;not null;default:0" json:"output_tokens"`
	TotalTokens  int        `gorm:"column:total_tokens;not null;default:0" json:"total_tokens"`
	CreatedAt    time.Time  `gorm:"not null;default:now();index" json:"created_at"`
}

func (TokenUsageLog) TableName() string { return "token_usage_log" }
