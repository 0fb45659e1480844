package types

import (
	"time"

	"github.com/google/uuid"
)

type CourseModule struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;index:idx_course_module_order,unique" json:"course_id"`
	Course     *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	OrderIndex int       `gorm:"column:order_index;not null;index:idx_course_module_order,unique" json:"order_index"`
	Title      string    `gorm:"column:title;not null" json:"title"`

	Lessons []*Lesson `gorm:"foreignKey:ModuleID;references:ID" json:"lessons,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CourseModule) TableName() string { return "course_module" }
