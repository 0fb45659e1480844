package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password       string     `gorm:"not null;column:password" json:"-"`
	IsActive       bool       `gorm:"not null;default:true;column:is_active" json:"is_active"`
	IsAdmin        bool       `gorm:"not null;default:false;column:is_admin" json:"is_admin"`
	PlanType       string     `gorm:"type:varchar(20);not null;default:'free';column:plan_type" json:"plan_type"`
	TrialExpiresAt *time.Time `gorm:"column:trial_expires_at" json:"trial_expires_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
