package models

import "time"

type CoachProfile struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`

	// IANA zone the coach defines their weekly schedule in.
	Timezone string `gorm:"size:64;default:'UTC'" json:"timezone"`
	Bio      string `gorm:"size:500" json:"bio"`
	Active   bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
