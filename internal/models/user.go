package models

import "time"

// UserEntity is the principal a command run is attributed to.
type UserEntity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserEntity) TableName() string {
	return "users"
}
