package models

import "time"

// UserCache remembers the display name and username last observed for a
// user id, so boards can be rendered after the user has gone offline.
type UserCache struct {
	UserID      string `gorm:"primaryKey;size:64"`
	DisplayName string `gorm:"size:128"`
	Username    string `gorm:"size:64;index"`
	UpdatedAt   time.Time
}
