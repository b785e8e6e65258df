package models

// PeriodCompliment pins the compliment chosen for a user within one period,
// so repeated board builds for the same period stay stable. Period keys look
// like "day:2024-01-01", "week:2024-01-01", "month:2024-01-01".
type PeriodCompliment struct {
	Period     string `gorm:"primaryKey;size:24"`
	UserID     string `gorm:"primaryKey;size:64"`
	Compliment string `gorm:"size:128;not null"`
}
