package models

// DayTotal is the per-day, per-user accumulated seconds ledger. Rows are
// created only when a qualified segment commits, never speculatively, and
// seconds only ever grow within a day.
type DayTotal struct {
	Date    string `gorm:"primaryKey;size:10" json:"date"` // YYYY-MM-DD in the tracker's timezone
	UserID  string `gorm:"primaryKey;size:64" json:"user_id"`
	Seconds int64  `gorm:"not null;default:0" json:"seconds"`
}
