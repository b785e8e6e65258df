package models

// Meta is a flat key/value table for small tracker state: anchor date,
// last post date, group key.
type Meta struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"type:text"`
}

// Well-known meta keys.
const (
	MetaAnchorDate   = "anchor_date"
	MetaLastPostDate = "last_post_date"
	MetaGroupKey     = "group_key"
	MetaGroupSince   = "group_since"
	MetaPostNow      = "post_now"
)
