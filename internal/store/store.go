// Package store is the persistence boundary for Studytrack: the day×user
// seconds ledger, the metadata key/value table, the user display cache, and
// per-period compliment choices. Every operation returns an error; callers
// treat a failed write as data loss risk and surface it rather than retry.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/bekzodr/studytrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DateFormat is the ledger's day key layout.
const DateFormat = "2006-01-02"

// UserSeconds is one row of a period summation, ordered by seconds descending.
type UserSeconds struct {
	UserID  string
	Seconds int64
}

// Store wraps a GORM connection and the tracker's timezone. Day boundaries
// for span splitting are computed in this location.
type Store struct {
	db  *gorm.DB
	loc *time.Location
}

// New creates a Store. A nil location defaults to UTC.
func New(db *gorm.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{db: db, loc: loc}
}

// Location returns the store's timezone.
func (s *Store) Location() *time.Location {
	return s.loc
}

// DayKey formats a timestamp as the ledger day it falls on.
func (s *Store) DayKey(t time.Time) string {
	return t.In(s.loc).Format(DateFormat)
}

// AddSeconds adds delta seconds to the (date, userID) ledger row, creating
// it if absent. A delta of zero or less is a no-op.
func (s *Store) AddSeconds(date, userID string, delta int64) error {
	if delta <= 0 || userID == "" {
		return nil
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"seconds": gorm.Expr("seconds + ?", delta),
		}),
	}).Create(&models.DayTotal{Date: date, UserID: userID, Seconds: delta})
	if result.Error != nil {
		return fmt.Errorf("store: add %ds for %s on %s: %w", delta, userID, date, result.Error)
	}
	return nil
}

// AddSpan records a continuous presence span [start, end), splitting it at
// local midnight so no day total misattributes time across a boundary.
func (s *Store) AddSpan(userID string, start, end time.Time) error {
	if userID == "" || !end.After(start) {
		return nil
	}
	cur := start.In(s.loc)
	end = end.In(s.loc)
	for cur.Before(end) {
		nextMidnight := time.Date(cur.Year(), cur.Month(), cur.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 1)
		chunkEnd := end
		if nextMidnight.Before(end) {
			chunkEnd = nextMidnight
		}
		delta := int64(chunkEnd.Sub(cur) / time.Second)
		if err := s.AddSeconds(cur.Format(DateFormat), userID, delta); err != nil {
			return err
		}
		cur = chunkEnd
	}
	return nil
}

// DaySeconds returns the committed seconds for one user on one ledger day.
// Missing rows read as zero.
func (s *Store) DaySeconds(userID, date string) (int64, error) {
	var row models.DayTotal
	result := s.db.Where("date = ? AND user_id = ?", date, userID).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("store: day seconds for %s on %s: %w", userID, date, result.Error)
	}
	return row.Seconds, nil
}

// PeriodSeconds sums seconds per raw user id across an inclusive date range,
// dropping zero totals, ordered by seconds descending. Alias folding happens
// above this layer.
func (s *Store) PeriodSeconds(startDate, endDate string) ([]UserSeconds, error) {
	var rows []UserSeconds
	err := s.db.Model(&models.DayTotal{}).
		Select("user_id, SUM(seconds) AS seconds").
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Group("user_id").
		Having("SUM(seconds) > 0").
		Order("seconds DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("store: period seconds %s..%s: %w", startDate, endDate, err)
	}
	return rows, nil
}

// GetMeta reads a metadata value. The second return reports presence.
func (s *Store) GetMeta(key string) (string, bool, error) {
	var row models.Meta
	result := s.db.Where("`key` = ?", key).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store: get meta %s: %w", key, result.Error)
	}
	return row.Value, true, nil
}

// SetMeta writes a metadata value, replacing any existing one.
func (s *Store) SetMeta(key, value string) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.Meta{Key: key, Value: value})
	if result.Error != nil {
		return fmt.Errorf("store: set meta %s: %w", key, result.Error)
	}
	return nil
}

// DeleteMeta removes the given metadata keys. Missing keys are not an error.
func (s *Store) DeleteMeta(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.Where("`key` IN ?", keys).Delete(&models.Meta{}).Error; err != nil {
		return fmt.Errorf("store: delete meta: %w", err)
	}
	return nil
}

// ClearPostNow consumes the manual post trigger if set. Returns whether it
// was set.
func (s *Store) ClearPostNow() (bool, error) {
	_, ok, err := s.GetMeta(models.MetaPostNow)
	if err != nil || !ok {
		return false, err
	}
	if err := s.DeleteMeta(models.MetaPostNow); err != nil {
		return false, err
	}
	return true, nil
}
