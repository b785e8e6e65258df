package store

import (
	"fmt"
	"time"

	"github.com/bekzodr/studytrack/internal/models"
)

// Anchor returns the persisted anchor date (midnight, store timezone),
// seeding it to today's midnight when absent or unparseable.
func (s *Store) Anchor(now time.Time) (time.Time, error) {
	v, ok, err := s.GetMeta(models.MetaAnchorDate)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		if d, perr := time.ParseInLocation(DateFormat, v, s.loc); perr == nil {
			return d, nil
		}
	}
	today := midnight(now.In(s.loc))
	if err := s.SetMeta(models.MetaAnchorDate, today.Format(DateFormat)); err != nil {
		return time.Time{}, err
	}
	return today, nil
}

// EnsureGroup compares the configured group key with the persisted one and,
// on mismatch, wipes all totals and re-anchors to today. A first run (no
// persisted key) seeds the key without wiping. Returns whether a reset ran.
func (s *Store) EnsureGroup(groupKey string, now time.Time) (bool, error) {
	old, ok, err := s.GetMeta(models.MetaGroupKey)
	if err != nil {
		return false, err
	}
	if ok && old == groupKey {
		return false, nil
	}
	if !ok {
		today := midnight(now.In(s.loc)).Format(DateFormat)
		if err := s.SetMeta(models.MetaGroupKey, groupKey); err != nil {
			return false, err
		}
		if err := s.SetMeta(models.MetaGroupSince, today); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.ResetAll(groupKey, now); err != nil {
		return false, err
	}
	return true, nil
}

// ResetAll wipes every accumulated total and compliment choice, then
// re-seeds the anchor and group metadata for a fresh start. Used when the
// tracked group changes and by the explicit `st db reset` command.
func (s *Store) ResetAll(groupKey string, now time.Time) error {
	today := midnight(now.In(s.loc)).Format(DateFormat)

	if err := s.db.Where("1 = 1").Delete(&models.DayTotal{}).Error; err != nil {
		return fmt.Errorf("store: reset totals: %w", err)
	}
	if err := s.db.Where("1 = 1").Delete(&models.PeriodCompliment{}).Error; err != nil {
		return fmt.Errorf("store: reset compliments: %w", err)
	}
	if err := s.DeleteMeta(
		models.MetaAnchorDate,
		models.MetaLastPostDate,
		models.MetaGroupKey,
		models.MetaGroupSince,
		models.MetaPostNow,
	); err != nil {
		return err
	}

	if err := s.SetMeta(models.MetaAnchorDate, today); err != nil {
		return err
	}
	if err := s.SetMeta(models.MetaGroupKey, groupKey); err != nil {
		return err
	}
	return s.SetMeta(models.MetaGroupSince, today)
}

// midnight truncates a timestamp to 00:00 of its calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
