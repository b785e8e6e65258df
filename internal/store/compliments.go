package store

import (
	"errors"
	"fmt"

	"github.com/bekzodr/studytrack/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Compliment returns the saved compliment for (period, userID), if any.
func (s *Store) Compliment(period, userID string) (string, bool, error) {
	var row models.PeriodCompliment
	result := s.db.Where("period = ? AND user_id = ?", period, userID).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("store: compliment %s/%s: %w", period, userID, result.Error)
	}
	return row.Compliment, true, nil
}

// SaveCompliment pins a compliment choice for (period, userID).
func (s *Store) SaveCompliment(period, userID, compliment string) error {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "period"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"compliment"}),
	}).Create(&models.PeriodCompliment{Period: period, UserID: userID, Compliment: compliment})
	if result.Error != nil {
		return fmt.Errorf("store: save compliment %s/%s: %w", period, userID, result.Error)
	}
	return nil
}

// UsedCompliments returns the set of compliments already used for a user
// across all periods sharing a scope prefix ("week:", "month:").
func (s *Store) UsedCompliments(prefix, userID string) (map[string]bool, error) {
	var rows []models.PeriodCompliment
	if err := s.db.Where("period LIKE ? AND user_id = ?", prefix+"%", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: used compliments %s for %s: %w", prefix, userID, err)
	}
	used := make(map[string]bool, len(rows))
	for _, r := range rows {
		used[r.Compliment] = true
	}
	return used, nil
}
