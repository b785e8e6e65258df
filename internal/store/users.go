package store

import (
	"fmt"
	"strings"

	"github.com/bekzodr/studytrack/internal/models"
	"gorm.io/gorm/clause"
)

// CacheUser upserts the last observed display name and username for a user.
func (s *Store) CacheUser(userID, displayName, username string) error {
	if userID == "" {
		return nil
	}
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "username", "updated_at"}),
	}).Create(&models.UserCache{
		UserID:      userID,
		DisplayName: strings.TrimSpace(displayName),
		Username:    strings.TrimSpace(username),
	})
	if result.Error != nil {
		return fmt.Errorf("store: cache user %s: %w", userID, result.Error)
	}
	return nil
}

// DisplayName returns the preferred display string for a user id:
// "@username" when a username is cached, else the display name, else the
// raw id.
func (s *Store) DisplayName(userID string) string {
	var row models.UserCache
	if err := s.db.Where("user_id = ?", userID).First(&row).Error; err != nil {
		return userID
	}
	if u := strings.TrimSpace(row.Username); u != "" {
		return "@" + u
	}
	if n := strings.TrimSpace(row.DisplayName); n != "" {
		return n
	}
	return userID
}

// UsernameIDs returns a map of lowercased username to user id for every
// cached user that has a username. The alias resolver uses this to turn
// configured username groups into id groups.
func (s *Store) UsernameIDs() (map[string]string, error) {
	var rows []models.UserCache
	if err := s.db.Where("username != ''").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: username ids: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[strings.ToLower(strings.TrimSpace(r.Username))] = r.UserID
	}
	return out, nil
}
