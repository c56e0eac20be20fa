package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
	"github.com/slotwise/session-booking/utils"
)

// SetSchedule replaces all of a provider's recurring rules in one
// transaction. Any invalid rule aborts the whole call; there is never a
// partial replace.
func SetSchedule(providerID uint, rules []models.ScheduleRule) ([]models.ScheduleRule, error) {
	if err := validateRuleSet(rules); err != nil {
		return nil, err
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := requireProvider(tx, providerID); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("provider_id = ?", providerID).Delete(&models.ScheduleRule{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].ID = 0
			rules[i].ProviderID = providerID
			if err := tx.Create(&rules[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetSchedule(providerID)
}

// GetSchedule returns the provider's active rules ordered by day, then
// start time.
func GetSchedule(providerID uint) ([]models.ScheduleRule, error) {
	if err := requireProvider(db.DB, providerID); err != nil {
		return nil, err
	}
	var rules []models.ScheduleRule
	err := db.DB.
		Where("provider_id = ? AND is_active = ?", providerID, true).
		Order("day_of_week asc, start_time asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// AddBlockedDate blocks a calendar day for the provider. Re-blocking the
// same day updates the reason. Existing bookings and holds on that day are
// left untouched; the block only stops future slot generation.
func AddBlockedDate(providerID uint, date string, reason string) (*models.BlockedDate, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := requireProvider(db.DB, providerID); err != nil {
		return nil, err
	}
	blocked := models.BlockedDate{
		ProviderID: providerID,
		Date:       date,
		Reason:     reason,
	}
	err := db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "updated_at"}),
	}).Create(&blocked).Error
	if err != nil {
		return nil, err
	}
	return &blocked, nil
}

// RemoveBlockedDate unblocks a day. Removing a day that was never blocked
// is a no-op.
func RemoveBlockedDate(providerID uint, date string) error {
	if _, err := utils.ParseDate(date); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return db.DB.Unscoped().
		Where("provider_id = ? AND date = ?", providerID, date).
		Delete(&models.BlockedDate{}).Error
}

// validateRuleSet checks each rule and rejects same-day rules whose windows
// intersect. Candidates are walked per rule window, so intersecting windows
// would emit overlapping candidates for one day; disjoint or merely
// touching windows cannot. Touching is fine because windows are half-open.
// The check ignores IsActive: the column defaults to true, so a zero-valued
// flag still lands active in the store.
func validateRuleSet(rules []models.ScheduleRule) error {
	for i := range rules {
		if err := validateRule(&rules[i]); err != nil {
			return err
		}
	}
	for i := range rules {
		aStart, _ := utils.ParseClock(rules[i].StartTime)
		aEnd, _ := utils.ParseClock(rules[i].EndTime)
		for j := i + 1; j < len(rules); j++ {
			if rules[j].DayOfWeek != rules[i].DayOfWeek {
				continue
			}
			bStart, _ := utils.ParseClock(rules[j].StartTime)
			bEnd, _ := utils.ParseClock(rules[j].EndTime)
			if aStart.Before(bEnd) && aEnd.After(bStart) {
				return fmt.Errorf("%w: rules for day %d overlap: %s-%s and %s-%s",
					ErrInvalidInput, rules[i].DayOfWeek,
					rules[i].StartTime, rules[i].EndTime,
					rules[j].StartTime, rules[j].EndTime)
			}
		}
	}
	return nil
}

func validateRule(rule *models.ScheduleRule) error {
	if rule.DayOfWeek < models.Sunday || rule.DayOfWeek > models.Saturday {
		return fmt.Errorf("%w: day_of_week %d out of range 0-6", ErrInvalidInput, rule.DayOfWeek)
	}
	start, err := utils.ParseClock(rule.StartTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	end, err := utils.ParseClock(rule.EndTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end_time %s not after start_time %s", ErrInvalidInput, rule.EndTime, rule.StartTime)
	}
	return nil
}

func requireProvider(tx *gorm.DB, providerID uint) error {
	var provider models.Provider
	if err := tx.First(&provider, providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProviderNotFound
		}
		return err
	}
	return nil
}
