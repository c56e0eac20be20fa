package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
	"github.com/slotwise/session-booking/redis"
)

const statusCacheTTL = 10 * time.Minute

func statusCacheKey(providerID uint) string {
	return fmt.Sprintf("provider:online:%d", providerID)
}

// SetOnlineStatus flips a provider's presence and appends a StatusHistory
// entry in the same transaction, then drops the cached status.
func SetOnlineStatus(providerID uint, isOnline bool, changedBy string, source models.StatusSource) (*models.Provider, error) {
	var provider models.Provider
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&provider, providerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProviderNotFound
			}
			return err
		}

		updates := map[string]interface{}{"is_online": isOnline}
		if isOnline {
			updates["last_activity_at"] = time.Now()
		}
		if err := tx.Model(&provider).Updates(updates).Error; err != nil {
			return err
		}
		provider.IsOnline = isOnline

		history := models.StatusHistory{
			ProviderID: providerID,
			IsOnline:   isOnline,
			ChangedBy:  changedBy,
			Source:     source,
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}
	invalidateStatusCache(providerID)
	return &provider, nil
}

// GetOnlineStatus is a read-through cache over the provider row.
func GetOnlineStatus(providerID uint) (bool, error) {
	if redis.Client != nil {
		cached, err := redis.Client.Get(redis.Ctx, statusCacheKey(providerID)).Result()
		if err == nil {
			return cached == "1", nil
		}
	}

	var provider models.Provider
	if err := db.DB.First(&provider, providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrProviderNotFound
		}
		return false, err
	}

	if redis.Client != nil {
		value := "0"
		if provider.IsOnline {
			value = "1"
		}
		redis.Client.Set(redis.Ctx, statusCacheKey(providerID), value, statusCacheTTL)
	}
	return provider.IsOnline, nil
}

// UpdateActivity is the provider heartbeat. It bumps last_activity_at only
// while the provider is online; heartbeats from offline providers are
// ignored. Returns whether the timestamp moved.
func UpdateActivity(providerID uint) (bool, error) {
	res := db.DB.Model(&models.Provider{}).
		Where("id = ? AND is_online = ?", providerID, true).
		Update("last_activity_at", time.Now())
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if err := requireProvider(db.DB, providerID); err != nil {
		return false, err
	}
	return false, nil
}

// AutoOfflineInactive flips every online provider whose last activity is
// older than its own auto_offline_minutes, logging each transition with
// source auto. Returns the count flipped. Invoked by cron alongside the
// hold reaper.
func AutoOfflineInactive() (int64, error) {
	var flipped []uint
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var stale []models.Provider
		err := tx.Raw(`
			SELECT *
			FROM providers
			WHERE is_online = true
			  AND last_activity_at < NOW() - (auto_offline_minutes * interval '1 minute')
			FOR UPDATE
		`).Scan(&stale).Error
		if err != nil {
			return err
		}

		for i := range stale {
			p := &stale[i]
			if err := tx.Model(&models.Provider{}).Where("id = ?", p.ID).Update("is_online", false).Error; err != nil {
				return err
			}
			history := models.StatusHistory{
				ProviderID: p.ID,
				IsOnline:   false,
				ChangedBy:  "system",
				Source:     models.StatusSourceAuto,
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
			flipped = append(flipped, p.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, id := range flipped {
		invalidateStatusCache(id)
	}
	return int64(len(flipped)), nil
}

func invalidateStatusCache(providerID uint) {
	if redis.Client == nil {
		return
	}
	redis.Client.Del(redis.Ctx, statusCacheKey(providerID))
}
