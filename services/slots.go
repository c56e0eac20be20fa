package services

import (
	"sort"
	"time"

	"github.com/slotwise/session-booking/db"
	"github.com/slotwise/session-booking/models"
	"github.com/slotwise/session-booking/utils"
)

// Session lengths offered for booking, in minutes.
var AllowedDurations = []int{30, 60, 90}

// BufferMinutes is the spacing between consecutive candidate start times,
// on top of the session duration itself. Consecutive candidates are
// duration+buffer apart, so generated windows for one provider/date never
// overlap each other.
const BufferMinutes = 15

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

func AllowedDuration(minutes int) bool {
	for _, d := range AllowedDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// GetAvailableSlots returns the open windows for (provider, date, duration):
// candidates from the provider's recurring rules plus open manual slots,
// minus anything overlapping a live hold or a still-standing booking.
//
// The result is advisory. Listing takes no locks, so two users can both see
// the same open window; HoldSlot is the authoritative guard.
func GetAvailableSlots(providerID uint, date time.Time, durationMinutes int) ([]TimeWindow, error) {
	if !AllowedDuration(durationMinutes) {
		return nil, ErrInvalidDuration
	}
	if err := requireProvider(db.DB, providerID); err != nil {
		return nil, err
	}

	var blockedCount int64
	err := db.DB.Model(&models.BlockedDate{}).
		Where("provider_id = ? AND date = ?", providerID, date.Format(utils.DateLayout)).
		Count(&blockedCount).Error
	if err != nil {
		return nil, err
	}
	if blockedCount > 0 {
		return []TimeWindow{}, nil
	}

	var rules []models.ScheduleRule
	err = db.DB.
		Where("provider_id = ? AND day_of_week = ? AND is_active = ?", providerID, int(date.Weekday()), true).
		Order("start_time asc").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	candidates := GenerateCandidates(rules, date, durationMinutes, now)

	manual, err := openManualWindows(providerID, date, durationMinutes, now)
	if err != nil {
		return nil, err
	}
	candidates = mergeWindows(candidates, manual)
	if len(candidates) == 0 {
		return []TimeWindow{}, nil
	}

	bookings, busySlots, err := loadDayConflicts(providerID, date, now)
	if err != nil {
		return nil, err
	}
	return FilterConflicts(candidates, bookings, busySlots, now), nil
}

// GenerateCandidates walks each active rule window for the date's weekday
// in steps of duration+buffer, keeping windows that close before the rule's
// end time and start strictly after now. Pure function, no side effects.
func GenerateCandidates(rules []models.ScheduleRule, date time.Time, durationMinutes int, now time.Time) []TimeWindow {
	duration := time.Duration(durationMinutes) * time.Minute
	step := duration + BufferMinutes*time.Minute

	var out []TimeWindow
	for _, rule := range rules {
		if !rule.IsActive || rule.DayOfWeek != models.DayOfWeek(date.Weekday()) {
			continue
		}
		open, err := utils.ClockOnDate(date, rule.StartTime)
		if err != nil {
			continue
		}
		closing, err := utils.ClockOnDate(date, rule.EndTime)
		if err != nil {
			continue
		}
		for start := open; !start.Add(duration).After(closing); start = start.Add(step) {
			if !start.After(now) {
				continue
			}
			out = append(out, TimeWindow{Start: start, End: start.Add(duration)})
		}
	}
	sortWindows(out)
	return out
}

// FilterConflicts drops every candidate that overlaps a still-standing
// booking or a slot row that is booked or carries a live hold. Pure
// function over pre-loaded rows.
func FilterConflicts(candidates []TimeWindow, bookings []models.Booking, slots []models.AvailabilitySlot, now time.Time) []TimeWindow {
	out := make([]TimeWindow, 0, len(candidates))
	for _, w := range candidates {
		if conflicts(w, bookings, slots, now) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func conflicts(w TimeWindow, bookings []models.Booking, slots []models.AvailabilitySlot, now time.Time) bool {
	for i := range bookings {
		b := &bookings[i]
		if !b.Blocks() {
			continue
		}
		end := b.BookingTime.Add(time.Duration(b.DurationMinutes) * time.Minute)
		if Overlaps(w.Start, w.End, b.BookingTime, end) {
			return true
		}
	}
	for i := range slots {
		s := &slots[i]
		if !s.IsBooked && !s.HoldLive(now) {
			continue
		}
		if Overlaps(w.Start, w.End, s.AvailableFrom, s.AvailableTo) {
			return true
		}
	}
	return false
}

// loadDayConflicts reads the day's blocking rows without locks.
func loadDayConflicts(providerID uint, date time.Time, now time.Time) ([]models.Booking, []models.AvailabilitySlot, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var bookings []models.Booking
	err := db.DB.
		Where("provider_id = ? AND booking_time >= ? AND booking_time < ?", providerID, dayStart, dayEnd).
		Where("status NOT IN ?", []models.BookingStatus{models.StatusCancelled, models.StatusRefunded}).
		Find(&bookings).Error
	if err != nil {
		return nil, nil, err
	}

	var slots []models.AvailabilitySlot
	err = db.DB.
		Where("provider_id = ? AND available_from >= ? AND available_from < ?", providerID, dayStart, dayEnd).
		Where("is_booked = ? OR hold_expires_at > ?", true, now).
		Find(&slots).Error
	if err != nil {
		return nil, nil, err
	}
	return bookings, slots, nil
}

// openManualWindows returns manually-added slots for the day that match the
// requested duration and are neither booked nor live-held.
func openManualWindows(providerID uint, date time.Time, durationMinutes int, now time.Time) ([]TimeWindow, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var slots []models.AvailabilitySlot
	err := db.DB.
		Where("provider_id = ? AND slot_type = ? AND is_booked = ?", providerID, models.SlotTypeManual, false).
		Where("available_from >= ? AND available_from < ?", dayStart, dayEnd).
		Where("duration_minutes = ?", durationMinutes).
		Find(&slots).Error
	if err != nil {
		return nil, err
	}

	var out []TimeWindow
	for i := range slots {
		s := &slots[i]
		if s.HoldLive(now) || !s.AvailableFrom.After(now) {
			continue
		}
		out = append(out, TimeWindow{Start: s.AvailableFrom, End: s.AvailableTo})
	}
	return out, nil
}

func mergeWindows(a, b []TimeWindow) []TimeWindow {
	out := append(a, b...)
	sortWindows(out)
	deduped := out[:0]
	for i, w := range out {
		if i > 0 && w.Start.Equal(out[i-1].Start) && w.End.Equal(out[i-1].End) {
			continue
		}
		deduped = append(deduped, w)
	}
	return deduped
}

func sortWindows(windows []TimeWindow) {
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.Before(windows[j].Start)
	})
}
