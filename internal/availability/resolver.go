package availability

import (
	"fmt"
	"time"
)

// DateLayout is the civil date format used for appointment dates.
const DateLayout = "2006-01-02"

// BookedSlot is an existing appointment start that blocks an identical start time.
type BookedSlot struct {
	Date string `json:"appointment_date"`
	Time string `json:"appointment_time"`
}

// ResolveSlots lists the open start times on date for a service of the given
// duration. Only active rules for the date's weekday are walked, in the order
// given. Each rule yields start, start+d, start+2d, ... while the start is
// before the rule's end; the service may run past the end of the window.
// A candidate is dropped only when a booked slot has the same date and start.
// Rules are never merged, so overlapping windows can repeat a time.
func ResolveSlots(date time.Time, rules []Rule, durationMinutes int, booked []BookedSlot) []string {
	times := make([]string, 0)
	if durationMinutes <= 0 {
		return times
	}

	day := date.Format(DateLayout)
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		if b.Date != day {
			continue
		}
		if c, err := ParseClock(b.Time); err == nil {
			taken[c.String()] = struct{}{}
		}
	}

	weekday := int(date.Weekday())
	for _, rule := range rules {
		if !rule.Active || rule.DayOfWeek != weekday {
			continue
		}
		start, err := ParseClock(rule.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(rule.EndTime)
		if err != nil {
			continue
		}
		// Seconds on the window bounds are ignored.
		cur := start.Hour()*60 + start.Minute()
		stop := end.Hour()*60 + end.Minute()
		for ; cur < stop; cur += durationMinutes {
			candidate := fmt.Sprintf("%02d:%02d:00", cur/60, cur%60)
			if _, blocked := taken[candidate]; blocked {
				continue
			}
			times = append(times, candidate)
		}
	}
	return times
}
