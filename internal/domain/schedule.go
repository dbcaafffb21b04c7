package domain

import "time"

// ReminderTime is the fixed local time of day at which reminders fire and to
// which advanced due dates are pinned.
type ReminderTime struct {
	Hour   int
	Minute int
	Loc    *time.Location
}

// On pins the reminder time onto the given date in the reminder's zone.
func (rt ReminderTime) On(date time.Time) time.Time {
	local := date.In(rt.Loc)
	return time.Date(local.Year(), local.Month(), local.Day(), rt.Hour, rt.Minute, 0, 0, rt.Loc)
}

// DailyDue reports whether a daily-cycle due date has arrived. The comparison
// is date-only in the reminder zone: a due date any time today counts.
func DailyDue(next time.Time, now time.Time, loc *time.Location) bool {
	ny, nm, nd := next.In(loc).Date()
	cy, cm, cd := now.In(loc).Date()
	nextDay := time.Date(ny, nm, nd, 0, 0, 0, 0, loc)
	today := time.Date(cy, cm, cd, 0, 0, 0, 0, loc)
	return !nextDay.After(today)
}

// MonthlyDue reports whether a monthly-cycle due date has arrived. Full
// timestamp comparison.
func MonthlyDue(next time.Time, now time.Time) bool {
	return !now.Before(next)
}

// NextMonthlyOccurrence returns the target day in the month after the given
// date, clamped to the last valid day of that month, at the reminder time.
// December rolls over into January of the following year.
func NextMonthlyOccurrence(after time.Time, targetDay int, rt ReminderTime) time.Time {
	base := after.In(rt.Loc)
	year, month := base.Year(), int(base.Month())+1
	if month > 12 {
		month = 1
		year++
	}
	day := targetDay
	if last := daysInMonth(year, time.Month(month)); day > last {
		day = last
	}
	return time.Date(year, time.Month(month), day, rt.Hour, rt.Minute, 0, 0, rt.Loc)
}

// UpcomingMonthlyOccurrence returns the first occurrence of the target day
// at or after the given time: this month's clamped target day if it has not
// passed yet, otherwise next month's. Used when seeding fresh records.
func UpcomingMonthlyOccurrence(now time.Time, targetDay int, rt ReminderTime) time.Time {
	base := now.In(rt.Loc)
	day := targetDay
	if last := daysInMonth(base.Year(), base.Month()); day > last {
		day = last
	}
	candidate := time.Date(base.Year(), base.Month(), day, rt.Hour, rt.Minute, 0, 0, rt.Loc)
	if !candidate.Before(base) {
		return candidate
	}
	return NextMonthlyOccurrence(candidate, targetDay, rt)
}

// NextDailyAlert returns the due date coverageDays from now, pinned to the
// reminder time.
func NextDailyAlert(now time.Time, coverageDays int64, rt ReminderTime) time.Time {
	return rt.On(now.In(rt.Loc).AddDate(0, 0, int(coverageDays)))
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
