package domain

import (
	"testing"
	"time"
)

func makassar(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Makassar")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestDailyDue(t *testing.T) {
	loc := makassar(t)
	rt := ReminderTime{Hour: 10, Minute: 0, Loc: loc}

	tests := []struct {
		name string
		next time.Time
		now  time.Time
		due  bool
	}{
		{
			name: "due earlier today even before the reminder hour",
			next: time.Date(2025, 12, 11, 10, 0, 0, 0, loc),
			now:  time.Date(2025, 12, 11, 7, 30, 0, 0, loc),
			due:  true,
		},
		{
			name: "overdue from yesterday keeps nagging",
			next: time.Date(2025, 12, 10, 10, 0, 0, 0, loc),
			now:  time.Date(2025, 12, 11, 9, 0, 0, 0, loc),
			due:  true,
		},
		{
			name: "future date is not due",
			next: time.Date(2025, 12, 12, 10, 0, 0, 0, loc),
			now:  time.Date(2025, 12, 11, 23, 59, 0, 0, loc),
			due:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DailyDue(tt.next, tt.now, rt.Loc); got != tt.due {
				t.Errorf("DailyDue = %v, want %v", got, tt.due)
			}
		})
	}
}

func TestMonthlyDue(t *testing.T) {
	loc := makassar(t)
	next := time.Date(2025, 12, 11, 10, 0, 0, 0, loc)

	if MonthlyDue(next, next.Add(-time.Minute)) {
		t.Error("one minute early must not be due")
	}
	if !MonthlyDue(next, next) {
		t.Error("exact timestamp must be due")
	}
	if !MonthlyDue(next, next.Add(time.Hour)) {
		t.Error("past timestamp must be due")
	}
}

func TestNextMonthlyOccurrence(t *testing.T) {
	loc := makassar(t)
	rt := ReminderTime{Hour: 10, Minute: 0, Loc: loc}

	tests := []struct {
		name      string
		after     time.Time
		targetDay int
		want      time.Time
	}{
		{
			name:      "december rolls into january of next year",
			after:     time.Date(2025, 12, 11, 10, 0, 0, 0, loc),
			targetDay: 11,
			want:      time.Date(2026, 1, 11, 10, 0, 0, 0, loc),
		},
		{
			name:      "target day 31 clamps to 30-day month",
			after:     time.Date(2026, 3, 31, 10, 0, 0, 0, loc),
			targetDay: 31,
			want:      time.Date(2026, 4, 30, 10, 0, 0, 0, loc),
		},
		{
			name:      "target day 31 clamps to february",
			after:     time.Date(2026, 1, 31, 10, 0, 0, 0, loc),
			targetDay: 31,
			want:      time.Date(2026, 2, 28, 10, 0, 0, 0, loc),
		},
		{
			name:      "leap year february keeps day 29",
			after:     time.Date(2028, 1, 30, 10, 0, 0, 0, loc),
			targetDay: 29,
			want:      time.Date(2028, 2, 29, 10, 0, 0, 0, loc),
		},
		{
			name:      "target day 20 unaffected by clamping",
			after:     time.Date(2025, 12, 20, 10, 0, 0, 0, loc),
			targetDay: 20,
			want:      time.Date(2026, 1, 20, 10, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextMonthlyOccurrence(tt.after, tt.targetDay, rt)
			if !got.Equal(tt.want) {
				t.Errorf("NextMonthlyOccurrence = %v, want %v", got, tt.want)
			}
			if !got.After(tt.after) {
				t.Error("advanced date must be strictly later")
			}
		})
	}
}

func TestNextDailyAlert(t *testing.T) {
	loc := makassar(t)
	rt := ReminderTime{Hour: 10, Minute: 0, Loc: loc}
	now := time.Date(2025, 12, 11, 18, 45, 12, 0, loc)

	got := NextDailyAlert(now, 22, rt)
	want := time.Date(2026, 1, 2, 10, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("NextDailyAlert = %v, want %v", got, want)
	}
}
