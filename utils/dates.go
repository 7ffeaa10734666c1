package utils

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Calendar dates are carried as time.Time at midnight UTC so that AddDate
// never crosses a DST gap.

func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return d, nil
}

func FormatDate(d time.Time) string { return d.Format(DateLayout) }

func AddDays(d time.Time, n int) time.Time { return d.AddDate(0, 0, n) }

// WeekStart returns the first day of the week containing d, where weeks begin
// on weekday startDay (0=Sunday..6=Saturday).
func WeekStart(d time.Time, startDay int) time.Time {
	d = DateOf(d)
	diff := (int(d.Weekday()) - startDay + 7) % 7
	return AddDays(d, -diff)
}

// WeekEnd is the last (inclusive) day of the week starting at start.
func WeekEnd(start time.Time) time.Time { return AddDays(start, 6) }

// DayLabel renders "Monday 12 Oct".
func DayLabel(d time.Time) string { return d.Format("Monday 2 Jan") }

// WeekLabel renders "12 Oct – 18 Oct".
func WeekLabel(start time.Time) string {
	return fmt.Sprintf("%s – %s", start.Format("2 Jan"), WeekEnd(start).Format("2 Jan"))
}

func ValidWeekStartDay(d int) bool { return d >= 0 && d <= 6 }

// WeekdayOption is one choice of week start day.
type WeekdayOption struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// WeekStartOptions lists Sunday (0) through Saturday (6).
func WeekStartOptions() []WeekdayOption {
	out := make([]WeekdayOption, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		out = append(out, WeekdayOption{Value: int(d), Label: d.String()})
	}
	return out
}
