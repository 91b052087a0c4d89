package timeutil

import "time"

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// MondayOf returns the Monday that starts the week containing value.
// Weeks run Monday through Sunday.
func MondayOf(value time.Time) time.Time {
	day := StartOfDay(value)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func DayKey(value time.Time) string {
	return value.Format(dayLayout)
}

func ParseDay(key string) (time.Time, error) {
	return time.Parse(dayLayout, key)
}

func MonthKey(value time.Time) string {
	return value.Format(monthLayout)
}

// ParseMonth parses a YYYY-MM key into the first day of that month.
func ParseMonth(key string) (time.Time, error) {
	return time.Parse(monthLayout, key)
}

func PrevMonthKey(key string) (string, error) {
	month, err := ParseMonth(key)
	if err != nil {
		return "", err
	}
	return MonthKey(month.AddDate(0, -1, 0)), nil
}

// IsYearStart reports whether the month key names a January.
func IsYearStart(key string) bool {
	month, err := ParseMonth(key)
	if err != nil {
		return false
	}
	return month.Month() == time.January
}

func MonthLabel(key string) string {
	month, err := ParseMonth(key)
	if err != nil {
		return key
	}
	return month.Format("January 2006")
}
