package model

import (
	"fmt"
	"time"
)

// romanianMonths indexes month names by time.Month.
var romanianMonths = [...]string{"", "ianuarie", "februarie", "martie", "aprilie", "mai", "iunie",
	"iulie", "august", "septembrie", "octombrie", "noiembrie", "decembrie"}

// FormatDate renders t as "9 martie 2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), romanianMonths[t.Month()], t.Year())
}

// FormatIncidentDate renders a stored YYYY-MM-DD date, or returns it unchanged if it does not parse.
func FormatIncidentDate(date *string) string {
	if date == nil || *date == "" {
		return ""
	}
	t, err := time.Parse(time.DateOnly, *date)
	if err != nil {
		return *date
	}
	return FormatDate(t)
}
