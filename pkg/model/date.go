package model

import (
	"fmt"
	"time"
)

// DateLayout is the YYYYMMDD format used by every Tushare date field
const DateLayout = "20060102"

// ParseDate parses a YYYYMMDD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYYMMDD)", s)
	}
	return t, nil
}

// FormatDate formats t as YYYYMMDD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
