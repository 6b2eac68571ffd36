package utils

import (
	"fmt"
	"time"
)

func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

func PrettyDate(date time.Time) string {
	date = date.UTC()
	return fmt.Sprintf("%02d %s %d - %02d:%02d:%02d UTC",
		date.Day(),
		date.Month().String()[:3],
		date.Year(),
		date.Hour(),
		date.Minute(),
		date.Second(),
	)
}

// PrettyDuration rounds d for display: milliseconds under a second, then tenths.
func PrettyDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
