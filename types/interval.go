package types

import (
	"fmt"
	"time"
)

type Interval string

const (
	OneMinute      Interval = "1"
	FiveMinutes    Interval = "5"
	FifteenMinutes Interval = "15"
	ThirtyMinutes  Interval = "30"
	Hour           Interval = "60"
	FourHours      Interval = "240"
	Day            Interval = "D"
)

var IntervalToTime = map[Interval]time.Duration{
	OneMinute:      time.Minute,
	FiveMinutes:    time.Minute * 5,
	FifteenMinutes: time.Minute * 15,
	ThirtyMinutes:  time.Minute * 30,
	Hour:           time.Hour,
	FourHours:      time.Hour * 4,
	Day:            time.Hour * 24,
}

// ParseInterval maps a config string such as "5" or "D" to an Interval.
func ParseInterval(s string) (Interval, error) {
	interval := Interval(s)
	if _, ok := IntervalToTime[interval]; !ok {
		return "", fmt.Errorf("unsupported interval %q", s)
	}
	return interval, nil
}
