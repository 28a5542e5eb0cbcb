package position

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weekday is a canonical lowercase three-letter label, mon..sun.
type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var weekdayAliases = map[string]Weekday{
	"mon": Monday, "monday": Monday, "lun": Monday, "lunes": Monday, "1": Monday,
	"tue": Tuesday, "tues": Tuesday, "tuesday": Tuesday, "mar": Tuesday, "martes": Tuesday, "2": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday, "mie": Wednesday, "mié": Wednesday, "miercoles": Wednesday, "miércoles": Wednesday, "3": Wednesday,
	"thu": Thursday, "thur": Thursday, "thurs": Thursday, "thursday": Thursday, "jue": Thursday, "jueves": Thursday, "4": Thursday,
	"fri": Friday, "friday": Friday, "vie": Friday, "viernes": Friday, "5": Friday,
	"sat": Saturday, "saturday": Saturday, "sab": Saturday, "sáb": Saturday, "sabado": Saturday, "sábado": Saturday, "6": Saturday,
	"sun": Sunday, "sunday": Sunday, "dom": Sunday, "domingo": Sunday, "7": Sunday,
}

// ParseWeekday accepts English and Spanish names or abbreviations in any case, and ISO numbers 1 (Monday) to 7.
func ParseWeekday(s string) (Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdayAliases[key]; ok {
		return wd, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// WeekdayOf returns the label of t's weekday.
func WeekdayOf(t time.Time) Weekday {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// ISO returns 1 for Monday through 7 for Sunday.
func (w Weekday) ISO() int {
	for i, d := range Weekdays {
		if d == w {
			return i + 1
		}
	}
	return 0
}

// WeekdayMask is the set of weekdays a template recurs on.
type WeekdayMask []Weekday

// ParseWeekdayMask normalises labels, drops duplicates and orders the result mon..sun.
func ParseWeekdayMask(labels []string) (WeekdayMask, error) {
	seen := make(map[Weekday]bool, len(labels))
	mask := make(WeekdayMask, 0, len(labels))
	for _, l := range labels {
		wd, err := ParseWeekday(l)
		if err != nil {
			return nil, err
		}
		if !seen[wd] {
			seen[wd] = true
			mask = append(mask, wd)
		}
	}
	sort.Slice(mask, func(i, j int) bool { return mask[i].ISO() < mask[j].ISO() })
	return mask, nil
}

func (m WeekdayMask) Contains(wd Weekday) bool {
	for _, d := range m {
		if d == wd {
			return true
		}
	}
	return false
}

func (m WeekdayMask) Strings() []string {
	out := make([]string, len(m))
	for i, d := range m {
		out[i] = string(d)
	}
	return out
}
