package chart

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"songrank/internal/model"
)

// DateOverrides holds caller-supplied date parts. A nil field was not
// supplied and falls back to the clock.
type DateOverrides struct {
	Year  *string
	Month *string
	Day   *string
}

// ResolveDate layers overrides onto now's date. Overrides are taken
// verbatim; month and day are left-padded with zeros to two characters.
func ResolveDate(o DateOverrides, now time.Time) model.TargetDate {
	year := strconv.Itoa(now.Year())
	if o.Year != nil {
		year = *o.Year
	}

	month := strconv.Itoa(int(now.Month()))
	if o.Month != nil {
		month = *o.Month
	}

	day := strconv.Itoa(now.Day())
	if o.Day != nil {
		day = *o.Day
	}

	return model.TargetDate{
		Year:  year,
		Month: leftPad(month, 2, '0'),
		Day:   leftPad(day, 2, '0'),
	}
}

func leftPad(s string, width int, pad rune) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(string(pad), width-n) + s
}
