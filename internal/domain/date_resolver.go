package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ordinalSuffix = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)
	fillerWords   = regexp.MustCompile(`\b(on|the|of|for)\b`)
	spaces        = regexp.MustCompile(`\s+`)
)

// Layouts that carry an explicit year. A stated year is honoured as-is.
var datedLayouts = []string{
	OnlyDate,
	"2006/01/02",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Layouts without a year, resolved against the reference year first.
var monthDayLayouts = []string{
	"January 2",
	"Jan 2",
	"2 January",
	"2 Jan",
}

// Comma-qualified layouts used by the last-chance attempt, which keeps the
// user's commas ("Friday, December 5th").
var commaLayouts = []string{
	"Monday, January 2, 2006",
	"Mon, Jan 2, 2006",
	"Monday, 2 January, 2006",
	"Mon, 2 Jan, 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveDate turns a natural-language or partial date into a concrete calendar
// date at midnight in ref's location. Month/day expressions always resolve to the
// nearest date on or after ref. A stated year that puts the date before ref is
// rejected with an UnresolvedDateError marked Past.
func ResolveDate(expression string, ref time.Time) (time.Time, error) {
	today := StartOfDay(ref)
	expr := normalizeDateExpression(expression)
	if expr == "" {
		return time.Time{}, &UnresolvedDateError{Input: expression}
	}

	switch expr {
	case "today", "tonight", "this evening":
		return today, nil
	case "tomorrow", "tomorrow night":
		return today.AddDate(0, 0, 1), nil
	case "day after tomorrow":
		return today.AddDate(0, 0, 2), nil
	}

	if d, ok := resolveWeekday(expr, today); ok {
		return d, nil
	}

	for _, layout := range datedLayouts {
		if t, err := time.ParseInLocation(layout, expr, today.Location()); err == nil {
			if t.Before(today) {
				return time.Time{}, &UnresolvedDateError{Input: expression, Past: true}
			}
			return StartOfDay(t), nil
		}
	}

	for _, layout := range monthDayLayouts {
		t, err := time.Parse(layout, expr)
		if err != nil {
			continue
		}
		return nearestFuture(t.Month(), t.Day(), today), nil
	}

	commaExpr := normalizeCommaExpression(expression)
	for _, year := range []int{today.Year(), today.Year() + 1} {
		candidate := fmt.Sprintf("%s, %d", commaExpr, year)
		for _, layout := range commaLayouts {
			t, err := time.ParseInLocation(layout, candidate, today.Location())
			if err != nil {
				continue
			}
			if !t.Before(today) {
				return StartOfDay(t), nil
			}
		}
	}

	return time.Time{}, &UnresolvedDateError{Input: expression}
}

// nearestFuture places month/day in the reference year, rolling forward a year
// when that is already in the past. Feb 29 rolls to the next leap year.
func nearestFuture(month time.Month, day int, today time.Time) time.Time {
	for year := today.Year(); year <= today.Year()+8; year++ {
		d := time.Date(year, month, day, 0, 0, 0, 0, today.Location())
		if d.Month() != month {
			continue
		}
		if !d.Before(today) {
			return d
		}
	}
	return time.Date(today.Year()+1, month, day, 0, 0, 0, 0, today.Location())
}

func resolveWeekday(expr string, today time.Time) (time.Time, bool) {
	strict := false
	switch {
	case strings.HasPrefix(expr, "next "):
		strict = true
		expr = strings.TrimPrefix(expr, "next ")
	case strings.HasPrefix(expr, "this "):
		expr = strings.TrimPrefix(expr, "this ")
	}
	wd, ok := weekdays[expr]
	if !ok {
		return time.Time{}, false
	}
	delta := (int(wd) - int(today.Weekday()) + 7) % 7
	if delta == 0 && strict {
		delta = 7
	}
	return today.AddDate(0, 0, delta), true
}

// normalizeCommaExpression is the light normalisation for the comma pass:
// ordinals stripped and commas kept as ", ".
func normalizeCommaExpression(expression string) string {
	expr := strings.ToLower(strings.TrimSpace(expression))
	expr = strings.Trim(expr, ".!?, ")
	expr = ordinalSuffix.ReplaceAllString(expr, "$1")
	expr = strings.ReplaceAll(expr, ",", ", ")
	expr = spaces.ReplaceAllString(expr, " ")
	return strings.ReplaceAll(expr, " ,", ",")
}

func normalizeDateExpression(expression string) string {
	expr := strings.ToLower(strings.TrimSpace(expression))
	expr = strings.Trim(expr, ".!?")
	expr = strings.ReplaceAll(expr, ",", " ")
	expr = ordinalSuffix.ReplaceAllString(expr, "$1")
	expr = fillerWords.ReplaceAllString(expr, " ")
	expr = strings.ReplaceAll(expr, "sept ", "sep ")
	return strings.TrimSpace(spaces.ReplaceAllString(expr, " "))
}
