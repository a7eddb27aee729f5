package domain

import "time"

const (
	OnlyDateTimeLayout = "2006-01-02 15:04:05"
	OnlyDate           = "2006-01-02"
	DisplayDate        = "Monday, January 2, 2006"
)

// StartOfDay returns midnight of the given date in the date's own location.
func StartOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
