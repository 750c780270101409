package pricing

import "time"

// AgeInMonths returns completed months between birthdate and now, counting a
// month only once its day-of-month has been reached. Nil birthdate means the
// age is unknown.
func AgeInMonths(birthdate *time.Time, now time.Time) *int {
	if birthdate == nil {
		return nil
	}
	b := birthdate.UTC()
	n := now.UTC()
	months := (n.Year()-b.Year())*12 + int(n.Month()) - int(b.Month())
	if n.Day() < b.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	return &months
}
