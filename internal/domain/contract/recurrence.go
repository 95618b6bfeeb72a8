package contract

import (
	"time"

	"github.com/erp/contracts/internal/domain/shared"
)

// Frequency represents the recurrence frequency of a contract
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// IsValid checks if the frequency is a valid Frequency
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// Recurrence is a value object describing the periodic rule of a contract:
// a frequency plus an interval multiplier (every N days/weeks/months/years).
// The zero value means "no recurrence"; window generation treats it as
// producing no occurrences rather than failing.
type Recurrence struct {
	Freq     Frequency `gorm:"column:freq;type:varchar(10)"`
	Interval int       `gorm:"column:freq_interval;not null;default:1"`
}

// NewRecurrence creates a validated recurrence rule
func NewRecurrence(freq Frequency, interval int) (Recurrence, error) {
	if !freq.IsValid() {
		return Recurrence{}, shared.NewDomainError("INVALID_FREQUENCY", "Recurrence frequency must be daily, weekly, monthly or yearly")
	}
	if interval < 1 {
		return Recurrence{}, shared.NewDomainError("INVALID_INTERVAL", "Recurrence interval must be at least 1")
	}
	return Recurrence{Freq: freq, Interval: interval}, nil
}

// IsZero returns true when no usable rule is configured
func (r Recurrence) IsZero() bool {
	return !r.Freq.IsValid() || r.Interval < 1
}

// step returns the date advanced by n rule periods from the given anchor.
// Month and year arithmetic clamps to the last valid day of the target month,
// and every occurrence is computed from the anchor so a Jan 31 anchor yields
// Feb 28, Mar 31, ... instead of drifting to the 28th forever.
func (r Recurrence) step(anchor time.Time, n int) time.Time {
	switch r.Freq {
	case FrequencyDaily:
		return anchor.AddDate(0, 0, n*r.Interval)
	case FrequencyWeekly:
		return anchor.AddDate(0, 0, 7*n*r.Interval)
	case FrequencyMonthly:
		return addClampedMonths(anchor, n*r.Interval)
	case FrequencyYearly:
		return addClampedMonths(anchor, 12*n*r.Interval)
	}
	return anchor
}

// Next returns the occurrence one rule period after the given date
func (r Recurrence) Next(date time.Time) time.Time {
	return r.step(DateOf(date), 1)
}

// NextAfter returns the first occurrence of the rule, anchored at anchor,
// that falls strictly after the given date.
func (r Recurrence) NextAfter(anchor, after time.Time) time.Time {
	anchor = DateOf(anchor)
	after = DateOf(after)
	for n := 0; ; n++ {
		d := r.step(anchor, n)
		if d.After(after) {
			return d
		}
	}
}

// Between enumerates the occurrences of the rule, anchored at anchor, that
// fall strictly after the lower bound and up to (and including) the upper
// bound. A zero rule yields no occurrences.
func (r Recurrence) Between(anchor, after, until time.Time) []time.Time {
	if r.IsZero() {
		return nil
	}
	anchor = DateOf(anchor)
	after = DateOf(after)
	until = DateOf(until)

	var occurrences []time.Time
	for n := 0; ; n++ {
		d := r.step(anchor, n)
		if d.After(until) {
			break
		}
		if d.After(after) {
			occurrences = append(occurrences, d)
		}
	}
	return occurrences
}

// addClampedMonths adds months to a date, clamping the day of month to the
// last valid day of the target month (Jan 31 + 1 month = Feb 28/29).
func addClampedMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()

	total := int(m) - 1 + months
	newY := y + total/12
	newM := time.Month(total%12 + 1)
	if total < 0 {
		// Go's integer division truncates toward zero
		newY = y + (total-11)/12
		newM = time.Month((total%12+12)%12 + 1)
	}

	lastDay := daysIn(newY, newM)
	if d > lastDay {
		d = lastDay
	}
	return time.Date(newY, newM, d, 0, 0, 0, 0, t.Location())
}

// daysIn returns the number of days in the given month
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOf truncates a timestamp to its date in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC date from its components
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
