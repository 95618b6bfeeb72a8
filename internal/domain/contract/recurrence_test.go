package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecurrence(t *testing.T) {
	r, err := NewRecurrence(FrequencyMonthly, 1)
	require.NoError(t, err)
	assert.False(t, r.IsZero())

	_, err = NewRecurrence(Frequency("fortnightly"), 1)
	assert.Error(t, err)

	_, err = NewRecurrence(FrequencyMonthly, 0)
	assert.Error(t, err)
}

func TestRecurrence_IsZero(t *testing.T) {
	var r Recurrence
	assert.True(t, r.IsZero())
	assert.True(t, Recurrence{Freq: "bogus", Interval: 1}.IsZero())
	assert.True(t, Recurrence{Freq: FrequencyDaily, Interval: 0}.IsZero())
}

func TestRecurrence_Between_Monthly(t *testing.T) {
	r := Recurrence{Freq: FrequencyMonthly, Interval: 1}
	anchor := Date(2020, time.January, 1)

	occs := r.Between(anchor, anchor, Date(2020, time.April, 1))
	require.Len(t, occs, 3)
	assert.Equal(t, Date(2020, time.February, 1), occs[0])
	assert.Equal(t, Date(2020, time.March, 1), occs[1])
	assert.Equal(t, Date(2020, time.April, 1), occs[2])
}

func TestRecurrence_Between_ExcludesLowerBound(t *testing.T) {
	r := Recurrence{Freq: FrequencyMonthly, Interval: 1}
	anchor := Date(2020, time.January, 1)

	// The anchor itself is an occurrence but never returned
	occs := r.Between(anchor, anchor, Date(2020, time.January, 31))
	assert.Empty(t, occs)
}

func TestRecurrence_Between_Interval(t *testing.T) {
	r := Recurrence{Freq: FrequencyMonthly, Interval: 3}
	anchor := Date(2020, time.January, 1)

	occs := r.Between(anchor, anchor, Date(2020, time.December, 31))
	require.Len(t, occs, 3)
	assert.Equal(t, Date(2020, time.April, 1), occs[0])
	assert.Equal(t, Date(2020, time.July, 1), occs[1])
	assert.Equal(t, Date(2020, time.October, 1), occs[2])
}

func TestRecurrence_Between_MonthEndClamping(t *testing.T) {
	r := Recurrence{Freq: FrequencyMonthly, Interval: 1}
	anchor := Date(2020, time.January, 31)

	occs := r.Between(anchor, anchor, Date(2020, time.April, 30))
	require.Len(t, occs, 3)
	// Each occurrence is computed from the anchor, so March recovers the 31st
	assert.Equal(t, Date(2020, time.February, 29), occs[0])
	assert.Equal(t, Date(2020, time.March, 31), occs[1])
	assert.Equal(t, Date(2020, time.April, 30), occs[2])
}

func TestRecurrence_Between_WeeklyAndDaily(t *testing.T) {
	weekly := Recurrence{Freq: FrequencyWeekly, Interval: 2}
	anchor := Date(2021, time.June, 7)
	occs := weekly.Between(anchor, anchor, Date(2021, time.July, 7))
	require.Len(t, occs, 2)
	assert.Equal(t, Date(2021, time.June, 21), occs[0])
	assert.Equal(t, Date(2021, time.July, 5), occs[1])

	daily := Recurrence{Freq: FrequencyDaily, Interval: 1}
	occs = daily.Between(anchor, anchor, Date(2021, time.June, 10))
	assert.Len(t, occs, 3)
}

func TestRecurrence_Between_Yearly(t *testing.T) {
	r := Recurrence{Freq: FrequencyYearly, Interval: 1}
	anchor := Date(2020, time.February, 29)

	occs := r.Between(anchor, anchor, Date(2024, time.March, 1))
	require.Len(t, occs, 4)
	assert.Equal(t, Date(2021, time.February, 28), occs[0])
	assert.Equal(t, Date(2024, time.February, 29), occs[3])
}

func TestRecurrence_Between_ZeroRule(t *testing.T) {
	var r Recurrence
	assert.Nil(t, r.Between(Date(2020, time.January, 1), Date(2020, time.January, 1), Date(2021, time.January, 1)))
}

func TestRecurrence_Next(t *testing.T) {
	r := Recurrence{Freq: FrequencyMonthly, Interval: 1}
	assert.Equal(t, Date(2020, time.February, 15), r.Next(Date(2020, time.January, 15)))

	quarterly := Recurrence{Freq: FrequencyMonthly, Interval: 3}
	assert.Equal(t, Date(2020, time.April, 15), quarterly.Next(Date(2020, time.January, 15)))
}

func TestRecurrence_NextAfter(t *testing.T) {
	r := Recurrence{Freq: FrequencyMonthly, Interval: 1}
	anchor := Date(2020, time.January, 1)

	assert.Equal(t, Date(2020, time.February, 1), r.NextAfter(anchor, anchor))
	assert.Equal(t, Date(2020, time.March, 1), r.NextAfter(anchor, Date(2020, time.February, 15)))
	// A date before the anchor resolves to the anchor itself
	assert.Equal(t, anchor, r.NextAfter(anchor, Date(2019, time.June, 1)))
}

func TestDateOf(t *testing.T) {
	ts := time.Date(2020, time.March, 15, 23, 45, 12, 0, time.UTC)
	assert.Equal(t, Date(2020, time.March, 15), DateOf(ts))
}
