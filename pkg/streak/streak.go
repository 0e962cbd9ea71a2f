// Package streak computes contribution streaks over a sparse daily
// contribution series. A date absent from the series is equivalent to a
// date with zero contributions, which keeps the series sparse: only days
// with activity need to be materialized.
package streak

import (
	"fmt"
	"sort"
	"time"
)

// Day is a single calendar date paired with a contribution count.
type Day struct {
	Date  time.Time
	Count int
}

// Series is a read-only mapping from calendar date to contribution count.
// Dates are normalized to UTC midnight. Construct with NewSeries; the zero
// value is an empty series.
type Series struct {
	counts map[time.Time]int
}

// NewSeries builds a Series from per-day counts. It rejects negative counts
// and duplicate dates rather than clamping or merging, since either would
// mask a data-source bug upstream.
func NewSeries(days []Day) (Series, error) {
	counts := make(map[time.Time]int, len(days))
	for _, d := range days {
		if d.Count < 0 {
			return Series{}, fmt.Errorf("negative count %d on %s", d.Count, d.Date.Format("2006-01-02"))
		}
		date := DateOf(d.Date)
		if _, ok := counts[date]; ok {
			return Series{}, fmt.Errorf("duplicate date %s", date.Format("2006-01-02"))
		}
		counts[date] = d.Count
	}
	return Series{counts: counts}, nil
}

// Count returns the contribution count on the given date, or zero when the
// date is absent from the series.
func (s Series) Count(date time.Time) int {
	return s.counts[DateOf(date)]
}

// ActiveDays returns all dates with a positive count, ascending.
func (s Series) ActiveDays() []time.Time {
	var days []time.Time
	for d, c := range s.counts {
		if c > 0 {
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// Result describes a single streak. A zero Length means no streak was found,
// in which case Start and End are both zero times. When Length > 0, every
// date in [Start, End] has a positive count and End-Start spans Length-1 days.
type Result struct {
	Length int
	Start  time.Time
	End    time.Time
}

// Current computes the streak of consecutive active days ending on today or,
// when today has no contributions yet, ending on yesterday. The grace day
// exists because today's data may not have been reported yet: a streak that
// ran through yesterday is still current even if today shows zero so far.
//
// The total contribution count is reported independently by the data source;
// a zero total short-circuits to an empty result so an empty series can never
// report a streak. The reference date is an explicit parameter so the
// computation stays deterministic and clock-free.
func Current(s Series, total int, today time.Time) Result {
	if total == 0 {
		return Result{}
	}

	anchor := DateOf(today)
	if s.Count(anchor) == 0 {
		anchor = anchor.AddDate(0, 0, -1)
		if s.Count(anchor) == 0 {
			return Result{}
		}
	}

	length := 0
	for d := anchor; s.Count(d) > 0; d = d.AddDate(0, 0, -1) {
		length++
	}

	return Result{
		Length: length,
		Start:  anchor.AddDate(0, 0, -(length - 1)),
		End:    anchor,
	}
}

// Longest computes the longest run of consecutive active days anywhere in
// the series. When several runs share the maximal length, the earliest one
// wins: the scan compares with a strict > so a later run of equal length
// never replaces the best found so far.
func Longest(s Series) Result {
	days := s.ActiveDays()
	if len(days) == 0 {
		return Result{}
	}

	best := Result{}
	runStart := days[0]
	runLen := 1

	closeRun := func(end time.Time) {
		if runLen > best.Length {
			best = Result{Length: runLen, Start: runStart, End: end}
		}
	}

	for i := 1; i < len(days); i++ {
		if days[i].Equal(days[i-1].AddDate(0, 0, 1)) {
			runLen++
			continue
		}
		closeRun(days[i-1])
		runStart = days[i]
		runLen = 1
	}
	closeRun(days[len(days)-1])

	return best
}

// DateOf truncates a time to UTC midnight, the canonical date representation
// used throughout the series.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
