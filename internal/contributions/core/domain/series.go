package domain

import "time"

// DayFormat is the wire format for calendar days (UTC).
const DayFormat = "2006-01-02"

// ParseDay parses a YYYY-MM-DD string into a UTC midnight timestamp.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(DayFormat, s, time.UTC)
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayCount is one source's contribution count for one calendar day.
type DayCount struct {
	Date  time.Time
	Count int
}

// SourceSeries holds one source's per-day counts for a resolved identity.
// Days are sorted ascending with at most one entry per day. A series is
// never mutated after the fetch that produced it; the merge only reads it.
type SourceSeries struct {
	Source   Source
	Identity string
	Days     []DayCount
}

// UnifiedDay is one calendar day of the merged series. Counts always has
// an entry for every configured source, zero when the source reported
// nothing for that day.
type UnifiedDay struct {
	Date   time.Time
	Counts map[Source]int
	Total  int
}

// UnifiedSeries covers the full requested day range with no gaps.
type UnifiedSeries []UnifiedDay

// SourceError records a non-fatal per-source fetch failure.
type SourceError struct {
	Source  Source
	Message string
}

// BuildUnifiedSeries merges per-source series into one series spanning
// [from, to] inclusive, one entry per calendar day. It is a pure function
// of its inputs: feeding the same series in any order yields an identical
// result. Days outside the requested range are ignored.
func BuildUnifiedSeries(from, to time.Time, series []SourceSeries) UnifiedSeries {
	from = DayOf(from)
	to = DayOf(to)
	if to.Before(from) {
		return UnifiedSeries{}
	}

	n := int(to.Sub(from).Hours()/24) + 1
	unified := make(UnifiedSeries, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		d := from.AddDate(0, 0, i)
		counts := make(map[Source]int, len(Sources))
		for _, s := range Sources {
			counts[s] = 0
		}
		unified[i] = UnifiedDay{Date: d, Counts: counts}
		index[d.Format(DayFormat)] = i
	}

	for _, ss := range series {
		for _, dc := range ss.Days {
			i, ok := index[DayOf(dc.Date).Format(DayFormat)]
			if !ok {
				continue
			}
			unified[i].Counts[ss.Source] = dc.Count
		}
	}

	for i := range unified {
		total := 0
		for _, c := range unified[i].Counts {
			total += c
		}
		unified[i].Total = total
	}

	return unified
}
