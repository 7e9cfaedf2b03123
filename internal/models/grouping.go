package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type TimeGrouping string

const (
	GroupingDay   TimeGrouping = "day"
	GroupingWeek  TimeGrouping = "week"
	GroupingMonth TimeGrouping = "month"
)

func (g TimeGrouping) IsValid() bool {
	switch g {
	case GroupingDay, GroupingWeek, GroupingMonth:
		return true
	}
	return false
}

// ParseTimeGrouping validates user supplied grouping values. An empty value
// selects day grouping.
func ParseTimeGrouping(value string) (TimeGrouping, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return GroupingDay, nil
	}
	g := TimeGrouping(v)
	if !g.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownGrouping, value)
	}
	return g, nil
}

// PeriodKey identifies a calendar period. Week keys are anchored on the
// Monday that starts the week; month keys carry Day == 1.
type PeriodKey struct {
	Grouping TimeGrouping
	Year     int
	Month    time.Month
	Day      int
}

func (k PeriodKey) String() string {
	if k.Grouping == GroupingMonth {
		return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
	}
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// Before orders keys chronologically.
func (k PeriodKey) Before(other PeriodKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Day < other.Day
}

// Start returns the first instant of the period in loc.
func (k PeriodKey) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, loc)
}

func (k PeriodKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Buckets maps each period to its orders in input order. Map iteration
// order is random; use SortedKeys for display.
type Buckets map[PeriodKey][]EnrichedOrder

func (b Buckets) SortedKeys() []PeriodKey {
	keys := make([]PeriodKey, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Before(keys[j])
	})
	return keys
}
