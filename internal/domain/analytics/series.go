package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayBucket aggregates one calendar day of the window.
type DayBucket struct {
	Day       string          `json:"day"`
	Revenue   decimal.Decimal `json:"revenue"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
}

// BuildDaySeries buckets every record into its calendar day (evaluated in
// loc) and expands the result into a contiguous ascending sequence covering
// every day from window start to window end inclusive. Days without records
// appear with all-zero values, so charts never see gaps.
func BuildDaySeries(records []*Record, w Window, loc *time.Location) []DayBucket {
	byDay := make(map[string]*DayBucket)
	for _, r := range records {
		key := DayKey(r.OccursAt, loc)
		b, ok := byDay[key]
		if !ok {
			b = &DayBucket{Day: key, Revenue: decimal.Zero}
			byDay[key] = b
		}
		b.Total++
		if r.Completed {
			b.Completed++
			b.Revenue = b.Revenue.Add(r.Value)
		}
	}

	start := dayStart(w.Start.In(loc))
	end := dayStart(w.End.In(loc))

	var series []DayBucket
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if b, ok := byDay[key]; ok {
			series = append(series, *b)
		} else {
			series = append(series, DayBucket{Day: key, Revenue: decimal.Zero})
		}
	}
	return series
}

// StatusCount is one row of the status distribution.
type StatusCount struct {
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// BuildStatusDistribution tallies records per literal status label. Rows
// with no recognizable label were already normalized to StatusUnknown. The
// list is in first-seen order; display ordering is the caller's concern.
func BuildStatusDistribution(records []*Record) []StatusCount {
	idx := make(map[string]int)
	var counts []StatusCount
	for _, r := range records {
		i, ok := idx[r.Status]
		if !ok {
			i = len(counts)
			idx[r.Status] = i
			counts = append(counts, StatusCount{Status: r.Status})
		}
		counts[i].Total++
	}
	return counts
}
