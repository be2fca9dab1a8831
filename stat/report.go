package stat

import (
	"math"
	"sort"
)

// Row is one URL's finalized summary statistics. JSON field names are
// the report table column keys.
type Row struct {
	URL       string  `json:"url"`
	Count     uint64  `json:"count"`
	CountPerc float64 `json:"count_perc"`
	TimeSum   float64 `json:"time_sum"`
	TimePerc  float64 `json:"time_perc"`
	TimeAvg   float64 `json:"time_avg"`
	TimeMax   float64 `json:"time_max"`
	TimeMed   float64 `json:"time_med"`
	TimeP95   float64 `json:"time_p95"`
	TimeP99   float64 `json:"time_p99"`
}

/*
BuildReport converts a frozen snapshot into the ranked top-N rows.

Grand totals are summed across the full URL population before any
percentage is derived, so count_perc and time_perc sum to ~100% over all
URLs even though only the top rows are returned. Rows are ordered by
time_sum descending, ties by URL ascending. All float fields are rounded
to 3 digits.
*/
func BuildReport(snapshot Snapshot, reportSize uint) []Row {
	if len(snapshot.PerURL) == 0 {
		return nil
	}

	var totalParsed uint64
	var grandTimeSum float64
	for _, stats := range snapshot.PerURL {
		totalParsed += stats.Count
		grandTimeSum += stats.TimeSum
	}

	rows := make([]Row, 0, len(snapshot.PerURL))
	for _, stats := range snapshot.PerURL {
		rows = append(rows, Row{
			URL:       stats.URL,
			Count:     stats.Count,
			CountPerc: round3(100 * float64(stats.Count) / float64(totalParsed)),
			TimeSum:   round3(stats.TimeSum),
			TimePerc:  round3(100 * stats.TimeSum / grandTimeSum),
			TimeAvg:   round3(stats.TimeSum / float64(stats.Count)),
			TimeMax:   round3(maxOf(stats.times)),
			TimeMed:   round3(Median(stats.times)),
			TimeP95:   round3(stats.Quantile(0.95)),
			TimeP99:   round3(stats.Quantile(0.99)),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TimeSum != rows[j].TimeSum {
			return rows[i].TimeSum > rows[j].TimeSum
		}
		return rows[i].URL < rows[j].URL
	})

	if uint(len(rows)) > reportSize {
		rows = rows[:reportSize]
	}
	return rows
}

// Median reports the statistical median: the middle value of the sorted
// sequence for odd length, the mean of the two middle values for even
// length. The input slice is never mutated.
func Median(times []float64) float64 {
	if len(times) == 0 {
		return 0
	}
	sorted := make([]float64, len(times))
	copy(sorted, times)
	sort.Float64s(sorted)

	middle := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[middle]
	}
	return (sorted[middle-1] + sorted[middle]) / 2
}

func maxOf(times []float64) float64 {
	result := 0.0
	for _, t := range times {
		if t > result {
			result = t
		}
	}
	return result
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
