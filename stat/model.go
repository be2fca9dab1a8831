package stat

import (
	"github.com/influxdata/tdigest"
)

// Record is one parsed access log line.
type Record struct {
	URL         string
	RequestTime float64
}

/*
URLStats accumulates the request time distribution of one distinct URL.
`times` keeps arrival order, derived statistics are deferred to report
build time. The digest is fed streamingly and answers approximate high
quantiles without keeping a second sorted copy around.
*/
type URLStats struct {
	URL     string
	Count   uint64
	TimeSum float64

	times  []float64
	digest *tdigest.TDigest
}

func newURLStats(url string) *URLStats {
	return &URLStats{
		URL:    url,
		digest: tdigest.NewWithCompression(100),
	}
}

func (s *URLStats) observe(requestTime float64) {
	s.Count++
	s.TimeSum += requestTime
	s.times = append(s.times, requestTime)
	s.digest.Add(requestTime, 1)
}

// Times returns a copy of the accumulated request times in arrival order.
func (s *URLStats) Times() []float64 {
	result := make([]float64, len(s.times))
	copy(result, s.times)
	return result
}

// Quantile reports the approximate q-quantile of the accumulated times.
func (s *URLStats) Quantile(q float64) float64 {
	return s.digest.Quantile(q)
}

// Snapshot is the frozen result of one streaming pass.
type Snapshot struct {
	PerURL      map[string]*URLStats
	TotalLines  uint64
	FailedLines uint64
}
