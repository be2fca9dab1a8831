package stat

import (
	"github.com/abalx/nginx-log-analyzer/common/log"
)

/*
A component used to aggregate parsed records during the streaming pass.

Responsibilities:
	- keep one URLStats accumulator per distinct URL, created on first
	occurrence
	- track total and failed line counters across the whole file

Attention:
	- `Store` and `StoreFailure` are the only mutators and do pure
	bookkeeping, derived statistics are computed once in `BuildReport`
	- not safe for concurrent use, the pipeline feeds it from a single
	sequential pass
*/
type Storage struct {
	perURL      map[string]*URLStats
	totalLines  uint64
	failedLines uint64
}

func NewStorage(expectedURLs uint) (*Storage, error) {
	return &Storage{
		perURL: make(map[string]*URLStats, expectedURLs),
	}, nil
}

func (s *Storage) Store(r Record) {
	s.totalLines++
	stats, ok := s.perURL[r.URL]
	if !ok {
		stats = newURLStats(r.URL)
		s.perURL[r.URL] = stats
	}
	stats.observe(r.RequestTime)
	if s.totalLines%100000 == 0 {
		log.Debug("consumed lines: %v; distinct urls: %v", s.totalLines, len(s.perURL))
	}
}

func (s *Storage) StoreFailure() {
	s.totalLines++
	s.failedLines++
}

func (s *Storage) Snapshot() Snapshot {
	return Snapshot{
		PerURL:      s.perURL,
		TotalLines:  s.totalLines,
		FailedLines: s.failedLines,
	}
}
