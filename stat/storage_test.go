package stat

import (
	"github.com/abalx/nginx-log-analyzer/common/test"
	"testing"
)

func TestStorageAccumulatesPerURL(t *testing.T) {
	t.Parallel()
	storage, storageErr := NewStorage(16)
	test.FailOnError(t, storageErr)

	storage.Store(Record{URL: "/api/v1/test", RequestTime: 0.3})
	storage.Store(Record{URL: "/api/v1/test", RequestTime: 0.1})
	storage.Store(Record{URL: "/api/v1/other", RequestTime: 0.2})
	storage.StoreFailure()

	snapshot := storage.Snapshot()
	test.Equals(t, uint64(4), snapshot.TotalLines, "failures count towards total lines")
	test.Equals(t, uint64(1), snapshot.FailedLines, "one failure was stored")
	test.Equals(t, 2, len(snapshot.PerURL), "one accumulator per distinct url")

	stats := snapshot.PerURL["/api/v1/test"]
	test.Equals(t, uint64(2), stats.Count, "count should follow occurrences")
	test.EqualsFloat(t, 0.4, stats.TimeSum, 1e-9, "time sum should follow occurrences")
	test.Equals(t, []float64{0.3, 0.1}, stats.Times(), "times should keep arrival order")
}

func TestStorageTimesAccessorReturnsCopy(t *testing.T) {
	t.Parallel()
	storage, storageErr := NewStorage(1)
	test.FailOnError(t, storageErr)
	storage.Store(Record{URL: "/a", RequestTime: 1})
	storage.Store(Record{URL: "/a", RequestTime: 2})

	times := storage.Snapshot().PerURL["/a"].Times()
	times[0] = 42
	test.Equals(t, []float64{1, 2}, storage.Snapshot().PerURL["/a"].Times(), "accessor must not expose internal state")
}

func TestStorageFirstOccurrenceCreatesAccumulator(t *testing.T) {
	t.Parallel()
	storage, storageErr := NewStorage(0)
	test.FailOnError(t, storageErr)
	test.Equals(t, 0, len(storage.Snapshot().PerURL), "no accumulators before first record")

	storage.Store(Record{URL: "/a", RequestTime: 0.5})
	stats := storage.Snapshot().PerURL["/a"]
	test.Equals(t, uint64(1), stats.Count, "first occurrence should initialize count")
	test.EqualsFloat(t, 0.5, stats.TimeSum, 1e-9, "first occurrence should initialize time sum")
}
