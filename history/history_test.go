package history

import (
	"context"
	"github.com/abalx/nginx-log-analyzer/common/log"
	"github.com/abalx/nginx-log-analyzer/common/test"
	"path/filepath"
	"testing"
	"time"
)

func TestStoreRecordAndQuery(t *testing.T) {
	t.Parallel()
	store, openErr := Open(filepath.Join(t.TempDir(), "history", "runs.db"))
	test.FailOnError(t, openErr)
	defer log.OnError(store.Close, "can't close history store")()

	first := Run{
		LogDate:     time.Date(2017, 6, 29, 0, 0, 0, 0, time.UTC),
		LogPath:     "/logs/nginx-access-ui.log-20170629",
		TotalLines:  100,
		FailedLines: 2,
		URLCount:    40,
		ReportPath:  "/reports/report-2017.06.29.html",
		CreatedAt:   time.Date(2017, 6, 30, 1, 0, 0, 0, time.UTC),
	}
	second := Run{
		LogDate:     time.Date(2017, 6, 30, 0, 0, 0, 0, time.UTC),
		LogPath:     "/logs/nginx-access-ui.log-20170630.gz",
		TotalLines:  200,
		FailedLines: 10,
		URLCount:    55,
		ReportPath:  "/reports/report-2017.06.30.html",
		CreatedAt:   time.Date(2017, 7, 1, 1, 0, 0, 0, time.UTC),
	}
	test.FailOnError(t, store.RecordRun(context.Background(), first))
	test.FailOnError(t, store.RecordRun(context.Background(), second))

	runs, queryErr := store.RecentRuns(context.Background(), 10)
	test.FailOnError(t, queryErr)
	test.Equals(t, []Run{second, first}, runs, "runs should come back newest first")

	limited, limitErr := store.RecentRuns(context.Background(), 1)
	test.FailOnError(t, limitErr)
	test.Equals(t, []Run{second}, limited, "limit should cut older runs")
}

func TestStoreReopenKeepsRows(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "runs.db")

	store, openErr := Open(path)
	test.FailOnError(t, openErr)
	run := Run{
		LogDate:   time.Date(2017, 6, 30, 0, 0, 0, 0, time.UTC),
		LogPath:   "/logs/nginx-access-ui.log-20170630",
		CreatedAt: time.Date(2017, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	test.FailOnError(t, store.RecordRun(context.Background(), run))
	test.FailOnError(t, store.Close())

	reopened, reopenErr := Open(path)
	test.FailOnError(t, reopenErr)
	defer log.OnError(reopened.Close, "can't close history store")()

	runs, queryErr := reopened.RecentRuns(context.Background(), 10)
	test.FailOnError(t, queryErr)
	test.Equals(t, 1, len(runs), "rows should survive reopen")
	test.Equals(t, run.LogPath, runs[0].LogPath, "stored fields should survive reopen")
}

func TestStoreEmptyPath(t *testing.T) {
	t.Parallel()
	_, openErr := Open("")
	test.Equals(t, false, openErr == nil, "empty path should fail setup")
}
