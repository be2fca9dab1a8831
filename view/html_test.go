package view

import (
	"github.com/abalx/nginx-log-analyzer/common/test"
	"github.com/abalx/nginx-log-analyzer/stat"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHTMLReportRender(t *testing.T) {
	t.Parallel()
	reportDir := filepath.Join(t.TempDir(), "reports")
	v, vErr := NewHTMLReport(reportDir, "")
	test.FailOnError(t, vErr)

	logDate := time.Date(2017, 6, 30, 0, 0, 0, 0, time.UTC)
	test.Equals(t, false, v.Exists(logDate), "no report before the first render")

	rows := []stat.Row{{
		URL: "/api/v1/foo", Count: 2, CountPerc: 66.667,
		TimeSum: 0.4, TimePerc: 66.667, TimeAvg: 0.2,
		TimeMax: 0.3, TimeMed: 0.2, TimeP95: 0.3, TimeP99: 0.3,
	}}
	reportPath, renderErr := v.Render(rows, logDate)
	test.FailOnError(t, renderErr)
	test.Equals(t, filepath.Join(reportDir, "report-2017.06.30.html"), reportPath, "report name encodes the log date")
	test.Equals(t, true, v.Exists(logDate), "rendered report should be found by the probe")

	content, readErr := os.ReadFile(reportPath)
	test.FailOnError(t, readErr)
	test.Equals(t, true, strings.Contains(string(content), `"url":"/api/v1/foo"`), "rows JSON is substituted into the page")
	test.Equals(t, true, strings.Contains(string(content), `"time_med":0.2`), "rows JSON keeps report column keys")
	test.Equals(t, false, strings.Contains(string(content), "$table_json"), "placeholder should be gone")
}

func TestHTMLReportCustomTemplate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "custom.html")
	test.FailOnError(t, os.WriteFile(templatePath, []byte("rows: $table_json"), 0o640))

	v, vErr := NewHTMLReport(filepath.Join(dir, "reports"), templatePath)
	test.FailOnError(t, vErr)
	reportPath, renderErr := v.Render(nil, time.Date(2017, 6, 30, 0, 0, 0, 0, time.UTC))
	test.FailOnError(t, renderErr)

	content, readErr := os.ReadFile(reportPath)
	test.FailOnError(t, readErr)
	test.Equals(t, "rows: null", string(content), "custom template replaces the embedded one")
}

func TestHTMLReportMissingCustomTemplate(t *testing.T) {
	t.Parallel()
	v, vErr := NewHTMLReport(t.TempDir(), filepath.Join(t.TempDir(), "absent.html"))
	test.FailOnError(t, vErr)
	_, renderErr := v.Render(nil, time.Now())
	test.Equals(t, false, renderErr == nil, "missing custom template should fail the render")
}
